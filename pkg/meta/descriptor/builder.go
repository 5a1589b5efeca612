package descriptor

import "strings"

// Builder provides a fluent interface for describing a type by hand
type Builder struct {
	typ *Type
}

// NewBuilder creates a builder for the named type
func NewBuilder(name string) *Builder {
	return &Builder{typ: &Type{Name: name}}
}

// WithAnnotations adds type level annotations
func (b *Builder) WithAnnotations(as ...Annotation) *Builder {
	b.typ.Annotations = append(b.typ.Annotations, as...)
	return b
}

// WithConstructor sets the zero instance factory
func (b *Builder) WithConstructor(fn func() any) *Builder {
	b.typ.New = fn
	return b
}

// Field adds a field member
func (b *Builder) Field(name, typ string, opts ...MemberOption) *Builder {
	m := Member{Name: name, Kind: FieldMember, Type: typ, ElemType: ElementType(typ)}
	for _, opt := range opts {
		opt(&m)
	}
	b.typ.Members = append(b.typ.Members, m)
	return b
}

// Method adds a method member
func (b *Builder) Method(name string, opts ...MemberOption) *Builder {
	m := Member{Name: name, Kind: MethodMember}
	for _, opt := range opts {
		opt(&m)
	}
	if m.ElemType == "" {
		m.ElemType = ElementType(m.Type)
	}
	b.typ.Members = append(b.typ.Members, m)
	return b
}

// Build returns the described type
func (b *Builder) Build() *Type {
	return b.typ
}

// MemberOption configures a member added through a Builder
type MemberOption func(*Member)

// Annotated attaches annotations to the member
func Annotated(as ...Annotation) MemberOption {
	return func(m *Member) { m.Annotations = append(m.Annotations, as...) }
}

// Returns sets the result type of a method
func Returns(typ string) MemberOption {
	return func(m *Member) { m.Type = typ }
}

// ReturnsError marks a method as returning a trailing error
func ReturnsError() MemberOption {
	return func(m *Member) { m.ReturnsError = true }
}

// Elem overrides the element type of a collection-like member
func Elem(typ string) MemberOption {
	return func(m *Member) { m.ElemType = typ }
}

// Params sets the method parameters
func Params(params ...Param) MemberOption {
	return func(m *Member) { m.Params = append(m.Params, params...) }
}

// Invokes sets the invoker of the member
func Invokes(fn Invoker) MemberOption {
	return func(m *Member) { m.Invoke = fn }
}

// Getter sets a field reader
func Getter(fn func(target any) any) MemberOption {
	return func(m *Member) {
		m.Invoke = func(target any, _ []any) (any, error) { return fn(target), nil }
	}
}

// Setter sets a field writer
func Setter(fn func(target, value any)) MemberOption {
	return func(m *Member) {
		m.Assign = func(target, value any) error {
			fn(target, value)
			return nil
		}
	}
}

// P describes a method parameter
func P(name, typ string, as ...Annotation) Param {
	return Param{Name: name, Type: typ, Annotations: as}
}

// ElementType returns the element type of slice, array and map type names, or ""
func ElementType(typ string) string {
	typ = BaseTypeName(typ)
	switch {
	case strings.HasPrefix(typ, "[]"):
		return BaseTypeName(typ[2:])
	case strings.HasPrefix(typ, "["):
		if i := strings.Index(typ, "]"); i > 0 {
			return BaseTypeName(typ[i+1:])
		}
	case strings.HasPrefix(typ, "map["):
		depth := 0
		for i := 3; i < len(typ); i++ {
			switch typ[i] {
			case '[':
				depth++
			case ']':
				depth--
				if depth == 0 {
					return BaseTypeName(typ[i+1:])
				}
			}
		}
	}
	return ""
}

// IsNillable reports whether values of the named type can be nil
func IsNillable(typ string) bool {
	typ = strings.TrimSpace(typ)
	switch {
	case strings.HasPrefix(typ, "*"),
		strings.HasPrefix(typ, "[]"),
		strings.HasPrefix(typ, "map["),
		strings.HasPrefix(typ, "chan "),
		strings.HasPrefix(typ, "func("),
		typ == "any", typ == "interface{}", typ == "error":
		return true
	}
	return false
}
