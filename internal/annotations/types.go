package annotations

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/toyz/metamodel/pkg/meta/descriptor"
)

// AnnotationType represents the type of annotation
type AnnotationType int

const (
	ObjectAnnotation AnnotationType = iota
	HiddenAnnotation
	DisabledAnnotation
	MandatoryAnnotation
	OptionalAnnotation
	MaxLengthAnnotation
	RegexAnnotation
	NamedAnnotation
	DescribedAnnotation
	RolesAnnotation
	PropertyAnnotation
	CollectionAnnotation
	ActionAnnotation
	EventAnnotation
	ProgrammaticAnnotation
	TitleAnnotation
	OrderAnnotation
	ImmutableAnnotation
	ValueAnnotation
)

var annotationTypeNames = []string{
	ObjectAnnotation:       "object",
	HiddenAnnotation:       "hidden",
	DisabledAnnotation:     "disabled",
	MandatoryAnnotation:    "mandatory",
	OptionalAnnotation:     "optional",
	MaxLengthAnnotation:    "maxlength",
	RegexAnnotation:        "regex",
	NamedAnnotation:        "named",
	DescribedAnnotation:    "described",
	RolesAnnotation:        "roles",
	PropertyAnnotation:     "property",
	CollectionAnnotation:   "collection",
	ActionAnnotation:       "action",
	EventAnnotation:        "event",
	ProgrammaticAnnotation: "programmatic",
	TitleAnnotation:        "title",
	OrderAnnotation:        "order",
	ImmutableAnnotation:    "immutable",
	ValueAnnotation:        "value",
}

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	if a < 0 || int(a) >= len(annotationTypeNames) {
		return "unknown"
	}
	return annotationTypeNames[a]
}

// ParseAnnotationType converts string to AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	for i, name := range annotationTypeNames {
		if name == s {
			return AnnotationType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown annotation type: %s", s)
}

// Target is a set of places an annotation may be written
type Target uint8

const (
	TypeTarget Target = 1 << iota
	FieldTarget
	MethodTarget
	ParamTarget

	MemberTargets = FieldTarget | MethodTarget
	AnyTarget     = TypeTarget | FieldTarget | MethodTarget | ParamTarget
)

// Allows reports whether t includes every bit of other
func (t Target) Allows(other Target) bool {
	return t&other == other
}

func (t Target) String() string {
	var names []string
	for _, n := range []struct {
		t    Target
		name string
	}{{TypeTarget, "type"}, {FieldTarget, "field"}, {MethodTarget, "method"}, {ParamTarget, "parameter"}} {
		if t&n.t != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// SourceLocation is where an annotation was written. Lines and columns start at 1.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

func (l SourceLocation) String() string {
	switch {
	case l.File == "":
		return "<input>"
	case l.Line == 0:
		return l.File
	case l.Column == 0:
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// ParsedAnnotation is one annotation with its parameters converted to
// string, bool, int or []string as its schema declares
type ParsedAnnotation struct {
	Type       AnnotationType
	Target     string
	Parameters map[string]any
	Location   SourceLocation
	Raw        string
}

// Has reports whether the parameter was given
func (p *ParsedAnnotation) Has(name string) bool {
	_, ok := p.Parameters[name]
	return ok
}

// Descriptor converts the annotation into the string keyed form used by type descriptors
func (p *ParsedAnnotation) Descriptor() descriptor.Annotation {
	a := descriptor.Annotation{Name: p.Type.String()}
	if len(p.Parameters) == 0 {
		return a
	}
	a.Params = make(map[string]string, len(p.Parameters))
	for key, value := range p.Parameters {
		a.Params[key] = formatValue(value)
	}
	return a
}

// ParameterType represents the type of a parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	IntType
	StringSliceType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case IntType:
		return "int"
	case StringSliceType:
		return "[]string"
	default:
		return "unknown"
	}
}

// ParameterSpec declares one annotation parameter. DefaultValue is used
// when the parameter is written as a bare flag.
type ParameterSpec struct {
	Type         ParameterType
	Required     bool
	DefaultValue any
	Description  string
	Validator    func(any) error
}

// CustomValidator represents a custom validation function for annotations
type CustomValidator func(*ParsedAnnotation) error

// AnnotationSchema declares what an annotation accepts and where it may be written.
// Positional lists the parameters bound to bare arguments, in order.
type AnnotationSchema struct {
	Type        AnnotationType
	Description string
	Targets     Target
	Positional  []string
	Parameters  map[string]ParameterSpec
	Validators  []CustomValidator
	Examples    []string
}

// canonicalParameter resolves a parameter name case-insensitively against the schema
func (s AnnotationSchema) canonicalParameter(name string) (string, bool) {
	if _, ok := s.Parameters[name]; ok {
		return name, true
	}
	for key := range s.Parameters {
		if strings.EqualFold(key, name) {
			return key, true
		}
	}
	return name, false
}

// accepts reports whether v has the Go type p converts to
func (p ParameterType) accepts(v any) bool {
	switch v.(type) {
	case string:
		return p == StringType
	case bool:
		return p == BoolType
	case int:
		return p == IntType
	case []string:
		return p == StringSliceType
	}
	return false
}

// convert parses raw argument tokens into a value of type p
func (p ParameterType) convert(values []string) (any, error) {
	if p == StringSliceType {
		out := make([]string, 0, len(values))
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		return out, nil
	}
	joined := strings.Join(values, ",")
	switch p {
	case IntType:
		return strconv.Atoi(strings.TrimSpace(joined))
	case BoolType:
		switch strings.ToLower(joined) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0":
			return false, nil
		}
		return nil, fmt.Errorf("invalid boolean %q", joined)
	}
	return joined, nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	}
	return fmt.Sprint(v)
}
