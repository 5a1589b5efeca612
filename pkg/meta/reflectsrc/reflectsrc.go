// Package reflectsrc describes Go types through reflection. Exported fields
// become field members, exported methods of the pointer type become method
// members, and metadata is read from `meta` struct tags and from an optional
// MetaAnnotations method.
package reflectsrc

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/toyz/metamodel/internal/annotations"
	"github.com/toyz/metamodel/pkg/meta/descriptor"
)

// TagName is the struct tag holding field annotations
const TagName = "meta"

// Annotated is implemented by types declaring annotations for the type, its
// methods and their parameters. Keys are "" for the type, the member name for
// a member and "Member#N" for the N-th parameter of a method; values use the
// struct tag syntax.
type Annotated interface {
	MetaAnnotations() map[string]string
}

var (
	errorType     = reflect.TypeFor[error]()
	annotatedType = reflect.TypeFor[Annotated]()
)

// Describer turns Go values into type descriptors
type Describer struct {
	parser *annotations.Parser
}

// NewDescriber creates a describer validating annotations against the built-in schemas
func NewDescriber() *Describer {
	return &Describer{parser: annotations.NewParser(annotations.DefaultRegistry())}
}

// New describes the types of values into a new table
func New(values ...any) (*descriptor.Table, error) {
	table := descriptor.NewTable()
	if err := NewDescriber().Register(table, values...); err != nil {
		return nil, err
	}
	return table, nil
}

// MustNew is like New but panics on error
func MustNew(values ...any) *descriptor.Table {
	table, err := New(values...)
	if err != nil {
		panic(err)
	}
	return table
}

// Register describes the types of values into table
func (d *Describer) Register(table *descriptor.Table, values ...any) error {
	var errs []error
	for _, v := range values {
		typ, err := d.Describe(v)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := table.Register(typ); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Describe builds the descriptor of the struct type of v, which may be a
// value, a pointer or a reflect.Type
func (d *Describer) Describe(v any) (*descriptor.Type, error) {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	if t == nil {
		return nil, fmt.Errorf("cannot describe nil")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot describe %s: not a struct", t)
	}

	name := t.String()
	declared := declaredAnnotations(t)
	var errs []error
	parse := func(key, tag string, target annotations.Target) descriptor.Annotations {
		as, err := d.parser.ParseFor(tag, annotations.SourceLocation{File: name + "." + key}, target)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		return as
	}

	typ := &descriptor.Type{
		Name:        name,
		Annotations: parse("", declared[""], annotations.TypeTarget),
		New:         func() any { return reflect.New(t).Interface() },
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		tag, _ := f.Tag.Lookup(TagName)
		if tag == "-" {
			continue
		}
		m := descriptor.Member{
			Name:        f.Name,
			Kind:        descriptor.FieldMember,
			Type:        f.Type.String(),
			ElemType:    descriptor.ElementType(f.Type.String()),
			Annotations: parse(f.Name, tag, annotations.FieldTarget),
			Invoke:      fieldGetter(f.Index),
			Assign:      fieldSetter(f.Index, f.Type),
		}
		typ.Members = append(typ.Members, m)
	}

	pt := reflect.PointerTo(t)
	for i := range pt.NumMethod() {
		method := pt.Method(i)
		if !method.IsExported() || method.Type.IsVariadic() || method.Name == "MetaAnnotations" {
			continue
		}
		m, ok := describeMethod(method)
		if !ok {
			continue
		}
		m.Annotations = parse(m.Name, declared[m.Name], annotations.MethodTarget)
		for p := range m.Params {
			key := m.Name + "#" + strconv.Itoa(p)
			m.Params[p].Annotations = parse(key, declared[key], annotations.ParamTarget)
		}
		typ.Members = append(typ.Members, m)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return typ, nil
}

// declaredAnnotations calls MetaAnnotations on a zero value
func declaredAnnotations(t reflect.Type) map[string]string {
	pt := reflect.PointerTo(t)
	if !pt.Implements(annotatedType) {
		return nil
	}
	return reflect.New(t).Interface().(Annotated).MetaAnnotations()
}

// describeMethod describes a method of the pointer type. Methods returning
// more than one value besides a trailing error are skipped.
func describeMethod(method reflect.Method) (descriptor.Member, bool) {
	mt := method.Type
	m := descriptor.Member{Name: method.Name, Kind: descriptor.MethodMember}

	outs := mt.NumOut()
	if outs > 0 && mt.Out(outs-1) == errorType {
		m.ReturnsError = true
		outs--
	}
	switch outs {
	case 0:
	case 1:
		m.Type = mt.Out(0).String()
		m.ElemType = descriptor.ElementType(m.Type)
	default:
		return m, false
	}

	// the receiver is the first input
	in := make([]reflect.Type, 0, mt.NumIn()-1)
	for i := 1; i < mt.NumIn(); i++ {
		pt := mt.In(i)
		in = append(in, pt)
		m.Params = append(m.Params, descriptor.Param{Name: "arg" + strconv.Itoa(i-1), Type: pt.String()})
	}
	m.Invoke = methodInvoker(method.Name, in, m.Type != "", m.ReturnsError)
	return m, true
}

// receiver returns target as an addressable pointer
func receiver(target any) (reflect.Value, error) {
	v := reflect.ValueOf(target)
	if !v.IsValid() {
		return v, fmt.Errorf("no target")
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return v, fmt.Errorf("nil target")
		}
		return v, nil
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p, nil
}

func fieldGetter(index []int) descriptor.Invoker {
	return func(target any, _ []any) (any, error) {
		v, err := receiver(target)
		if err != nil {
			return nil, err
		}
		return v.Elem().FieldByIndex(index).Interface(), nil
	}
}

func fieldSetter(index []int, t reflect.Type) descriptor.Assigner {
	return func(target, value any) error {
		v := reflect.ValueOf(target)
		if v.Kind() != reflect.Pointer || v.IsNil() {
			return fmt.Errorf("cannot assign to %T: not a pointer", target)
		}
		converted, err := convert(value, t)
		if err != nil {
			return err
		}
		v.Elem().FieldByIndex(index).Set(converted)
		return nil
	}
}

func methodInvoker(name string, in []reflect.Type, hasResult, returnsError bool) descriptor.Invoker {
	return func(target any, args []any) (result any, err error) {
		v, err := receiver(target)
		if err != nil {
			return nil, err
		}
		if len(args) != len(in) {
			return nil, fmt.Errorf("%s: expected %d arguments, got %d", name, len(in), len(args))
		}
		values := make([]reflect.Value, len(args))
		for i, arg := range args {
			if values[i], err = convert(arg, in[i]); err != nil {
				return nil, fmt.Errorf("%s: argument %d: %w", name, i, err)
			}
		}

		defer func() {
			if r := recover(); r != nil {
				result, err = nil, fmt.Errorf("%s panicked: %v", name, r)
			}
		}()
		out := v.MethodByName(name).Call(values)

		if returnsError {
			if e := out[len(out)-1]; !e.IsNil() {
				return nil, e.Interface().(error)
			}
		}
		if hasResult {
			return out[0].Interface(), nil
		}
		return nil, nil
	}
}

// convert adapts value to t: nil becomes the zero value and convertible
// values are converted
func convert(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(t):
		return v, nil
	case v.Type().ConvertibleTo(t) && !isLossyConversion(v.Type(), t):
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", v.Type(), t)
}

// isLossyConversion rejects conversions Go allows but that change meaning,
// such as int to string
func isLossyConversion(from, to reflect.Type) bool {
	return to.Kind() == reflect.String && from.Kind() != reflect.String &&
		!strings.HasPrefix(from.String(), "[]")
}
