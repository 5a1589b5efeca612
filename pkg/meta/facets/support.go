package facets

import (
	"fmt"
	"reflect"

	"github.com/toyz/metamodel/pkg/meta/descriptor"
)

// supporting is embedded by imperative facets that call a method on the domain object
type supporting struct {
	method string
	invoke descriptor.Invoker
}

// Method returns the name of the supporting method
func (s supporting) Method() string { return s.method }

func (s supporting) call(target any, args ...any) (any, error) {
	if s.invoke == nil {
		return nil, fmt.Errorf("supporting method %s has no invoker", s.method)
	}
	return s.invoke(target, args)
}

// reason calls the method and interprets its result as a veto reason
func (s supporting) reason(target any, args ...any) (string, error) {
	out, err := s.call(target, args...)
	if err != nil {
		return "", err
	}
	switch v := out.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case error:
		return v.Error(), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%s returned %T, expected string", s.method, out)
	}
}

func (s supporting) attributes() map[string]any {
	return map[string]any{"method": s.method}
}

// IsMissing reports whether v counts as no value: nil, a nil pointer,
// slice, map or interface, or the empty string
func IsMissing(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// stringValue returns the string held by v, following one pointer
func stringValue(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case *string:
		if s == nil {
			return "", false
		}
		return *s, true
	}
	return "", false
}

// toSlice converts a slice or array result into []any
func toSlice(v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.([]any); ok {
		return s, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected a slice, got %T", v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// deref follows pointers so titles and exports show values
func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	return rv.Interface()
}
