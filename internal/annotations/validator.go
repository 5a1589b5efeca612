package annotations

import (
	"fmt"
	"sort"
)

// check validates a converted annotation against s: required parameters,
// per-parameter validators and then the schema-wide validators
func (s AnnotationSchema) check(a *ParsedAnnotation) []AnnotationError {
	var errs []AnnotationError

	for _, name := range s.parameterNames() {
		spec := s.Parameters[name]
		value, ok := a.Parameters[name]
		switch {
		case !ok && spec.Required:
			e := paramError(a.Type, name, a.Location, "required %s parameter is missing", spec.Type)
			e.Hint = s.requiredHint(name)
			errs = append(errs, e)
		case ok && spec.Validator != nil:
			if err := spec.Validator(value); err != nil {
				errs = append(errs, paramError(a.Type, name, a.Location, "%v %s", value, err))
			}
		}
	}

	for _, v := range s.Validators {
		if err := v(a); err != nil {
			errs = append(errs, paramError(a.Type, "", a.Location, "%s", err))
		}
	}
	return errs
}

func (s AnnotationSchema) parameterNames() []string {
	names := make([]string, 0, len(s.Parameters))
	for name := range s.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s AnnotationSchema) requiredHint(name string) string {
	for _, positional := range s.Positional {
		if positional == name {
			return fmt.Sprintf("Add the value after the annotation name or as -%s=<value>", name)
		}
	}
	return fmt.Sprintf("Add -%s=<value> to the annotation", name)
}

// parameterHint lists the parameters s accepts
func (s AnnotationSchema) parameterHint() string {
	if len(s.Parameters) == 0 {
		return fmt.Sprintf("%s takes no parameters", s.Type)
	}
	names := s.parameterNames()
	for i := range names {
		names[i] = "-" + names[i]
	}
	return fmt.Sprintf("Valid parameters: %v", names)
}
