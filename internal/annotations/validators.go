package annotations

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ActionSemantics lists the accepted values of the action Semantics parameter
var ActionSemantics = []string{"safe", "idempotent", "non-idempotent"}

// typed adapts a validator of T to the untyped ParameterSpec form
func typed[T any](check func(T) error) func(any) error {
	return func(v any) error {
		t, ok := v.(T)
		if !ok {
			var want T
			return fmt.Errorf("is a %T, not a %T", v, want)
		}
		return check(t)
	}
}

var (
	positive = typed(func(n int) error {
		if n <= 0 {
			return fmt.Errorf("must be greater than zero")
		}
		return nil
	})

	nonBlank = typed(func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("must not be blank")
		}
		return nil
	})

	pattern = typed(func(s string) error {
		if _, err := regexp.Compile(s); err != nil {
			return fmt.Errorf("is not a valid regular expression: %v", err)
		}
		return nil
	})

	semantics = typed(func(s string) error {
		if slices.ContainsFunc(ActionSemantics, func(v string) bool { return strings.EqualFold(v, s) }) {
			return nil
		}
		return fmt.Errorf("must be one of %s", strings.Join(ActionSemantics, ", "))
	})

	// sequence accepts dotted member orders such as 1.2.10
	sequence = typed(func(s string) error {
		for _, part := range strings.Split(s, ".") {
			if _, err := strconv.Atoi(part); err != nil {
				return fmt.Errorf("must be dot separated numbers")
			}
		}
		return nil
	})

	roleList = typed(func(roles []string) error {
		if slices.ContainsFunc(roles, func(r string) bool { return strings.TrimSpace(r) == "" }) {
			return fmt.Errorf("has an empty role name")
		}
		return nil
	})
)

func textParam(description string) ParameterSpec {
	return ParameterSpec{Type: StringType, Required: true, Description: description, Validator: nonBlank}
}

func reasonParam(fallback string) ParameterSpec {
	return ParameterSpec{Type: StringType, DefaultValue: fallback, Description: "Reason shown when the element is vetoed"}
}

func rolesParam(description string) ParameterSpec {
	return ParameterSpec{Type: StringSliceType, Description: description, Validator: roleList}
}
