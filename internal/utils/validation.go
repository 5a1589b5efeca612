package utils

import (
	"cmp"
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// FieldError reports a configuration field that failed a check
type FieldError struct {
	Field   string
	Value   any
	Message string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Validator checks one value
type Validator[T any] func(T) error

// All runs validators in order and returns the first failure
func All[T any](validators ...Validator[T]) Validator[T] {
	return func(value T) error {
		for _, v := range validators {
			if err := v(value); err != nil {
				return err
			}
		}
		return nil
	}
}

// Check fails with message when ok returns false
func Check[T any](field, message string, ok func(T) bool) Validator[T] {
	return func(value T) error {
		if ok(value) {
			return nil
		}
		return &FieldError{Field: field, Value: value, Message: message}
	}
}

// NotEmpty rejects the empty string
func NotEmpty(field string) Validator[string] {
	return Check(field, "cannot be empty", func(s string) bool { return s != "" })
}

// OneOf accepts only the listed values
func OneOf[T comparable](field string, allowed ...T) Validator[T] {
	return func(value T) error {
		for _, a := range allowed {
			if value == a {
				return nil
			}
		}
		return &FieldError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("must be one of %v, got %v", allowed, value),
		}
	}
}

// AtLeast rejects values below minimum
func AtLeast[T cmp.Ordered](field string, minimum T) Validator[T] {
	return Check(field, fmt.Sprintf("must be at least %v", minimum), func(v T) bool { return v >= minimum })
}

// Positive rejects zero and negative values
func Positive[T cmp.Ordered](field string) Validator[T] {
	var zero T
	return Check(field, "must be positive", func(v T) bool { return v > zero })
}

// Glob accepts well-formed doublestar patterns
func Glob(field string) Validator[string] {
	return Check(field, "must be a valid glob pattern", func(p string) bool {
		return doublestar.ValidatePattern(filepath.ToSlash(p))
	})
}

// Each applies item to every element. Failures are reported against
// field[i], keeping the item's message.
func Each[T any](field string, item Validator[T]) Validator[[]T] {
	return func(values []T) error {
		for i, v := range values {
			err := item(v)
			if err == nil {
				continue
			}
			msg := err.Error()
			if fe, ok := err.(*FieldError); ok {
				msg = fe.Message
			}
			return &FieldError{Field: fmt.Sprintf("%s[%d]", field, i), Value: v, Message: msg}
		}
		return nil
	}
}
