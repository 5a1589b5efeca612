package spec

import (
	"errors"
	"fmt"
)

// ErrSpecNotFound is matched by every error returned for a type the
// descriptor source does not know
var ErrSpecNotFound = errors.New("specification not found")

// NotFoundError reports a type name the descriptor source cannot resolve
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no specification for type %q", e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrSpecNotFound
}
