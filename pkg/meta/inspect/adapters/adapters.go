// Package adapters serves the inspection routes on Echo, Gin or Fiber.
package adapters

import (
	"fmt"
	"strings"

	"github.com/toyz/metamodel/pkg/meta/inspect"
)

// Names lists the supported frameworks
var Names = []string{"echo", "gin", "fiber"}

// New creates a server for the named framework
func New(name string) (inspect.Server, error) {
	switch strings.ToLower(name) {
	case "echo":
		return NewDefaultEchoAdapter(), nil
	case "gin":
		return NewDefaultGinAdapter(), nil
	case "fiber":
		return NewDefaultFiberAdapter(), nil
	}
	return nil, fmt.Errorf("unknown server %q, expected one of %s", name, strings.Join(Names, ", "))
}
