// Package descriptor defines the structural description of domain types that the
// metamodel is built from. Descriptors are plain data plus invocation closures, so
// they can come from reflection, from source scanning or be written by hand.
package descriptor

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemberKind tells how a member is backed on the domain type
type MemberKind int

const (
	FieldMember MemberKind = iota
	MethodMember
)

// String returns the string representation of the member kind
func (k MemberKind) String() string {
	if k == FieldMember {
		return "field"
	}
	return "method"
}

// Invoker reads a field or calls a method on target
type Invoker func(target any, args []any) (any, error)

// Assigner writes a field on target
type Assigner func(target any, value any) error

// Param describes one method parameter
type Param struct {
	Name        string
	Type        string
	Annotations Annotations
}

// Member describes a field or method of a domain type
type Member struct {
	Name string
	Kind MemberKind
	// Type is the field type, or the first non-error result of a method ("" for none)
	Type string
	// ElemType is the element type when Type is a slice, array or map
	ElemType     string
	Params       []Param
	ReturnsError bool
	Annotations  Annotations
	Invoke       Invoker
	Assign       Assigner
}

// ParamTypes returns the parameter types in order
func (m Member) ParamTypes() []string {
	types := make([]string, len(m.Params))
	for i, p := range m.Params {
		types[i] = p.Type
	}
	return types
}

// IsField reports whether the member is a field
func (m Member) IsField() bool { return m.Kind == FieldMember }

// IsMethod reports whether the member is a method
func (m Member) IsMethod() bool { return m.Kind == MethodMember }

// Type describes a domain type
type Type struct {
	// Name is the package qualified type name, e.g. "demo.Invoice"
	Name        string
	Annotations Annotations
	Members     []Member
	// New creates a zero instance, optional
	New func() any
}

// Member returns the first member with the name
func (t *Type) Member(name string) (Member, bool) {
	for _, m := range t.Members {
		if m.Name == name {
			return m, true
		}
	}
	return Member{}, false
}

// Source supplies type descriptors to the metamodel
type Source interface {
	Lookup(name string) (*Type, bool)
	Names() []string
}

// Table is an in-memory Source that types are registered into
type Table struct {
	mu    sync.RWMutex
	types map[string]*Type
}

// NewTable creates an empty descriptor table
func NewTable() *Table {
	return &Table{types: make(map[string]*Type)}
}

// Register adds a type descriptor
func (t *Table) Register(typ *Type) error {
	if typ == nil || typ.Name == "" {
		return fmt.Errorf("type descriptor must have a name")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.types[typ.Name]; exists {
		return fmt.Errorf("type %s is already registered", typ.Name)
	}
	t.types[typ.Name] = typ
	return nil
}

// MustRegister adds type descriptors and panics on conflicts
func (t *Table) MustRegister(types ...*Type) *Table {
	for _, typ := range types {
		if err := t.Register(typ); err != nil {
			panic(err)
		}
	}
	return t
}

// Lookup returns the descriptor registered under name
func (t *Table) Lookup(name string) (*Type, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	typ, ok := t.types[name]
	return typ, ok
}

// Names returns all registered type names, sorted
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.types))
	for name := range t.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered types
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.types)
}

// BaseTypeName strips pointer markers so "*demo.Customer" resolves as "demo.Customer"
func BaseTypeName(name string) string {
	return strings.TrimLeft(strings.TrimSpace(name), "*")
}
