package spec

import (
	"fmt"

	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/facet"
	"github.com/toyz/metamodel/pkg/meta/facets"
	"github.com/toyz/metamodel/pkg/meta/ident"
)

// Member is a property, collection or action of an object specification
type Member interface {
	facet.Holder
	Name() string
	DisplayName() string
	FeatureType() ident.FeatureType
	// Owner returns the specification declaring the member
	Owner() *ObjectSpecification
	// Type returns the specification of the member's value, element or return
	// type. It is nil for actions returning nothing and for unresolved types.
	Type() *ObjectSpecification
	Descriptor() descriptor.Member
}

type memberBase struct {
	facet.HolderBase
	owner *ObjectSpecification
	desc  descriptor.Member
	typ   *ObjectSpecification
}

func (m *memberBase) Name() string                   { return m.desc.Name }
func (m *memberBase) Owner() *ObjectSpecification    { return m.owner }
func (m *memberBase) Type() *ObjectSpecification     { return m.typ }
func (m *memberBase) Descriptor() descriptor.Member  { return m.desc }
func (m *memberBase) setType(s *ObjectSpecification) { m.typ = s }

// DisplayName returns the presentable name of the member
func (m *memberBase) DisplayName() string {
	if named, ok := facet.Lookup[*facets.NamedFacet](m, facets.NamedKind); ok {
		return named.Name()
	}
	return m.desc.Name
}

// Property is a single valued member
type Property struct {
	memberBase
}

func newProperty(owner *ObjectSpecification, m descriptor.Member) *Property {
	p := &Property{memberBase{owner: owner, desc: m}}
	p.InitHolder(ident.ForProperty(owner.name, m.Name))
	return p
}

func (p *Property) FeatureType() ident.FeatureType { return ident.Property }

// Get reads the property from target
func (p *Property) Get(target any) (any, error) {
	accessor, ok := facet.Lookup[*facets.PropertyAccessorFacet](p, facets.PropertyAccessorKind)
	if !ok {
		return nil, fmt.Errorf("%s: no accessor", p.Identifier())
	}
	return accessor.Get(target)
}

// Set writes value to the property of target without any consent checks
func (p *Property) Set(target, value any) error {
	setter, ok := facet.Lookup[*facets.PropertySetterFacet](p, facets.PropertySetterKind)
	if !ok {
		return fmt.Errorf("%s: no setter", p.Identifier())
	}
	return setter.Set(target, value)
}

// IsMandatory reports whether the property requires a value
func (p *Property) IsMandatory() bool {
	m, ok := facet.Lookup[*facets.MandatoryFacet](p, facets.MandatoryKind)
	return ok && m.IsRequired()
}

// Collection is a multi valued member
type Collection struct {
	memberBase
	elem string
}

func newCollection(owner *ObjectSpecification, m descriptor.Member) *Collection {
	c := &Collection{memberBase: memberBase{owner: owner, desc: m}}
	c.InitHolder(ident.ForProperty(owner.name, m.Name))
	return c
}

func (c *Collection) FeatureType() ident.FeatureType { return ident.Collection }

// ElemType returns the element type name
func (c *Collection) ElemType() string {
	if typeOf, ok := facet.Lookup[*facets.TypeOfFacet](c, facets.TypeOfKind); ok {
		return typeOf.ElemType()
	}
	return c.desc.ElemType
}

// Get reads the collection from target as a slice
func (c *Collection) Get(target any) (any, error) {
	accessor, ok := facet.Lookup[*facets.PropertyAccessorFacet](c, facets.PropertyAccessorKind)
	if !ok {
		return nil, fmt.Errorf("%s: no accessor", c.Identifier())
	}
	return accessor.Get(target)
}

// Action is an invocable member
type Action struct {
	memberBase
	params []*Parameter
}

func newAction(owner *ObjectSpecification, m descriptor.Member) *Action {
	a := &Action{memberBase: memberBase{owner: owner, desc: m}}
	a.InitHolder(ident.ForAction(owner.name, m.Name, m.ParamTypes()...))
	for i, p := range m.Params {
		a.params = append(a.params, newParameter(a, i, p))
	}
	return a
}

func (a *Action) FeatureType() ident.FeatureType { return ident.Action }

// Parameters returns the parameters in declaration order
func (a *Action) Parameters() []*Parameter {
	return append([]*Parameter(nil), a.params...)
}

// Parameter returns the parameter at index
func (a *Action) Parameter(index int) (*Parameter, bool) {
	if index < 0 || index >= len(a.params) {
		return nil, false
	}
	return a.params[index], true
}

// ReturnType returns the result type name, "" when the action returns nothing
func (a *Action) ReturnType() string { return a.desc.Type }

// Invoke calls the action on target without any consent checks
func (a *Action) Invoke(target any, args []any) (any, error) {
	invocation, ok := facet.Lookup[*facets.ActionInvocationFacet](a, facets.ActionInvocationKind)
	if !ok {
		return nil, fmt.Errorf("%s: no invocation", a.Identifier())
	}
	if len(args) != len(a.params) {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", a.Identifier(), len(a.params), len(args))
	}
	return invocation.Invoke(target, args)
}

// IsSafe reports whether the action is declared free of side effects
func (a *Action) IsSafe() bool {
	s, ok := facet.Lookup[*facets.ActionSemanticsFacet](a, facets.ActionSemanticsKind)
	return ok && s.IsSafe()
}

// Parameter is one parameter of an action
type Parameter struct {
	facet.HolderBase
	action *Action
	index  int
	desc   descriptor.Param
	typ    *ObjectSpecification
}

func newParameter(a *Action, index int, p descriptor.Param) *Parameter {
	param := &Parameter{action: a, index: index, desc: p}
	param.InitHolder(ident.ForParameter(a.Identifier(), index))
	return param
}

func (p *Parameter) Action() *Action              { return p.action }
func (p *Parameter) Index() int                   { return p.index }
func (p *Parameter) Name() string                 { return p.desc.Name }
func (p *Parameter) TypeName() string             { return p.desc.Type }
func (p *Parameter) Type() *ObjectSpecification   { return p.typ }
func (p *Parameter) Descriptor() descriptor.Param { return p.desc }

// DisplayName returns the presentable name of the parameter
func (p *Parameter) DisplayName() string {
	if named, ok := facet.Lookup[*facets.NamedFacet](p, facets.NamedKind); ok {
		return named.Name()
	}
	return p.desc.Name
}

// IsMandatory reports whether the parameter requires a value
func (p *Parameter) IsMandatory() bool {
	m, ok := facet.Lookup[*facets.MandatoryFacet](p, facets.MandatoryKind)
	return ok && m.IsRequired()
}
