// Package spec holds object specifications, the per-type metamodel built by
// running the facet factory pipeline over a type descriptor, and the loader
// that builds and caches them.
package spec

import (
	"sort"
	"sync"

	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/facet"
	"github.com/toyz/metamodel/pkg/meta/facets"
	"github.com/toyz/metamodel/pkg/meta/factory"
	"github.com/toyz/metamodel/pkg/meta/ident"
)

// ObjectSpecification is the metamodel of one domain type. There is exactly one
// per type name per loader. It is published as a skeleton before introspection
// and is read-only once IsIntrospected reports true.
type ObjectSpecification struct {
	facet.HolderBase

	name  string
	typ   *descriptor.Type
	value bool

	mu           sync.RWMutex
	introspected bool
	members      []Member
	properties   []*Property
	collections  []*Collection
	actions      []*Action
	unclaimed    []descriptor.Member
	removals     []factory.Removal
}

func newSpecification(name string, typ *descriptor.Type) *ObjectSpecification {
	s := &ObjectSpecification{name: name, typ: typ}
	s.InitHolder(ident.ForClass(name))
	return s
}

func newValueSpecification(name string) *ObjectSpecification {
	s := newSpecification(name, nil)
	s.value = true
	s.AddFacet(facets.NewValue(s, name))
	s.AddFacet(facets.NewNamed(s, ident.NaturalName(name), facet.PrecedenceFallback))
	s.introspected = true
	return s
}

// newDeclaredValueSpecification describes a source type annotated value. Its
// members are not introspected.
func newDeclaredValueSpecification(typ *descriptor.Type, a descriptor.Annotation) *ObjectSpecification {
	s := newValueSpecification(typ.Name)
	s.typ = typ
	if name := a.String("Named"); name != "" {
		s.AddFacet(facets.NewNamed(s, name, facet.PrecedenceExplicit))
	}
	if description := a.String("Described"); description != "" {
		s.AddFacet(facets.NewDescribedAs(s, description, facet.PrecedenceExplicit))
	}
	return s
}

// Name returns the type name the specification was loaded for
func (s *ObjectSpecification) Name() string { return s.name }

// Descriptor returns the type descriptor, nil for value types
func (s *ObjectSpecification) Descriptor() *descriptor.Type { return s.typ }

// IsValue reports whether the specification describes a value type
func (s *ObjectSpecification) IsValue() bool { return s.value }

// IsIntrospected reports whether every member has been built
func (s *ObjectSpecification) IsIntrospected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.introspected
}

// DisplayName returns the presentable name of the type
func (s *ObjectSpecification) DisplayName() string {
	if named, ok := facet.Lookup[*facets.NamedFacet](s, facets.NamedKind); ok {
		return named.Name()
	}
	return s.name
}

// Title renders the title of an instance, falling back to the display name
func (s *ObjectSpecification) Title(target any) (string, error) {
	if title, ok := facet.Lookup[*facets.TitleFacet](s, facets.TitleKind); ok {
		return title.Title(target)
	}
	return s.DisplayName(), nil
}

// Instantiate creates a zero instance when the descriptor provides a constructor
func (s *ObjectSpecification) Instantiate() (any, bool) {
	if s.typ == nil || s.typ.New == nil {
		return nil, false
	}
	return s.typ.New(), true
}

// Members returns properties, collections and actions in presentation order
func (s *ObjectSpecification) Members() []Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Member(nil), s.members...)
}

// Properties returns the properties in presentation order
func (s *ObjectSpecification) Properties() []*Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Property(nil), s.properties...)
}

// Collections returns the collections in presentation order
func (s *ObjectSpecification) Collections() []*Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Collection(nil), s.collections...)
}

// Actions returns the actions in presentation order
func (s *ObjectSpecification) Actions() []*Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Action(nil), s.actions...)
}

// Member returns the member with the name
func (s *ObjectSpecification) Member(name string) (Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.Name() == name {
			return m, true
		}
	}
	return nil, false
}

// Property returns the property with the name
func (s *ObjectSpecification) Property(name string) (*Property, bool) {
	m, ok := s.Member(name)
	if !ok {
		return nil, false
	}
	p, ok := m.(*Property)
	return p, ok
}

// Collection returns the collection with the name
func (s *ObjectSpecification) Collection(name string) (*Collection, bool) {
	m, ok := s.Member(name)
	if !ok {
		return nil, false
	}
	c, ok := m.(*Collection)
	return c, ok
}

// Action returns the action with the name
func (s *ObjectSpecification) Action(name string) (*Action, bool) {
	m, ok := s.Member(name)
	if !ok {
		return nil, false
	}
	a, ok := m.(*Action)
	return a, ok
}

// Unclaimed returns the descriptor members no factory claimed and that did not
// become members, such as orphaned supporting methods
func (s *ObjectSpecification) Unclaimed() []descriptor.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]descriptor.Member(nil), s.unclaimed...)
}

// Removals returns the log of descriptor members claimed by factories
func (s *ObjectSpecification) Removals() []factory.Removal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]factory.Removal(nil), s.removals...)
}

// Holders returns the specification followed by every member and parameter
func (s *ObjectSpecification) Holders() []facet.Holder {
	holders := []facet.Holder{s}
	for _, m := range s.Members() {
		holders = append(holders, m)
		if a, ok := m.(*Action); ok {
			for _, p := range a.Parameters() {
				holders = append(holders, p)
			}
		}
	}
	return holders
}

// orderMembers sorts by member order facet; unordered members keep declaration
// order after the ordered ones
func orderMembers[M Member](members []M) {
	sort.SliceStable(members, func(i, j int) bool {
		a, aok := facet.Lookup[*facets.MemberOrderFacet](members[i], facets.MemberOrderKind)
		b, bok := facet.Lookup[*facets.MemberOrderFacet](members[j], facets.MemberOrderKind)
		switch {
		case aok && bok:
			return facets.CompareSequence(a.Sequence(), b.Sequence()) < 0
		case aok:
			return true
		default:
			return false
		}
	})
}
