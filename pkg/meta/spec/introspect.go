package spec

import (
	"errors"

	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/facet"
	"github.com/toyz/metamodel/pkg/meta/factory"
)

// introspectorName is recorded in removal logs for members turned into
// properties, collections and actions
const introspectorName = "introspector"

// introspector builds one specification: the class first, then properties and
// collections, then actions, then action parameters
type introspector struct {
	loader  *Loader
	entry   *entry
	spec    *ObjectSpecification
	typ     *descriptor.Type
	remover *factory.MethodRemover
}

func newIntrospector(l *Loader, e *entry) *introspector {
	return &introspector{
		loader:  l,
		entry:   e,
		spec:    e.spec,
		typ:     e.spec.typ,
		remover: factory.NewMethodRemover(e.spec.typ.Members),
	}
}

func (in *introspector) introspect() {
	model := in.loader.model
	reporter := in.loader.reporter

	model.ProcessClass(&factory.ProcessClassContext{
		Type:     in.typ,
		Holder:   in.spec,
		Remover:  in.remover,
		Reporter: reporter,
	})

	var members []Member
	for _, m := range in.remover.Remaining() {
		if !isPropertyCandidate(m) {
			continue
		}
		if _, ok := in.remover.Remove(m.Name, introspectorName); !ok {
			continue
		}
		var member Member
		if isCollection(m) {
			member = newCollection(in.spec, m)
		} else {
			member = newProperty(in.spec, m)
		}
		model.ProcessMethod(in.methodContext(m, member))
		members = append(members, member)
	}

	var actions []*Action
	for _, m := range in.remover.Remaining() {
		if !isActionCandidate(m) {
			continue
		}
		if _, ok := in.remover.Remove(m.Name, introspectorName); !ok {
			continue
		}
		actions = append(actions, newAction(in.spec, m))
	}
	for _, a := range actions {
		model.ProcessMethod(in.methodContext(a.desc, a))
		members = append(members, a)
	}
	for _, a := range actions {
		for _, p := range a.params {
			model.ProcessParameter(&factory.ProcessParameterContext{
				Type:     in.typ,
				Action:   a.desc,
				Index:    p.index,
				Param:    p.desc,
				Holder:   p,
				Owner:    in.spec,
				Remover:  in.remover,
				Reporter: reporter,
			})
		}
	}

	for _, m := range members {
		in.resolveMember(m)
	}

	orderMembers(members)
	in.publish(members)
}

func (in *introspector) methodContext(m descriptor.Member, holder Member) *factory.ProcessMethodContext {
	return &factory.ProcessMethodContext{
		Type:        in.typ,
		Member:      m,
		FeatureType: holder.FeatureType(),
		Holder:      holder,
		Owner:       in.spec,
		Remover:     in.remover,
		Reporter:    in.loader.reporter,
	}
}

// resolveMember links a member, and the parameters of an action, to the
// specifications of their types
func (in *introspector) resolveMember(m Member) {
	switch member := m.(type) {
	case *Property:
		member.setType(in.resolve(member, member.desc.Type))
	case *Collection:
		member.setType(in.resolve(member, member.ElemType()))
	case *Action:
		if member.desc.Type != "" {
			member.setType(in.resolve(member, member.desc.Type))
		}
		for _, p := range member.params {
			p.typ = in.resolve(p, p.desc.Type)
		}
	}
}

func (in *introspector) resolve(h facet.Holder, typeName string) *ObjectSpecification {
	name := descriptor.BaseTypeName(typeName)
	if name == "" {
		in.loader.reporter.AddFailure(h.Identifier(), "%s: has no type", h.Identifier())
		return nil
	}
	dep, err := in.loader.entryFor(name)
	if err != nil {
		if errors.Is(err, ErrSpecNotFound) {
			in.loader.reporter.AddFailure(h.Identifier(), "%s: type %s is not known to the metamodel", h.Identifier(), name)
		}
		return nil
	}
	if dep != in.entry {
		in.entry.deps = append(in.entry.deps, dep)
	}
	return dep.spec
}

func (in *introspector) publish(members []Member) {
	s := in.spec
	s.mu.Lock()
	defer s.mu.Unlock()

	s.members = members
	for _, m := range members {
		switch member := m.(type) {
		case *Property:
			s.properties = append(s.properties, member)
		case *Collection:
			s.collections = append(s.collections, member)
		case *Action:
			s.actions = append(s.actions, member)
		}
	}
	s.unclaimed = in.remover.Remaining()
	s.removals = in.remover.Log()
	s.introspected = true
}

// isPropertyCandidate reports whether m becomes a property or collection:
// every field, and methods annotated as one
func isPropertyCandidate(m descriptor.Member) bool {
	if m.IsField() {
		return true
	}
	return m.Annotations.Has("property") || m.Annotations.Has("collection")
}

func isCollection(m descriptor.Member) bool {
	if m.Annotations.Has("collection") {
		return true
	}
	return !m.Annotations.Has("property") && m.ElemType != ""
}

// isActionCandidate reports whether m becomes an action: methods annotated as
// one, and every other method whose name does not mark it as supporting
func isActionCandidate(m descriptor.Member) bool {
	if !m.IsMethod() {
		return false
	}
	if m.Annotations.Has("action") {
		return true
	}
	_, supporting := factory.SupportingPrefix(m.Name)
	return !supporting
}
