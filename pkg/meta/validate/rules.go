package validate

import (
	"github.com/toyz/metamodel/pkg/meta/facet"
	"github.com/toyz/metamodel/pkg/meta/factory"
	"github.com/toyz/metamodel/pkg/meta/ident"
)

// OrphanedSupportingMethods reports prefixed methods that no property,
// collection or action claimed
type OrphanedSupportingMethods struct{}

func (OrphanedSupportingMethods) Name() string { return "orphaned-supporting-methods" }

func (OrphanedSupportingMethods) Validate(g Graph, failures *Failures) {
	for _, s := range g.Specifications() {
		for _, m := range s.Unclaimed() {
			if !m.IsMethod() {
				continue
			}
			prefix, ok := factory.SupportingPrefix(m.Name)
			if !ok {
				continue
			}
			failures.AddFailure(ident.ForAction(s.Name(), m.Name, m.ParamTypes()...),
				"%s#%s: has prefix %s, is probably intended as a supporting method for a property, collection or action. "+
					"If the method is intended to be an action, annotate it with action; otherwise mark it programmatic",
				s.Name(), m.Name, prefix)
		}
	}
}

// DuplicateMemberIDs reports members of one type sharing an identifier
type DuplicateMemberIDs struct{}

func (DuplicateMemberIDs) Name() string { return "duplicate-member-ids" }

func (DuplicateMemberIDs) Validate(g Graph, failures *Failures) {
	for _, s := range g.Specifications() {
		seen := make(map[string]bool)
		for _, m := range s.Members() {
			id := m.Identifier().ShortString()
			if seen[id] {
				failures.AddFailure(m.Identifier(), "%s: member is declared more than once", id)
				continue
			}
			seen[id] = true
		}
	}
}

// ConflictingExplicitFacets reports holders given two explicit, non derived
// facets of one kind, such as a property annotated both mandatory and optional
type ConflictingExplicitFacets struct{}

func (ConflictingExplicitFacets) Name() string { return "conflicting-explicit-facets" }

func (ConflictingExplicitFacets) Validate(g Graph, failures *Failures) {
	for _, s := range g.Specifications() {
		for _, h := range s.Holders() {
			for _, active := range h.Facets() {
				if !isExplicit(active) {
					continue
				}
				h.ForEachContributedFacet(active.Kind(), func(shadow facet.Facet) {
					if isExplicit(shadow) {
						failures.AddFailure(h.Identifier(), "%s: conflicting explicit %s facets",
							h.Identifier(), active.Kind())
					}
				})
			}
		}
	}
}

func isExplicit(f facet.Facet) bool {
	return f.Precedence() == facet.PrecedenceExplicit && !f.Derived()
}

// ExplicitActions reports actions not annotated as such. It is only
// registered when actions must be declared explicitly.
type ExplicitActions struct{}

func (ExplicitActions) Name() string { return "explicit-actions" }

func (ExplicitActions) Validate(g Graph, failures *Failures) {
	for _, s := range g.Specifications() {
		for _, a := range s.Actions() {
			if a.Descriptor().Annotations.Has("action") {
				continue
			}
			failures.AddFailure(a.Identifier(),
				"%s: is not annotated as an action; annotate it with action or mark it programmatic",
				a.Identifier().ShortString())
		}
	}
}

// DefaultRules returns the built-in rules
func DefaultRules() []Rule {
	return []Rule{
		OrphanedSupportingMethods{},
		DuplicateMemberIDs{},
		ConflictingExplicitFacets{},
	}
}
