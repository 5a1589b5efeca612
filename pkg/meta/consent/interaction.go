package consent

import (
	"context"
	"slices"

	"github.com/toyz/metamodel/pkg/meta/facet"
	"github.com/toyz/metamodel/pkg/meta/ident"
)

// Kind identifies which question is being asked of an element
type Kind int

const (
	Visibility Kind = iota
	Usability
	Validity
)

// String returns the string representation of the interaction kind
func (k Kind) String() string {
	switch k {
	case Visibility:
		return "visibility"
	case Usability:
		return "usability"
	case Validity:
		return "validity"
	default:
		return "unknown"
	}
}

// Initiator records who triggered the interaction
type Initiator int

const (
	ByUser Initiator = iota
	// ByFramework interactions pass through every check
	ByFramework
)

// Subject is the party the interaction is evaluated for
type Subject struct {
	Name  string
	Roles []string
}

// HasAnyRole reports whether the subject holds at least one of roles
func (s Subject) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(s.Roles, r) {
			return true
		}
	}
	return false
}

// Interaction describes one evaluation request
type Interaction struct {
	Kind       Kind
	Identifier ident.Identifier
	// Target is the live domain instance, nil when evaluating without one
	Target any
	// Proposed is the value offered for a property or parameter
	Proposed any
	// Args holds the proposed arguments when validating a whole action
	Args      []any
	Subject   Subject
	Initiator Initiator
}

// VisibilityAdvisor is implemented by facets that can hide an element
type VisibilityAdvisor interface {
	facet.Facet
	Hides(ctx context.Context, ic *Interaction) Consent
}

// UsabilityAdvisor is implemented by facets that can disable an element
type UsabilityAdvisor interface {
	facet.Facet
	Disables(ctx context.Context, ic *Interaction) Consent
}

// ValidityAdvisor is implemented by facets that can reject a proposed value
type ValidityAdvisor interface {
	facet.Facet
	Invalidates(ctx context.Context, ic *Interaction) Consent
}
