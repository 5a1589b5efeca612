package facets

import (
	"context"

	"github.com/toyz/metamodel/pkg/meta/consent"
	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/facet"
)

// Disabled reasons used by the built-in factories
const (
	AlwaysDisabledReason = "Always disabled"
	ReadOnlyReason       = "Read-only"
	ImmutableReason      = "Immutable"
)

// DisabledFacet always disables its holder with a fixed reason
type DisabledFacet struct {
	facet.Base
	reason string
}

// NewDisabled creates a disabled facet; an empty reason becomes AlwaysDisabledReason
func NewDisabled(h facet.Holder, reason string, p facet.Precedence, opts ...facet.Option) *DisabledFacet {
	if reason == "" {
		reason = AlwaysDisabledReason
	}
	return &DisabledFacet{Base: facet.NewBase(DisabledKind, h, p, opts...), reason: reason}
}

func (f *DisabledFacet) Reason() string { return f.reason }

func (f *DisabledFacet) Disables(context.Context, *consent.Interaction) consent.Consent {
	return consent.Veto(f.reason)
}

func (f *DisabledFacet) Attributes() map[string]any {
	return map[string]any{"reason": f.reason}
}

// DisableForContextFacet asks a Disable<Member>() string method of the target;
// a non-empty result is the veto reason
type DisableForContextFacet struct {
	facet.Base
	supporting
}

// NewDisableForContext creates a facet backed by the named supporting method
func NewDisableForContext(h facet.Holder, method string, invoke descriptor.Invoker) *DisableForContextFacet {
	return &DisableForContextFacet{
		Base:       facet.NewBase(DisableForContextKind, h, facet.PrecedenceExplicit),
		supporting: supporting{method: method, invoke: invoke},
	}
}

func (f *DisableForContextFacet) Disables(_ context.Context, ic *consent.Interaction) consent.Consent {
	if ic.Target == nil {
		return consent.Allow()
	}
	reason, err := f.reason(ic.Target)
	if err != nil {
		return consent.Fault(err)
	}
	return consent.FromReason(reason)
}

func (f *DisableForContextFacet) Attributes() map[string]any { return f.attributes() }
