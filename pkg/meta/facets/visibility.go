package facets

import (
	"context"
	"fmt"

	"github.com/toyz/metamodel/pkg/meta/consent"
	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/facet"
)

// HiddenReason is the veto reason of hidden elements
const HiddenReason = "Hidden"

// HiddenFacet always hides its holder
type HiddenFacet struct {
	facet.Base
}

// NewHidden creates a hidden facet
func NewHidden(h facet.Holder, p facet.Precedence, opts ...facet.Option) *HiddenFacet {
	return &HiddenFacet{Base: facet.NewBase(HiddenKind, h, p, opts...)}
}

func (f *HiddenFacet) Hides(context.Context, *consent.Interaction) consent.Consent {
	return consent.Veto(HiddenReason)
}

// HideForContextFacet asks a Hide<Member>() bool method of the target
type HideForContextFacet struct {
	facet.Base
	supporting
}

// NewHideForContext creates a facet backed by the named supporting method
func NewHideForContext(h facet.Holder, method string, invoke descriptor.Invoker) *HideForContextFacet {
	return &HideForContextFacet{
		Base:       facet.NewBase(HideForContextKind, h, facet.PrecedenceExplicit),
		supporting: supporting{method: method, invoke: invoke},
	}
}

func (f *HideForContextFacet) Hides(_ context.Context, ic *consent.Interaction) consent.Consent {
	if ic.Target == nil {
		return consent.Allow()
	}
	out, err := f.call(ic.Target)
	if err != nil {
		return consent.Fault(err)
	}
	hidden, ok := out.(bool)
	if !ok {
		return consent.Fault(fmt.Errorf("%s returned %T, expected bool", f.method, out))
	}
	if hidden {
		return consent.Veto(HiddenReason)
	}
	return consent.Allow()
}

func (f *HideForContextFacet) Attributes() map[string]any { return f.attributes() }

// Authorization veto reasons
const (
	NotAuthorizedToView = "Not authorized to view"
	NotAuthorizedToEdit = "Not authorized to edit"
)

// AuthorizationFacet restricts viewing and using an element to subjects holding a role
type AuthorizationFacet struct {
	facet.Base
	view []string
	use  []string
}

// NewAuthorization creates a role based facet; empty role lists do not restrict
func NewAuthorization(h facet.Holder, view, use []string, p facet.Precedence) *AuthorizationFacet {
	return &AuthorizationFacet{Base: facet.NewBase(AuthorizationKind, h, p), view: view, use: use}
}

func (f *AuthorizationFacet) ViewRoles() []string { return f.view }
func (f *AuthorizationFacet) UseRoles() []string  { return f.use }

func (f *AuthorizationFacet) Hides(_ context.Context, ic *consent.Interaction) consent.Consent {
	if len(f.view) > 0 && !ic.Subject.HasAnyRole(f.view...) {
		return consent.Veto(NotAuthorizedToView)
	}
	return consent.Allow()
}

func (f *AuthorizationFacet) Disables(_ context.Context, ic *consent.Interaction) consent.Consent {
	if len(f.use) > 0 && !ic.Subject.HasAnyRole(f.use...) {
		return consent.Veto(NotAuthorizedToEdit)
	}
	return consent.Allow()
}

func (f *AuthorizationFacet) Attributes() map[string]any {
	return map[string]any{"view": f.view, "use": f.use}
}
