package facets

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/toyz/metamodel/pkg/meta/consent"
	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/facet"
)

// MandatoryReason is the veto reason when a required value is missing
const MandatoryReason = "Mandatory"

// MandatoryFacet records whether a property or parameter requires a value.
// Mandatory and optional share one kind so precedence decides between them.
type MandatoryFacet struct {
	facet.Base
	optional bool
}

// NewMandatory creates a facet requiring a value
func NewMandatory(h facet.Holder, p facet.Precedence, opts ...facet.Option) *MandatoryFacet {
	return &MandatoryFacet{Base: facet.NewBase(MandatoryKind, h, p, opts...)}
}

// NewOptional creates a facet allowing a missing value
func NewOptional(h facet.Holder, p facet.Precedence, opts ...facet.Option) *MandatoryFacet {
	return &MandatoryFacet{Base: facet.NewBase(MandatoryKind, h, p, opts...), optional: true}
}

func (f *MandatoryFacet) IsRequired() bool { return !f.optional }

func (f *MandatoryFacet) Invalidates(_ context.Context, ic *consent.Interaction) consent.Consent {
	if !f.optional && IsMissing(ic.Proposed) {
		return consent.Veto(MandatoryReason)
	}
	return consent.Allow()
}

func (f *MandatoryFacet) Attributes() map[string]any {
	return map[string]any{"required": !f.optional}
}

// MaxLengthFacet limits the length of string values
type MaxLengthFacet struct {
	facet.Base
	max int
}

// NewMaxLength creates a maximum length facet
func NewMaxLength(h facet.Holder, limit int, p facet.Precedence) *MaxLengthFacet {
	return &MaxLengthFacet{Base: facet.NewBase(MaxLengthKind, h, p), max: limit}
}

func (f *MaxLengthFacet) Max() int { return f.max }

func (f *MaxLengthFacet) Invalidates(_ context.Context, ic *consent.Interaction) consent.Consent {
	s, ok := stringValue(ic.Proposed)
	if ok && utf8.RuneCountInString(s) > f.max {
		return consent.Vetof("The value proposed exceeds the maximum length of %d", f.max)
	}
	return consent.Allow()
}

func (f *MaxLengthFacet) Attributes() map[string]any {
	return map[string]any{"max": f.max}
}

// RegexFacet requires string values to match a pattern. Empty values are left to MandatoryFacet.
type RegexFacet struct {
	facet.Base
	pattern *regexp.Regexp
	reason  string
}

// NewRegex compiles pattern into a regex facet
func NewRegex(h facet.Holder, pattern, reason string, p facet.Precedence) (*RegexFacet, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	if reason == "" {
		reason = "Doesn't match pattern"
	}
	return &RegexFacet{Base: facet.NewBase(RegexKind, h, p), pattern: re, reason: reason}, nil
}

func (f *RegexFacet) Pattern() string { return f.pattern.String() }

func (f *RegexFacet) Invalidates(_ context.Context, ic *consent.Interaction) consent.Consent {
	s, ok := stringValue(ic.Proposed)
	if !ok || s == "" || f.pattern.MatchString(s) {
		return consent.Allow()
	}
	return consent.Veto(f.reason)
}

func (f *RegexFacet) Attributes() map[string]any {
	return map[string]any{"pattern": f.pattern.String(), "reason": f.reason}
}

// ValidateForContextFacet passes a proposed property or parameter value to a
// Validate<Member>(v) string method of the target
type ValidateForContextFacet struct {
	facet.Base
	supporting
}

// NewValidateForContext creates a facet backed by the named supporting method
func NewValidateForContext(h facet.Holder, method string, invoke descriptor.Invoker) *ValidateForContextFacet {
	return &ValidateForContextFacet{
		Base:       facet.NewBase(ValidateForContextKind, h, facet.PrecedenceExplicit),
		supporting: supporting{method: method, invoke: invoke},
	}
}

func (f *ValidateForContextFacet) Invalidates(_ context.Context, ic *consent.Interaction) consent.Consent {
	if ic.Target == nil {
		return consent.Allow()
	}
	reason, err := f.reason(ic.Target, ic.Proposed)
	if err != nil {
		return consent.Fault(err)
	}
	return consent.FromReason(reason)
}

func (f *ValidateForContextFacet) Attributes() map[string]any { return f.attributes() }

// ActionValidationFacet passes the complete argument list to a
// Validate<Action>(args...) string method of the target
type ActionValidationFacet struct {
	facet.Base
	supporting
}

// NewActionValidation creates a facet backed by the named supporting method
func NewActionValidation(h facet.Holder, method string, invoke descriptor.Invoker) *ActionValidationFacet {
	return &ActionValidationFacet{
		Base:       facet.NewBase(ActionValidationKind, h, facet.PrecedenceExplicit),
		supporting: supporting{method: method, invoke: invoke},
	}
}

func (f *ActionValidationFacet) Invalidates(_ context.Context, ic *consent.Interaction) consent.Consent {
	if ic.Target == nil {
		return consent.Allow()
	}
	reason, err := f.reason(ic.Target, ic.Args...)
	if err != nil {
		return consent.Fault(err)
	}
	return consent.FromReason(reason)
}

func (f *ActionValidationFacet) Attributes() map[string]any { return f.attributes() }
