// Package facet holds the facet and facet holder model: a holder keeps at most
// one active facet per kind, and remembers the contributions it shadowed.
package facet

import "fmt"

// Kind is the stable tag under which a facet is stored on its holder
type Kind string

// Precedence orders competing contributions of the same kind
type Precedence int

const (
	PrecedenceFallback Precedence = iota
	PrecedenceInferred
	PrecedenceExplicit
)

// String returns the string representation of the precedence
func (p Precedence) String() string {
	switch p {
	case PrecedenceFallback:
		return "fallback"
	case PrecedenceInferred:
		return "inferred"
	case PrecedenceExplicit:
		return "explicit"
	default:
		return fmt.Sprintf("precedence(%d)", int(p))
	}
}

// Facet is a single piece of semantics attached to a holder
type Facet interface {
	Kind() Kind
	Holder() Holder
	Precedence() Precedence
	// Derived facets are computed from other facets rather than contributed directly
	Derived() bool
	// AlwaysReplace facets displace whatever is active regardless of precedence
	AlwaysReplace() bool
}

// AttributeSource is implemented by facets that expose details for inspection
type AttributeSource interface {
	Attributes() map[string]any
}

// Option configures a Base
type Option func(*Base)

// WithDerived marks the facet as derived
func WithDerived() Option {
	return func(b *Base) { b.derived = true }
}

// WithAlwaysReplace makes the facet displace any active facet of its kind
func WithAlwaysReplace() Option {
	return func(b *Base) { b.alwaysReplace = true }
}

// Base implements Facet and is embedded by concrete facets
type Base struct {
	kind          Kind
	holder        Holder
	precedence    Precedence
	derived       bool
	alwaysReplace bool
}

// NewBase creates the embeddable part of a facet
func NewBase(kind Kind, holder Holder, precedence Precedence, opts ...Option) Base {
	b := Base{kind: kind, holder: holder, precedence: precedence}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *Base) Kind() Kind             { return b.kind }
func (b *Base) Holder() Holder         { return b.holder }
func (b *Base) Precedence() Precedence { return b.precedence }
func (b *Base) Derived() bool          { return b.derived }
func (b *Base) AlwaysReplace() bool    { return b.alwaysReplace }

// Describe renders a facet for logs and diagnostics
func Describe(f Facet) string {
	s := fmt.Sprintf("%s[%s]", f.Kind(), f.Precedence())
	if f.Derived() {
		s += " derived"
	}
	if f.AlwaysReplace() {
		s += " always-replace"
	}
	return s
}
