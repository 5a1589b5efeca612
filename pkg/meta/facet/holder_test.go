package facet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/metamodel/pkg/meta/ident"
)

const (
	kindMandatory Kind = "mandatory"
	kindNamed     Kind = "named"
	kindHidden    Kind = "hidden"
)

type testFacet struct {
	Base
	label string
}

func newTestFacet(kind Kind, h Holder, p Precedence, label string, opts ...Option) *testFacet {
	return &testFacet{Base: NewBase(kind, h, p, opts...), label: label}
}

func TestAddFacetFirstContributionBecomesActive(t *testing.T) {
	h := NewHolder(ident.ForProperty("demo.Invoice", "Amount"))
	f := newTestFacet(kindMandatory, h, PrecedenceInferred, "optional")

	h.AddFacet(f)

	assert.Same(t, f, h.Facet(kindMandatory))
	assert.True(t, h.HasFacet(kindMandatory))
	assert.False(t, h.HasFacet(kindNamed))
	assert.Nil(t, h.Facet(kindNamed))
}

func TestAddFacetPrecedence(t *testing.T) {
	tests := []struct {
		name          string
		first         Precedence
		second        Precedence
		secondWins    bool
		alwaysReplace bool
	}{
		{"higher precedence replaces", PrecedenceInferred, PrecedenceExplicit, true, false},
		{"lower precedence is shadowed", PrecedenceExplicit, PrecedenceInferred, false, false},
		{"equal precedence keeps existing", PrecedenceInferred, PrecedenceInferred, false, false},
		{"fallback never replaces", PrecedenceInferred, PrecedenceFallback, false, false},
		{"always replace ignores precedence", PrecedenceExplicit, PrecedenceFallback, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHolder(ident.ForProperty("demo.Invoice", "Amount"))
			first := newTestFacet(kindMandatory, h, tt.first, "first")
			var opts []Option
			if tt.alwaysReplace {
				opts = append(opts, WithAlwaysReplace())
			}
			second := newTestFacet(kindMandatory, h, tt.second, "second", opts...)

			h.AddFacet(first)
			h.AddFacet(second)

			var shadows []Facet
			h.ForEachContributedFacet(kindMandatory, func(f Facet) { shadows = append(shadows, f) })
			require.Len(t, shadows, 1)

			if tt.secondWins {
				assert.Same(t, second, h.Facet(kindMandatory))
				assert.Same(t, first, shadows[0])
			} else {
				assert.Same(t, first, h.Facet(kindMandatory))
				assert.Same(t, second, shadows[0])
			}
		})
	}
}

func TestAddFacetOrderIndependentOutcome(t *testing.T) {
	build := func(explicitFirst bool) Holder {
		h := NewHolder(ident.ForProperty("demo.Invoice", "Amount"))
		inferred := newTestFacet(kindMandatory, h, PrecedenceInferred, "optional")
		explicit := newTestFacet(kindMandatory, h, PrecedenceExplicit, "mandatory")
		if explicitFirst {
			h.AddFacet(explicit)
			h.AddFacet(inferred)
		} else {
			h.AddFacet(inferred)
			h.AddFacet(explicit)
		}
		return h
	}

	for _, explicitFirst := range []bool{true, false} {
		f, ok := Lookup[*testFacet](build(explicitFirst), kindMandatory)
		require.True(t, ok)
		assert.Equal(t, "mandatory", f.label)
	}
}

func TestRemoveFacetPromotesStrongestShadow(t *testing.T) {
	h := NewHolder(ident.ForProperty("demo.Invoice", "Amount"))
	fallback := newTestFacet(kindMandatory, h, PrecedenceFallback, "fallback")
	inferred := newTestFacet(kindMandatory, h, PrecedenceInferred, "inferred")
	explicit := newTestFacet(kindMandatory, h, PrecedenceExplicit, "explicit")
	h.AddFacet(fallback)
	h.AddFacet(inferred)
	h.AddFacet(explicit)

	assert.True(t, h.RemoveFacet(explicit))
	assert.Same(t, inferred, h.Facet(kindMandatory))

	assert.True(t, h.RemoveFacet(inferred))
	assert.Same(t, fallback, h.Facet(kindMandatory))

	assert.True(t, h.RemoveFacet(fallback))
	assert.Nil(t, h.Facet(kindMandatory))
	assert.False(t, h.RemoveFacet(fallback))
}

func TestRemoveShadowedFacet(t *testing.T) {
	h := NewHolder(ident.ForClass("demo.Invoice"))
	active := newTestFacet(kindNamed, h, PrecedenceExplicit, "Invoice")
	shadow := newTestFacet(kindNamed, h, PrecedenceFallback, "invoice")
	h.AddFacet(active)
	h.AddFacet(shadow)

	assert.True(t, h.RemoveFacet(shadow))
	assert.Same(t, active, h.Facet(kindNamed))
	assert.Empty(t, Contributions(h, kindNamed)[1:])
}

func TestFacetsKeepAttachmentOrder(t *testing.T) {
	h := NewHolder(ident.ForProperty("demo.Invoice", "Amount"))
	hidden := newTestFacet(kindHidden, h, PrecedenceExplicit, "hidden")
	named := newTestFacet(kindNamed, h, PrecedenceFallback, "Amount")
	mandatory := newTestFacet(kindMandatory, h, PrecedenceInferred, "optional")
	replacement := newTestFacet(kindNamed, h, PrecedenceExplicit, "Total")

	h.AddFacet(hidden)
	h.AddFacet(named)
	h.AddFacet(mandatory)
	h.AddFacet(replacement)

	facets := h.Facets()
	require.Len(t, facets, 3)
	assert.Same(t, hidden, facets[0])
	assert.Same(t, replacement, facets[1])
	assert.Same(t, mandatory, facets[2])

	h.RemoveFacet(hidden)
	assert.Equal(t, []Facet{replacement, mandatory}, h.Facets())
}

func TestLookupWrongType(t *testing.T) {
	type otherFacet struct{ Base }
	h := NewHolder(ident.ForClass("demo.Invoice"))
	h.AddFacet(newTestFacet(kindNamed, h, PrecedenceExplicit, "Invoice"))

	_, ok := Lookup[*otherFacet](h, kindNamed)
	assert.False(t, ok)

	_, ok = Lookup[*testFacet](nil, kindNamed)
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	h := NewHolder(ident.ForClass("demo.Invoice"))
	f := newTestFacet(kindHidden, h, PrecedenceInferred, "x", WithDerived(), WithAlwaysReplace())
	assert.Equal(t, "hidden[inferred] derived always-replace", Describe(f))
	assert.True(t, f.Derived())
	assert.Same(t, h, f.Holder())
}
