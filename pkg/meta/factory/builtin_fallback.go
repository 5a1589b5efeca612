package factory

import (
	"strings"

	"github.com/toyz/metamodel/pkg/meta/facet"
	"github.com/toyz/metamodel/pkg/meta/facets"
	"github.com/toyz/metamodel/pkg/meta/ident"
)

// FallbackFactory installs the lowest precedence facets every element starts
// with: a name derived from the identifier and, for properties and parameters,
// a mandatory value
type FallbackFactory struct{}

func (FallbackFactory) Name() string                     { return "fallback" }
func (FallbackFactory) FeatureTypes() ident.FeatureTypes { return ident.Everything }

func (FallbackFactory) ProcessClass(ctx *ProcessClassContext) {
	ctx.Holder.AddFacet(facets.NewNamed(ctx.Holder, ident.NaturalName(simpleName(ctx.Type.Name)), facet.PrecedenceFallback))
}

func (FallbackFactory) ProcessMethod(ctx *ProcessMethodContext) {
	ctx.Holder.AddFacet(facets.NewNamed(ctx.Holder, ident.NaturalName(ctx.Member.Name), facet.PrecedenceFallback))
	if ctx.FeatureType.IsProperty() {
		ctx.Holder.AddFacet(facets.NewMandatory(ctx.Holder, facet.PrecedenceFallback))
	}
}

func (FallbackFactory) ProcessParameter(ctx *ProcessParameterContext) {
	ctx.Holder.AddFacet(facets.NewNamed(ctx.Holder, ident.NaturalName(ctx.Param.Name), facet.PrecedenceFallback))
	ctx.Holder.AddFacet(facets.NewMandatory(ctx.Holder, facet.PrecedenceFallback))
}

// simpleName strips the package qualifier, "demo.Invoice" becomes "Invoice"
func simpleName(typeName string) string {
	if i := strings.LastIndex(typeName, "."); i >= 0 {
		return typeName[i+1:]
	}
	return typeName
}
