package factory

import (
	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/facet"
	"github.com/toyz/metamodel/pkg/meta/facets"
	"github.com/toyz/metamodel/pkg/meta/ident"
)

// InferredOptionalityFactory infers that properties and parameters whose Go
// type can hold nil are optional
type InferredOptionalityFactory struct{}

func (InferredOptionalityFactory) Name() string                     { return "inferred-optionality" }
func (InferredOptionalityFactory) FeatureTypes() ident.FeatureTypes { return ident.PropertiesAndParameters }

func (InferredOptionalityFactory) ProcessMethod(ctx *ProcessMethodContext) {
	if descriptor.IsNillable(ctx.Member.Type) {
		ctx.Holder.AddFacet(facets.NewOptional(ctx.Holder, facet.PrecedenceInferred))
	}
}

func (InferredOptionalityFactory) ProcessParameter(ctx *ProcessParameterContext) {
	if descriptor.IsNillable(ctx.Param.Type) {
		ctx.Holder.AddFacet(facets.NewOptional(ctx.Holder, facet.PrecedenceInferred))
	}
}

// ImmutableFactory disables every property and collection of an immutable type
type ImmutableFactory struct{}

func (ImmutableFactory) Name() string                     { return "immutable" }
func (ImmutableFactory) FeatureTypes() ident.FeatureTypes { return ident.PropertiesAndCollections }

func (ImmutableFactory) ProcessMethod(ctx *ProcessMethodContext) {
	immutable, ok := facet.Lookup[*facets.ImmutableFacet](ctx.Owner, facets.ImmutableKind)
	if !ok {
		return
	}
	ctx.Holder.AddFacet(facets.NewDisabled(ctx.Holder, immutable.Reason(), facet.PrecedenceInferred, facet.WithDerived()))
}
