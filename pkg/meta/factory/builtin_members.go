package factory

import (
	"github.com/toyz/metamodel/pkg/meta/facet"
	"github.com/toyz/metamodel/pkg/meta/facets"
	"github.com/toyz/metamodel/pkg/meta/ident"
)

// PropertyAccessorFactory installs the accessor of properties and collections
type PropertyAccessorFactory struct{}

func (PropertyAccessorFactory) Name() string                     { return "property-accessor" }
func (PropertyAccessorFactory) FeatureTypes() ident.FeatureTypes { return ident.PropertiesAndCollections }

func (PropertyAccessorFactory) ProcessMethod(ctx *ProcessMethodContext) {
	if ctx.Member.Invoke == nil {
		ctx.Reporter.AddFailure(ctx.Holder.Identifier(), "%s: %s has no accessor",
			ctx.Holder.Identifier(), ctx.FeatureType)
		return
	}
	ctx.Holder.AddFacet(facets.NewPropertyAccessor(ctx.Holder, ctx.Member.Invoke))
}

// PropertySetterFactory installs a setter from a Set<Name>(v) method or from
// field assignment. Properties without either are derived read-only.
type PropertySetterFactory struct{}

func (PropertySetterFactory) Name() string                     { return "property-setter" }
func (PropertySetterFactory) FeatureTypes() ident.FeatureTypes { return ident.PropertiesAndCollections }

func (f PropertySetterFactory) ProcessMethod(ctx *ProcessMethodContext) {
	h := ctx.Holder
	name := SupportingName(SetPrefix, ctx.Member.Name)
	if m, ok := ctx.Remover.FindMethod(name); ok {
		ctx.Remover.Remove(name, f.Name())
		if len(m.Params) != 1 || m.Type != "" {
			ctx.Reporter.AddFailure(h.Identifier(),
				"%s#%s: setter must take exactly one parameter and return nothing or an error",
				ctx.Type.Name, name)
			return
		}
		invoke := m.Invoke
		h.AddFacet(facets.NewPropertySetter(h, name, func(target, value any) error {
			_, err := invoke(target, []any{value})
			return err
		}))
		return
	}
	if ctx.Member.Assign != nil {
		h.AddFacet(facets.NewPropertySetter(h, "", ctx.Member.Assign))
		return
	}
	h.AddFacet(facets.NewDisabled(h, facets.ReadOnlyReason, facet.PrecedenceInferred, facet.WithDerived()))
}

// CollectionTypeOfFactory records the element type of collections
type CollectionTypeOfFactory struct{}

func (CollectionTypeOfFactory) Name() string                     { return "collection-type-of" }
func (CollectionTypeOfFactory) FeatureTypes() ident.FeatureTypes { return ident.CollectionsOnly }

func (CollectionTypeOfFactory) ProcessMethod(ctx *ProcessMethodContext) {
	if a, ok := ctx.Annotations().Get("collection"); ok && a.String("TypeOf") != "" {
		ctx.Holder.AddFacet(facets.NewTypeOf(ctx.Holder, a.String("TypeOf"), facet.PrecedenceExplicit))
		return
	}
	if ctx.Member.ElemType != "" {
		ctx.Holder.AddFacet(facets.NewTypeOf(ctx.Holder, ctx.Member.ElemType, facet.PrecedenceInferred))
		return
	}
	ctx.Reporter.AddFailure(ctx.Holder.Identifier(),
		"%s: cannot infer the element type of the collection, annotate it with collection -TypeOf",
		ctx.Holder.Identifier())
}

// ActionInvocationFactory installs the invocation facet of actions
type ActionInvocationFactory struct{}

func (ActionInvocationFactory) Name() string                     { return "action-invocation" }
func (ActionInvocationFactory) FeatureTypes() ident.FeatureTypes { return ident.ActionsOnly }

func (ActionInvocationFactory) ProcessMethod(ctx *ProcessMethodContext) {
	m := ctx.Member
	ctx.Holder.AddFacet(facets.NewActionInvocation(ctx.Holder, m.Invoke, m.Type, m.ReturnsError))
}
