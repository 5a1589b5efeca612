package factory

import (
	"slices"

	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/facet"
	"github.com/toyz/metamodel/pkg/meta/facets"
	"github.com/toyz/metamodel/pkg/meta/ident"
)

// IgnoredMethods are framework methods that never become members
var IgnoredMethods = []string{
	"String", "GoString", "Error", "Format",
	"MarshalJSON", "UnmarshalJSON", "MarshalText", "UnmarshalText",
	"MetaAnnotations",
}

// IgnoredMethodsFactory removes framework methods such as String and Error
type IgnoredMethodsFactory struct{}

func (IgnoredMethodsFactory) Name() string                     { return "ignored-methods" }
func (IgnoredMethodsFactory) FeatureTypes() ident.FeatureTypes { return ident.ObjectsOnly }

func (f IgnoredMethodsFactory) ProcessClass(ctx *ProcessClassContext) {
	ctx.Remover.RemoveIf(func(m descriptor.Member) bool {
		return m.IsMethod() && slices.Contains(IgnoredMethods, m.Name)
	}, f.Name())
}

// ProgrammaticFactory removes members annotated programmatic
type ProgrammaticFactory struct{}

func (ProgrammaticFactory) Name() string                     { return "programmatic" }
func (ProgrammaticFactory) FeatureTypes() ident.FeatureTypes { return ident.ObjectsOnly }

func (f ProgrammaticFactory) ProcessClass(ctx *ProcessClassContext) {
	ctx.Remover.RemoveIf(func(m descriptor.Member) bool {
		return m.Annotations.Has("programmatic")
	}, f.Name())
}

// ObjectAnnotationsFactory reads the object and immutable annotations of a type
type ObjectAnnotationsFactory struct{}

func (ObjectAnnotationsFactory) Name() string                     { return "object-annotations" }
func (ObjectAnnotationsFactory) FeatureTypes() ident.FeatureTypes { return ident.ObjectsOnly }

func (ObjectAnnotationsFactory) ProcessClass(ctx *ProcessClassContext) {
	h := ctx.Holder
	if a, ok := ctx.Annotations().Get("object"); ok {
		if name := a.String("Named"); name != "" {
			h.AddFacet(facets.NewNamed(h, name, facet.PrecedenceExplicit))
		}
		if description := a.String("Described"); description != "" {
			h.AddFacet(facets.NewDescribedAs(h, description, facet.PrecedenceExplicit))
		}
		if a.Bool("Immutable") {
			h.AddFacet(facets.NewImmutable(h, "", facet.PrecedenceExplicit))
		}
	}
	if a, ok := ctx.Annotations().Get("immutable"); ok {
		h.AddFacet(facets.NewImmutable(h, a.String("Reason"), facet.PrecedenceExplicit))
	}
}

// TitleFactory installs a title from a Title() string method or from
// properties annotated title
type TitleFactory struct{}

func (TitleFactory) Name() string                     { return "title" }
func (TitleFactory) FeatureTypes() ident.FeatureTypes { return ident.ObjectsOnly }

func (f TitleFactory) ProcessClass(ctx *ProcessClassContext) {
	if m, ok := ctx.Remover.FindMethod("Title"); ok && len(m.Params) == 0 {
		if m.Type != "string" {
			ctx.Reporter.AddFailure(ident.ForAction(ctx.Type.Name, m.Name),
				"%s#%s: title method must return string, returns %q", ctx.Type.Name, m.Name, m.Type)
			ctx.Remover.Remove(m.Name, f.Name())
			return
		}
		ctx.Remover.Remove(m.Name, f.Name())
		ctx.Holder.AddFacet(facets.NewMethodTitle(ctx.Holder, m.Name, m.Invoke))
		return
	}

	var parts []facets.TitlePart
	for _, m := range ctx.Remover.Remaining() {
		a, ok := m.Annotations.Get("title")
		if !ok || m.Invoke == nil {
			continue
		}
		parts = append(parts, facets.TitlePart{Property: m.Name, Sequence: a.Int("Sequence", 1), Get: m.Invoke})
	}
	if len(parts) > 0 {
		ctx.Holder.AddFacet(facets.NewPropertyTitle(ctx.Holder, parts))
	}
}
