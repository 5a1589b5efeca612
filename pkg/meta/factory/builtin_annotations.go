package factory

import (
	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/facet"
	"github.com/toyz/metamodel/pkg/meta/facets"
	"github.com/toyz/metamodel/pkg/meta/ident"
)

// BuildFunc turns one annotation into a facet for h. It returns nil when the
// annotation contributes nothing and reports malformed input through report.
type BuildFunc func(a descriptor.Annotation, h facet.Holder, report func(format string, args ...any)) facet.Facet

// AnnotationFactory attaches an explicit facet for every element carrying its annotation
type AnnotationFactory struct {
	name       string
	annotation string
	types      ident.FeatureTypes
	build      BuildFunc
}

// NewAnnotationFactory creates a factory reacting to the named annotation
func NewAnnotationFactory(name, annotation string, types ident.FeatureTypes, build BuildFunc) *AnnotationFactory {
	return &AnnotationFactory{name: name, annotation: annotation, types: types, build: build}
}

func (f *AnnotationFactory) Name() string                     { return f.name }
func (f *AnnotationFactory) FeatureTypes() ident.FeatureTypes { return f.types }

func (f *AnnotationFactory) ProcessClass(ctx *ProcessClassContext) {
	f.apply(ctx.Annotations(), ctx.Holder, ctx.Reporter)
}

func (f *AnnotationFactory) ProcessMethod(ctx *ProcessMethodContext) {
	f.apply(ctx.Annotations(), ctx.Holder, ctx.Reporter)
}

func (f *AnnotationFactory) ProcessParameter(ctx *ProcessParameterContext) {
	f.apply(ctx.Annotations(), ctx.Holder, ctx.Reporter)
}

func (f *AnnotationFactory) apply(as descriptor.Annotations, h facet.Holder, rep Reporter) {
	a, ok := as.Get(f.annotation)
	if !ok {
		return
	}
	report := func(format string, args ...any) {
		rep.AddFailure(h.Identifier(), "%s: "+format, append([]any{h.Identifier()}, args...)...)
	}
	if fct := f.build(a, h, report); fct != nil {
		h.AddFacet(fct)
	}
}

// AnnotationFactories returns the factories of the built-in declarative annotations
func AnnotationFactories() []Factory {
	return []Factory{
		NewAnnotationFactory("hidden-annotation", "hidden", ident.Members,
			func(_ descriptor.Annotation, h facet.Holder, _ func(string, ...any)) facet.Facet {
				return facets.NewHidden(h, facet.PrecedenceExplicit)
			}),
		NewAnnotationFactory("disabled-annotation", "disabled", ident.Members,
			func(a descriptor.Annotation, h facet.Holder, _ func(string, ...any)) facet.Facet {
				return facets.NewDisabled(h, a.String("Reason"), facet.PrecedenceExplicit)
			}),
		NewAnnotationFactory("mandatory-annotation", "mandatory", ident.PropertiesAndParameters,
			func(_ descriptor.Annotation, h facet.Holder, _ func(string, ...any)) facet.Facet {
				return facets.NewMandatory(h, facet.PrecedenceExplicit)
			}),
		NewAnnotationFactory("optional-annotation", "optional", ident.PropertiesAndParameters,
			func(_ descriptor.Annotation, h facet.Holder, _ func(string, ...any)) facet.Facet {
				return facets.NewOptional(h, facet.PrecedenceExplicit)
			}),
		NewAnnotationFactory("maxlength-annotation", "maxlength", ident.PropertiesAndParameters,
			func(a descriptor.Annotation, h facet.Holder, report func(string, ...any)) facet.Facet {
				n := a.Int("Value")
				if n <= 0 {
					report("maxlength must be greater than zero, got %q", a.String("Value"))
					return nil
				}
				return facets.NewMaxLength(h, n, facet.PrecedenceExplicit)
			}),
		NewAnnotationFactory("regex-annotation", "regex", ident.PropertiesAndParameters,
			func(a descriptor.Annotation, h facet.Holder, report func(string, ...any)) facet.Facet {
				f, err := facets.NewRegex(h, a.String("Pattern"), a.String("Reason"), facet.PrecedenceExplicit)
				if err != nil {
					report("%v", err)
					return nil
				}
				return f
			}),
		NewAnnotationFactory("named-annotation", "named", ident.Everything,
			func(a descriptor.Annotation, h facet.Holder, _ func(string, ...any)) facet.Facet {
				return facets.NewNamed(h, a.String("Value"), facet.PrecedenceExplicit)
			}),
		NewAnnotationFactory("described-annotation", "described", ident.Everything,
			func(a descriptor.Annotation, h facet.Holder, _ func(string, ...any)) facet.Facet {
				return facets.NewDescribedAs(h, a.String("Value"), facet.PrecedenceExplicit)
			}),
		NewAnnotationFactory("roles-annotation", "roles", ident.ObjectsOnly|ident.Members,
			func(a descriptor.Annotation, h facet.Holder, report func(string, ...any)) facet.Facet {
				view, use := a.Strings("View"), a.Strings("Use")
				if len(view) == 0 && len(use) == 0 {
					report("roles annotation requires -View or -Use")
					return nil
				}
				return facets.NewAuthorization(h, view, use, facet.PrecedenceExplicit)
			}),
		NewAnnotationFactory("action-semantics-annotation", "action", ident.ActionsOnly,
			func(a descriptor.Annotation, h facet.Holder, report func(string, ...any)) facet.Facet {
				semantics := a.String("Semantics", facets.NonIdempotent)
				switch semantics {
				case facets.Safe, facets.Idempotent, facets.NonIdempotent:
					return facets.NewActionSemantics(h, semantics, facet.PrecedenceExplicit)
				}
				report("unknown action semantics %q", semantics)
				return nil
			}),
		NewAnnotationFactory("action-event-annotation", "action", ident.ActionsOnly,
			func(a descriptor.Annotation, h facet.Holder, _ func(string, ...any)) facet.Facet {
				if topic := a.String("Event"); topic != "" {
					return facets.NewDomainEvent(h, topic, facet.PrecedenceExplicit)
				}
				return nil
			}),
		NewAnnotationFactory("event-annotation", "event", ident.Members,
			func(a descriptor.Annotation, h facet.Holder, _ func(string, ...any)) facet.Facet {
				return facets.NewDomainEvent(h, a.String("Name"), facet.PrecedenceExplicit)
			}),
		NewAnnotationFactory("order-annotation", "order", ident.Members,
			func(a descriptor.Annotation, h facet.Holder, _ func(string, ...any)) facet.Facet {
				return facets.NewMemberOrder(h, a.String("Sequence"), facet.PrecedenceExplicit)
			}),
	}
}
