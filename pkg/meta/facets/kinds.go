// Package facets contains the concrete facets contributed by the built-in
// factories. Declarative facets carry static metadata; imperative facets call
// supporting methods on the domain object.
package facets

import "github.com/toyz/metamodel/pkg/meta/facet"

// Facet kinds of the built-in facets
const (
	HiddenKind            facet.Kind = "hidden"
	HideForContextKind    facet.Kind = "hide-for-context"
	DisabledKind          facet.Kind = "disabled"
	DisableForContextKind facet.Kind = "disable-for-context"
	AuthorizationKind     facet.Kind = "authorization"

	MandatoryKind          facet.Kind = "mandatory"
	MaxLengthKind          facet.Kind = "max-length"
	RegexKind              facet.Kind = "regex"
	ValidateForContextKind facet.Kind = "validate-for-context"
	ActionValidationKind   facet.Kind = "action-validation"

	NamedKind       facet.Kind = "named"
	DescribedAsKind facet.Kind = "described-as"
	TitleKind       facet.Kind = "title"

	PropertyAccessorKind facet.Kind = "property-accessor"
	PropertySetterKind   facet.Kind = "property-setter"
	ActionInvocationKind facet.Kind = "action-invocation"
	DefaultedKind        facet.Kind = "defaulted"
	ChoicesKind          facet.Kind = "choices"
	TypeOfKind           facet.Kind = "type-of"
	ValueKind            facet.Kind = "value"

	ImmutableKind       facet.Kind = "immutable"
	MemberOrderKind     facet.Kind = "member-order"
	ActionSemanticsKind facet.Kind = "action-semantics"
	DomainEventKind     facet.Kind = "domain-event"
)
