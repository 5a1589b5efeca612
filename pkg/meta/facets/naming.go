package facets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/facet"
)

// NamedFacet holds the presentable name of an element
type NamedFacet struct {
	facet.Base
	name string
}

// NewNamed creates a named facet
func NewNamed(h facet.Holder, name string, p facet.Precedence) *NamedFacet {
	return &NamedFacet{Base: facet.NewBase(NamedKind, h, p), name: name}
}

func (f *NamedFacet) Name() string { return f.name }

func (f *NamedFacet) Attributes() map[string]any {
	return map[string]any{"name": f.name}
}

// DescribedAsFacet holds a longer description of an element
type DescribedAsFacet struct {
	facet.Base
	description string
}

// NewDescribedAs creates a description facet
func NewDescribedAs(h facet.Holder, description string, p facet.Precedence) *DescribedAsFacet {
	return &DescribedAsFacet{Base: facet.NewBase(DescribedAsKind, h, p), description: description}
}

func (f *DescribedAsFacet) Description() string { return f.description }

func (f *DescribedAsFacet) Attributes() map[string]any {
	return map[string]any{"description": f.description}
}

// TitlePart is a property that contributes to a composed title
type TitlePart struct {
	Property string
	Sequence int
	Get      descriptor.Invoker
}

// TitleFacet renders the title of a domain object, either through a Title()
// method or by joining the values of title properties
type TitleFacet struct {
	facet.Base
	method *supporting
	parts  []TitlePart
}

// NewMethodTitle creates a title facet backed by a Title() string method
func NewMethodTitle(h facet.Holder, method string, invoke descriptor.Invoker) *TitleFacet {
	return &TitleFacet{
		Base:   facet.NewBase(TitleKind, h, facet.PrecedenceExplicit),
		method: &supporting{method: method, invoke: invoke},
	}
}

// NewPropertyTitle creates a title facet composed from properties, ordered by sequence
func NewPropertyTitle(h facet.Holder, parts []TitlePart) *TitleFacet {
	sorted := append([]TitlePart(nil), parts...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })
	return &TitleFacet{Base: facet.NewBase(TitleKind, h, facet.PrecedenceExplicit), parts: sorted}
}

// Title renders the title of target
func (f *TitleFacet) Title(target any) (string, error) {
	if target == nil {
		return "", nil
	}
	if f.method != nil {
		return f.method.reason(target)
	}
	var words []string
	for _, part := range f.parts {
		v, err := part.Get(target, nil)
		if err != nil {
			return "", fmt.Errorf("title property %s: %w", part.Property, err)
		}
		if IsMissing(v) {
			continue
		}
		words = append(words, fmt.Sprint(deref(v)))
	}
	return strings.Join(words, " "), nil
}

func (f *TitleFacet) Attributes() map[string]any {
	if f.method != nil {
		return f.method.attributes()
	}
	props := make([]string, len(f.parts))
	for i, p := range f.parts {
		props[i] = p.Property
	}
	return map[string]any{"properties": props}
}
