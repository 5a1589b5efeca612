// Package inspect renders an assembled metamodel for people and tools: as
// YAML or JSON documents, and over HTTP through a framework adapter.
package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/metamodel/pkg/meta"
	"github.com/toyz/metamodel/pkg/meta/facet"
	"github.com/toyz/metamodel/pkg/meta/spec"
	"github.com/toyz/metamodel/pkg/meta/validate"
)

// Format is an output encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat parses a format name, defaulting to YAML
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatYAML, "yml":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown format %q, expected yaml or json", s)
}

// ContentType returns the media type of the format
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "application/yaml"
}

// FacetView is an active facet
type FacetView struct {
	Kind          facet.Kind     `json:"kind" yaml:"kind"`
	Precedence    string         `json:"precedence" yaml:"precedence"`
	Derived       bool           `json:"derived,omitempty" yaml:"derived,omitempty"`
	AlwaysReplace bool           `json:"always_replace,omitempty" yaml:"always_replace,omitempty"`
	Attributes    map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	// Shadowed counts the contributions of the kind the active facet displaced
	Shadowed int `json:"shadowed,omitempty" yaml:"shadowed,omitempty"`
}

// ParameterView is an action parameter
type ParameterView struct {
	Index       int         `json:"index" yaml:"index"`
	Name        string      `json:"name" yaml:"name"`
	Type        string      `json:"type" yaml:"type"`
	DisplayName string      `json:"display_name" yaml:"display_name"`
	Mandatory   bool        `json:"mandatory" yaml:"mandatory"`
	Facets      []FacetView `json:"facets,omitempty" yaml:"facets,omitempty"`
}

// MemberView is a property, collection or action
type MemberView struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Feature     string          `json:"feature" yaml:"feature"`
	Type        string          `json:"type,omitempty" yaml:"type,omitempty"`
	DisplayName string          `json:"display_name" yaml:"display_name"`
	Facets      []FacetView     `json:"facets,omitempty" yaml:"facets,omitempty"`
	Parameters  []ParameterView `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// RemovalView records which factory claimed a member
type RemovalView struct {
	Member string `json:"member" yaml:"member"`
	By     string `json:"by" yaml:"by"`
}

// SpecificationView is one object specification
type SpecificationView struct {
	Name        string        `json:"name" yaml:"name"`
	DisplayName string        `json:"display_name" yaml:"display_name"`
	Facets      []FacetView   `json:"facets,omitempty" yaml:"facets,omitempty"`
	Properties  []MemberView  `json:"properties,omitempty" yaml:"properties,omitempty"`
	Collections []MemberView  `json:"collections,omitempty" yaml:"collections,omitempty"`
	Actions     []MemberView  `json:"actions,omitempty" yaml:"actions,omitempty"`
	Unclaimed   []string      `json:"unclaimed,omitempty" yaml:"unclaimed,omitempty"`
	Removals    []RemovalView `json:"removals,omitempty" yaml:"removals,omitempty"`
}

// ModelView is the whole metamodel
type ModelView struct {
	Ready          bool                `json:"ready" yaml:"ready"`
	Error          string              `json:"error,omitempty" yaml:"error,omitempty"`
	Specifications []SpecificationView `json:"specifications" yaml:"specifications"`
	Failures       []validate.Failure  `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Facets describes the active facets of h
func Facets(h facet.Holder) []FacetView {
	active := h.Facets()
	views := make([]FacetView, 0, len(active))
	for _, f := range active {
		v := FacetView{
			Kind:          f.Kind(),
			Precedence:    f.Precedence().String(),
			Derived:       f.Derived(),
			AlwaysReplace: f.AlwaysReplace(),
			Shadowed:      len(facet.Contributions(h, f.Kind())) - 1,
		}
		if src, ok := f.(facet.AttributeSource); ok {
			v.Attributes = src.Attributes()
		}
		views = append(views, v)
	}
	return views
}

func describeMember(m spec.Member, typ string) MemberView {
	return MemberView{
		ID:          m.Identifier().String(),
		Name:        m.Name(),
		Feature:     m.FeatureType().String(),
		Type:        typ,
		DisplayName: m.DisplayName(),
		Facets:      Facets(m),
	}
}

// DescribeSpecification builds the view of one specification
func DescribeSpecification(s *spec.ObjectSpecification) SpecificationView {
	v := SpecificationView{
		Name:        s.Name(),
		DisplayName: s.DisplayName(),
		Facets:      Facets(s),
	}
	for _, p := range s.Properties() {
		v.Properties = append(v.Properties, describeMember(p, p.Descriptor().Type))
	}
	for _, c := range s.Collections() {
		v.Collections = append(v.Collections, describeMember(c, c.ElemType()))
	}
	for _, a := range s.Actions() {
		mv := describeMember(a, a.ReturnType())
		for _, p := range a.Parameters() {
			mv.Parameters = append(mv.Parameters, ParameterView{
				Index:       p.Index(),
				Name:        p.Name(),
				Type:        p.TypeName(),
				DisplayName: p.DisplayName(),
				Mandatory:   p.IsMandatory(),
				Facets:      Facets(p),
			})
		}
		v.Actions = append(v.Actions, mv)
	}
	for _, m := range s.Unclaimed() {
		v.Unclaimed = append(v.Unclaimed, m.Name)
	}
	for _, r := range s.Removals() {
		v.Removals = append(v.Removals, RemovalView{Member: r.Member, By: r.By})
	}
	return v
}

// DescribeModel builds the view of a metamodel. Specifications are only
// listed when the metamodel is ready; failures always are.
func DescribeModel(m *meta.MetaModel) ModelView {
	v := ModelView{
		Ready:          m.Ready(),
		Specifications: []SpecificationView{},
		Failures:       m.Failures(),
	}
	specs, err := m.Specifications()
	if err != nil {
		v.Error = m.Err().Error()
		return v
	}
	for _, s := range specs {
		v.Specifications = append(v.Specifications, DescribeSpecification(s))
	}
	return v
}

// Encode writes v to w in the format
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}
