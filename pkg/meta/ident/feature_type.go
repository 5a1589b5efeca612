package ident

import (
	"fmt"
	"strings"
)

// FeatureType is the closed set of element kinds a facet factory can target
type FeatureType int

const (
	Object FeatureType = iota
	Property
	Collection
	Action
	ActionParameter
)

var featureTypeNames = map[FeatureType]string{
	Object:          "object",
	Property:        "property",
	Collection:      "collection",
	Action:          "action",
	ActionParameter: "parameter",
}

// String returns the string representation of the feature type
func (f FeatureType) String() string {
	if name, ok := featureTypeNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFeatureType converts string to FeatureType
func ParseFeatureType(s string) (FeatureType, error) {
	for ft, name := range featureTypeNames {
		if name == s {
			return ft, nil
		}
	}
	return 0, fmt.Errorf("unknown feature type: %s", s)
}

func (f FeatureType) IsProperty() bool   { return f == Property }
func (f FeatureType) IsCollection() bool { return f == Collection }
func (f FeatureType) IsAction() bool     { return f == Action }
func (f FeatureType) IsParameter() bool  { return f == ActionParameter }

// IsPropertyOrCollection reports whether the feature is an association
func (f FeatureType) IsPropertyOrCollection() bool {
	return f == Property || f == Collection
}

// IsMember reports whether the feature is a member of a type
func (f FeatureType) IsMember() bool {
	return f == Property || f == Collection || f == Action
}

// FeatureTypes is a set of feature types
type FeatureTypes uint8

// Predefined feature type sets
const (
	ObjectsOnly     FeatureTypes = 1 << Object
	PropertiesOnly  FeatureTypes = 1 << Property
	CollectionsOnly FeatureTypes = 1 << Collection
	ActionsOnly     FeatureTypes = 1 << Action
	ParametersOnly  FeatureTypes = 1 << ActionParameter

	Members                  = PropertiesOnly | CollectionsOnly | ActionsOnly
	PropertiesAndCollections = PropertiesOnly | CollectionsOnly
	PropertiesAndActions     = PropertiesOnly | ActionsOnly
	ActionsAndParameters     = ActionsOnly | ParametersOnly
	PropertiesAndParameters  = PropertiesOnly | ParametersOnly
	Everything               = ObjectsOnly | Members | ParametersOnly
)

// Of builds a set from individual feature types
func Of(types ...FeatureType) FeatureTypes {
	var s FeatureTypes
	for _, t := range types {
		s |= 1 << t
	}
	return s
}

// Contains reports whether the set includes the feature type
func (s FeatureTypes) Contains(t FeatureType) bool {
	return s&(1<<t) != 0
}

// Types returns the members of the set in declaration order
func (s FeatureTypes) Types() []FeatureType {
	var out []FeatureType
	for t := Object; t <= ActionParameter; t++ {
		if s.Contains(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s FeatureTypes) String() string {
	types := s.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return "[" + strings.Join(names, ",") + "]"
}
