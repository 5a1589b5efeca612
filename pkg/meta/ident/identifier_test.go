package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifierString(t *testing.T) {
	tests := []struct {
		name     string
		id       Identifier
		expected string
	}{
		{"class", ForClass("demo.Invoice"), "demo.Invoice"},
		{"property", ForProperty("demo.Invoice", "Amount"), "demo.Invoice#Amount"},
		{"action", ForAction("demo.Invoice", "Pay", "int", "string"), "demo.Invoice#Pay(int,string)"},
		{"action without params", ForAction("demo.Invoice", "Cancel"), "demo.Invoice#Cancel()"},
		{"parameter", ForParameter(ForAction("demo.Invoice", "Pay", "int"), 0), "demo.Invoice#Pay(int)[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.id.String())
		})
	}
}

func TestIdentifierIsComparable(t *testing.T) {
	seen := map[Identifier]int{}
	seen[ForAction("demo.Invoice", "Pay", "int")]++
	seen[ForAction("demo.Invoice", "Pay", "int")]++
	seen[ForAction("demo.Invoice", "Pay", "string")]++

	assert.Len(t, seen, 2)
	assert.Equal(t, 2, seen[ForAction("demo.Invoice", "Pay", "int")])
}

func TestIdentifierParameters(t *testing.T) {
	action := ForAction("demo.Invoice", "Pay", "int", "string")
	param := ForParameter(action, 1)

	idx, ok := param.ParameterIndex()
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, []string{"int", "string"}, param.ParameterTypes())
	assert.Equal(t, action, param.MemberIdentifier())
	assert.Equal(t, ForClass("demo.Invoice"), param.ClassIdentifier())

	_, ok = action.ParameterIndex()
	assert.False(t, ok)
	assert.Nil(t, ForProperty("demo.Invoice", "Amount").ParameterTypes())
}

func TestIdentifierFunctionTypedParameters(t *testing.T) {
	action := ForAction("demo.Invoice", "Schedule", "func(int, string) error", "struct{a int; b string}")

	assert.Equal(t, []string{"func(int, string) error", "struct{a int; b string}"}, action.ParameterTypes())
	assert.Equal(t, "demo.Invoice#Schedule(func(int, string) error,struct{a int; b string})", action.String())
	assert.Len(t, ForParameter(action, 1).ParameterTypes(), 2)
	assert.NotEqual(t, action, ForAction("demo.Invoice", "Schedule", "func(int", "string) error", "struct{a int; b string}"))
}

func TestNaturalName(t *testing.T) {
	tests := map[string]string{
		"Amount":     "Amount",
		"DueDate":    "Due Date",
		"customerID": "Customer ID",
		"HTTPStatus": "HTTP Status",
		"Line2":      "Line2",
		"":           "",
	}
	for in, expected := range tests {
		assert.Equal(t, expected, NaturalName(in), in)
	}
}

func TestFeatureTypes(t *testing.T) {
	assert.True(t, Members.Contains(Property))
	assert.True(t, Members.Contains(Action))
	assert.False(t, Members.Contains(ActionParameter))
	assert.False(t, Members.Contains(Object))
	assert.True(t, Everything.Contains(ActionParameter))
	assert.Equal(t, PropertiesAndActions, Of(Property, Action))
	assert.Equal(t, []FeatureType{Property, Collection}, PropertiesAndCollections.Types())
	assert.Equal(t, "[property,action]", PropertiesAndActions.String())

	ft, err := ParseFeatureType("collection")
	assert.NoError(t, err)
	assert.Equal(t, Collection, ft)
	assert.True(t, ft.IsPropertyOrCollection())

	_, err = ParseFeatureType("widget")
	assert.Error(t, err)
}
