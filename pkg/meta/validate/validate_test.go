package validate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/factory"
	"github.com/toyz/metamodel/pkg/meta/ident"
	"github.com/toyz/metamodel/pkg/meta/spec"
)

var nothing = descriptor.Getter(func(any) any { return nil })

func load(t *testing.T, failures *Failures, types ...*descriptor.Type) *spec.Loader {
	t.Helper()
	loader := spec.NewLoader(descriptor.NewTable().MustRegister(types...), factory.Default(), spec.WithReporter(failures))
	_, err := loader.LoadAll(context.Background())
	require.NoError(t, err)
	return loader
}

func TestFailuresDeduplicateAndKeepOrder(t *testing.T) {
	f := NewFailures()
	id := ident.ForClass("demo.Invoice")

	assert.True(t, f.Add(id, "second"))
	assert.True(t, f.Add(id, "first"))
	assert.False(t, f.Add(ident.ForClass("demo.Other"), "second"))
	f.AddFailure(id, "%s: %d", "third", 3)

	assert.Equal(t, []string{"second", "first", "third: 3"}, f.Messages())
	assert.Equal(t, 3, f.Len())

	err := f.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMetaModelInvalid))
	assert.Equal(t, "1: second\n2: first\n3: third: 3\n", err.Error())

	var invalid *InvalidError
	require.ErrorAs(t, err, &invalid)
	assert.Len(t, invalid.Failures, 3)

	assert.NoError(t, NewFailures().Err())
}

func TestCompositeRunsEveryRule(t *testing.T) {
	var ran []string
	rule := func(name string, messages ...string) Rule {
		return RuleFunc{RuleName: name, Check: func(_ Graph, f *Failures) {
			ran = append(ran, name)
			for _, m := range messages {
				f.Add(ident.Identifier{}, m)
			}
		}}
	}

	failures := NewFailures()
	c := NewComposite([]Rule{rule("a", "x"), rule("b", "y", "x"), rule("c")})
	err := c.Validate(load(t, failures), failures)

	assert.Equal(t, []string{"a", "b", "c"}, ran)
	require.Error(t, err)
	assert.Equal(t, []string{"x", "y"}, failures.Messages())
}

func TestCompositeFailFastAndPanics(t *testing.T) {
	var ran []string
	panicking := RuleFunc{RuleName: "broken", Check: func(Graph, *Failures) {
		ran = append(ran, "broken")
		panic("boom")
	}}
	after := RuleFunc{RuleName: "after", Check: func(Graph, *Failures) { ran = append(ran, "after") }}

	failures := NewFailures()
	err := NewComposite([]Rule{panicking, after}, WithFailFast()).Validate(load(t, failures), failures)

	require.Error(t, err)
	assert.Equal(t, []string{"broken"}, ran)
	assert.Equal(t, []string{"validation rule broken failed: boom"}, failures.Messages())
}

func TestOrphanedSupportingMethods(t *testing.T) {
	invoice := descriptor.NewBuilder("demo.Invoice").
		Field("Number", "string", nothing).
		Method("HideNumber", descriptor.Returns("bool")).
		Method("DisableCurrency", descriptor.Returns("string")).
		Method("ValidateTotal", descriptor.Params(descriptor.P("v", "int")), descriptor.Returns("string")).
		Method("Validated", descriptor.Returns("bool")).
		Build()

	failures := NewFailures()
	loader := load(t, failures, invoice)
	err := NewComposite(DefaultRules()).Validate(loader, failures)

	require.Error(t, err)
	assert.Equal(t, []string{
		"demo.Invoice#DisableCurrency: has prefix Disable, is probably intended as a supporting method for a property, collection or action. " +
			"If the method is intended to be an action, annotate it with action; otherwise mark it programmatic",
		"demo.Invoice#ValidateTotal: has prefix Validate, is probably intended as a supporting method for a property, collection or action. " +
			"If the method is intended to be an action, annotate it with action; otherwise mark it programmatic",
	}, failures.Messages())

	s, err := loader.LoadSpecification(context.Background(), "demo.Invoice")
	require.NoError(t, err)
	_, isAction := s.Action("Validated")
	assert.True(t, isAction, "a prefix must be followed by an upper case letter")
}

func TestDuplicateMemberIDs(t *testing.T) {
	typ := descriptor.NewBuilder("demo.Dup").
		Field("Code", "string", nothing).
		Field("Code", "string", nothing).
		Build()

	failures := NewFailures()
	err := NewComposite([]Rule{DuplicateMemberIDs{}}).Validate(load(t, failures, typ), failures)

	require.Error(t, err)
	assert.Equal(t, []string{"demo.Dup#Code: member is declared more than once"}, failures.Messages())
}

func TestConflictingExplicitFacets(t *testing.T) {
	typ := descriptor.NewBuilder("demo.Conflict").
		Field("Code", "string", nothing, descriptor.Annotated(descriptor.A("mandatory"), descriptor.A("optional"))).
		Field("Note", "*string", nothing, descriptor.Annotated(descriptor.A("mandatory"))).
		Build()

	failures := NewFailures()
	err := NewComposite([]Rule{ConflictingExplicitFacets{}}).Validate(load(t, failures, typ), failures)

	require.Error(t, err)
	assert.Equal(t, []string{"demo.Conflict#Code: conflicting explicit mandatory facets"}, failures.Messages(),
		"explicit over inferred is not a conflict")
}

func TestExplicitActions(t *testing.T) {
	typ := descriptor.NewBuilder("demo.Order").
		Method("Ship", descriptor.Annotated(descriptor.A("action"))).
		Method("Cancel").
		Build()

	failures := NewFailures()
	err := NewComposite([]Rule{ExplicitActions{}}).Validate(load(t, failures, typ), failures)

	require.Error(t, err)
	assert.Equal(t, []string{
		"demo.Order#Cancel: is not annotated as an action; annotate it with action or mark it programmatic",
	}, failures.Messages())
}

func TestIntrospectionFailuresAreCollected(t *testing.T) {
	typ := descriptor.NewBuilder("demo.Order").
		Field("Supplier", "*vendor.Supplier", nothing).
		Method("HideShip", descriptor.Params(descriptor.P("x", "int")), descriptor.Returns("bool")).
		Method("Ship").
		Build()

	failures := NewFailures()
	err := NewComposite(DefaultRules()).Validate(load(t, failures, typ), failures)

	require.Error(t, err)
	assert.Equal(t, []string{
		"demo.Order#HideShip: supporting method must take no parameters and return bool",
		"demo.Order#Supplier: type vendor.Supplier is not known to the metamodel",
	}, failures.Messages())
}

func TestValidModel(t *testing.T) {
	typ := descriptor.NewBuilder("demo.Clean").
		Field("Name", "string", nothing).
		Method("Rename", descriptor.Params(descriptor.P("name", "string"))).
		Build()

	failures := NewFailures()
	assert.NoError(t, NewComposite(DefaultRules()).Validate(load(t, failures, typ), failures))
}
