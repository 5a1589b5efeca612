package spec

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/facets"
	"github.com/toyz/metamodel/pkg/meta/factory"
	"github.com/toyz/metamodel/pkg/meta/ident"
)

type recorder struct {
	mu       sync.Mutex
	failures []string
}

func (r *recorder) AddFailure(_ ident.Identifier, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

// countingFactory counts class builds per type and can hold them until released
type countingFactory struct {
	mu    sync.Mutex
	calls map[string]int
	gate  chan struct{}
}

func newCountingFactory() *countingFactory {
	return &countingFactory{calls: make(map[string]int)}
}

func (f *countingFactory) Name() string                     { return "counting" }
func (f *countingFactory) FeatureTypes() ident.FeatureTypes { return ident.ObjectsOnly }

func (f *countingFactory) ProcessClass(ctx *factory.ProcessClassContext) {
	f.mu.Lock()
	f.calls[ctx.Type.Name]++
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (f *countingFactory) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

var nothing = descriptor.Getter(func(any) any { return nil })

func order(seq string) descriptor.MemberOption {
	return descriptor.Annotated(descriptor.A("order", "Sequence", seq))
}

func domain() *descriptor.Table {
	customer := descriptor.NewBuilder("demo.Customer").
		Field("Name", "string", nothing).
		Field("Invoices", "[]*demo.Invoice", nothing).
		Method("Rename", descriptor.Params(descriptor.P("name", "string"))).
		Build()

	invoice := descriptor.NewBuilder("demo.Invoice").
		Field("Number", "string", nothing, order("2")).
		Field("Customer", "*demo.Customer", nothing, order("1")).
		Field("Amount", "*int", nothing).
		Method("Pay", descriptor.Params(descriptor.P("amount", "int"))).
		Method("Validate0Pay", descriptor.Params(descriptor.P("v", "int")), descriptor.Returns("string")).
		Method("DisableAmount", descriptor.Returns("string")).
		Method("HideCurrency", descriptor.Returns("bool")).
		Method("String", descriptor.Returns("string")).
		Build()

	return descriptor.NewTable().MustRegister(customer, invoice)
}

func newTestLoader(t *testing.T, src descriptor.Source) (*Loader, *countingFactory, *recorder) {
	t.Helper()
	counter := newCountingFactory()
	model := factory.Default()
	require.NoError(t, model.Add(counter))
	failures := &recorder{}
	return NewLoader(src, model, WithReporter(failures)), counter, failures
}

func names[T interface{ Name() string }](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name()
	}
	return out
}

func TestLoadSpecificationBuildsMembers(t *testing.T) {
	loader, _, failures := newTestLoader(t, domain())

	invoice, err := loader.LoadSpecification(context.Background(), "demo.Invoice")
	require.NoError(t, err)
	require.True(t, invoice.IsIntrospected())
	assert.Empty(t, failures.failures)

	assert.Equal(t, "Invoice", invoice.DisplayName())
	assert.Equal(t, []string{"Customer", "Number", "Amount"}, names(invoice.Properties()))
	assert.Equal(t, []string{"Customer", "Number", "Amount", "Pay"}, names(invoice.Members()))
	assert.Equal(t, []string{"Pay"}, names(invoice.Actions()))
	assert.Empty(t, invoice.Collections())

	unclaimed := invoice.Unclaimed()
	require.Len(t, unclaimed, 1)
	assert.Equal(t, "HideCurrency", unclaimed[0].Name)

	amount, ok := invoice.Property("Amount")
	require.True(t, ok)
	assert.True(t, amount.HasFacet(facets.DisableForContextKind))
	assert.False(t, amount.IsMandatory(), "pointer types are inferred optional")
	assert.True(t, amount.Type().IsValue())
	assert.Equal(t, "int", amount.Type().Name())

	pay, ok := invoice.Action("Pay")
	require.True(t, ok)
	assert.Equal(t, ident.ForAction("demo.Invoice", "Pay", "int"), pay.Identifier())
	require.Len(t, pay.Parameters(), 1)
	param := pay.Parameters()[0]
	assert.True(t, param.HasFacet(facets.ValidateForContextKind))
	assert.True(t, param.IsMandatory())
	assert.Equal(t, "Amount", param.DisplayName())

	_, ok = invoice.Action("Validate0Pay")
	assert.False(t, ok, "supporting methods are not actions")

	var claimedBy []string
	for _, r := range invoice.Removals() {
		claimedBy = append(claimedBy, r.Member+":"+r.By)
	}
	assert.Contains(t, claimedBy, "String:ignored-methods")
	assert.Contains(t, claimedBy, "Validate0Pay:validate-method")
	assert.Contains(t, claimedBy, "DisableAmount:disable-method")
}

func TestLoadSpecificationCachesIdentity(t *testing.T) {
	loader, counter, _ := newTestLoader(t, domain())
	ctx := context.Background()

	const callers = 32
	specs := make([]*ObjectSpecification, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := loader.LoadSpecification(ctx, "demo.Invoice")
			assert.NoError(t, err)
			specs[i] = s
		}()
	}
	wg.Wait()

	for _, s := range specs {
		assert.Same(t, specs[0], s)
	}
	again, err := loader.LoadSpecification(ctx, "*demo.Invoice")
	require.NoError(t, err)
	assert.Same(t, specs[0], again)

	assert.Equal(t, 1, counter.count("demo.Invoice"))
	assert.Equal(t, 1, counter.count("demo.Customer"))
}

func TestLoadSpecificationResolvesCycles(t *testing.T) {
	loader, _, failures := newTestLoader(t, domain())
	ctx := context.Background()

	invoice, err := loader.LoadSpecification(ctx, "demo.Invoice")
	require.NoError(t, err)

	customerProp, ok := invoice.Property("Customer")
	require.True(t, ok)
	customer := customerProp.Type()
	require.NotNil(t, customer)
	assert.True(t, customer.IsIntrospected(), "referenced specifications are complete when the load returns")

	invoices, ok := customer.Collection("Invoices")
	require.True(t, ok)
	assert.Equal(t, "demo.Invoice", invoices.ElemType())
	assert.Same(t, invoice, invoices.Type())

	direct, err := loader.LoadSpecification(ctx, "demo.Customer")
	require.NoError(t, err)
	assert.Same(t, customer, direct)
	assert.Empty(t, failures.failures)
}

func TestLoadSpecificationSelfReference(t *testing.T) {
	node := descriptor.NewBuilder("demo.Node").
		Field("Parent", "*demo.Node", nothing).
		Field("Children", "[]*demo.Node", nothing).
		Build()
	loader, counter, _ := newTestLoader(t, descriptor.NewTable().MustRegister(node))

	s, err := loader.LoadSpecification(context.Background(), "demo.Node")
	require.NoError(t, err)

	parent, _ := s.Property("Parent")
	children, _ := s.Collection("Children")
	assert.Same(t, s, parent.Type())
	assert.Same(t, s, children.Type())
	assert.Equal(t, 1, counter.count("demo.Node"))
}

func TestLoadSpecificationNotFound(t *testing.T) {
	loader, _, _ := newTestLoader(t, domain())

	_, err := loader.LoadSpecification(context.Background(), "demo.Missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSpecNotFound))

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "demo.Missing", notFound.Name)

	_, cached := loader.Cached("demo.Missing")
	assert.False(t, cached, "failed lookups are not cached")
}

func TestUnknownMemberTypeIsReported(t *testing.T) {
	purchase := descriptor.NewBuilder("demo.Order").
		Field("Supplier", "*vendor.Supplier", nothing).
		Build()
	loader, _, failures := newTestLoader(t, descriptor.NewTable().MustRegister(order))

	s, err := loader.LoadSpecification(context.Background(), "demo.Order")
	require.NoError(t, err)

	supplier, ok := s.Property("Supplier")
	require.True(t, ok)
	assert.Nil(t, supplier.Type())
	assert.Equal(t, []string{"demo.Order#Supplier: type vendor.Supplier is not known to the metamodel"}, failures.failures)
}

func TestLoadSpecificationHonoursContext(t *testing.T) {
	loader, counter, _ := newTestLoader(t, domain())
	counter.gate = make(chan struct{})
	defer close(counter.gate)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := loader.LoadSpecification(ctx, "demo.Customer")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	s, ok := loader.Cached("demo.Customer")
	require.True(t, ok, "the skeleton is published before introspection")
	assert.False(t, s.IsIntrospected())
}

func TestLoadAllAndReset(t *testing.T) {
	loader, counter, _ := newTestLoader(t, domain())
	ctx := context.Background()

	specs, err := loader.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"demo.Customer", "demo.Invoice"}, names(specs))
	assert.Equal(t, []string{"demo.Customer", "demo.Invoice"}, names(loader.Specifications()))

	before := specs[1]
	loader.Reset()
	_, cached := loader.Cached("demo.Invoice")
	assert.False(t, cached)

	after, err := loader.LoadSpecification(ctx, "demo.Invoice")
	require.NoError(t, err)
	assert.NotSame(t, before, after)
	assert.Equal(t, 2, counter.count("demo.Invoice"))
}

func TestValueSpecifications(t *testing.T) {
	loader, _, _ := newTestLoader(t, descriptor.NewTable())

	s, err := loader.LoadSpecification(context.Background(), "time.Time")
	require.NoError(t, err)
	assert.True(t, s.IsValue())
	assert.True(t, s.IsIntrospected())
	assert.True(t, s.HasFacet(facets.ValueKind))
	assert.Empty(t, loader.Specifications(), "value specifications are not listed")

	assert.True(t, IsValueType("map[string]int"))
	assert.True(t, IsValueType("[]byte"))
	assert.False(t, IsValueType("demo.Invoice"))
}

func TestUserValueTypes(t *testing.T) {
	money := descriptor.NewBuilder("demo.Money").
		WithAnnotations(descriptor.A("value", "Named", "Amount of money")).
		Field("Cents", "int64", nothing).
		Build()
	purchase := descriptor.NewBuilder("demo.Order").
		Field("ID", "uuid.UUID", nothing).
		Field("Total", "demo.Money", nothing).
		Build()
	src := descriptor.NewTable().MustRegister(money, purchase)
	ctx := context.Background()

	t.Run("unknown without declaration", func(t *testing.T) {
		loader, _, failures := newTestLoader(t, src)
		_, err := loader.LoadSpecification(ctx, "demo.Order")
		require.NoError(t, err)
		assert.Contains(t, failures.failures, "demo.Order#ID: type uuid.UUID is not known to the metamodel")
	})

	t.Run("declared by option and annotation", func(t *testing.T) {
		counter := newCountingFactory()
		model := factory.Default()
		require.NoError(t, model.Add(counter))
		failures := &recorder{}
		loader := NewLoader(src, model, WithReporter(failures), WithValueTypes("*uuid.UUID"))

		s, err := loader.LoadSpecification(ctx, "demo.Order")
		require.NoError(t, err)
		assert.Empty(t, failures.failures)
		assert.True(t, loader.IsValueType("uuid.UUID"))

		id, ok := s.Property("ID")
		require.True(t, ok)
		assert.True(t, id.Type().IsValue())

		total, ok := s.Property("Total")
		require.True(t, ok)
		assert.True(t, total.Type().IsValue())
		assert.Same(t, money, total.Type().Descriptor())
		assert.Equal(t, "Amount of money", total.Type().DisplayName())
		assert.Zero(t, counter.count("demo.Money"), "value types are not introspected")

		assert.Equal(t, []string{"demo.Order"}, names(loader.Specifications()))
	})
}

func TestMemberOrderKeepsDeclarationOrderForUnordered(t *testing.T) {
	typ := descriptor.NewBuilder("demo.Ordered").
		Field("C", "string", nothing).
		Field("B", "string", nothing, order("2")).
		Field("A", "string", nothing).
		Field("D", "string", nothing, order("1.5")).
		Build()
	loader, _, _ := newTestLoader(t, descriptor.NewTable().MustRegister(typ))

	s, err := loader.LoadSpecification(context.Background(), "demo.Ordered")
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "B", "C", "A"}, names(s.Properties()))

	holders := s.Holders()
	assert.Len(t, holders, 5)
	_, isSpec := holders[0].(*ObjectSpecification)
	assert.True(t, isSpec)
}
