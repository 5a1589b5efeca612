package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/metamodel/internal/errors"
	"github.com/toyz/metamodel/pkg/meta"
	"github.com/toyz/metamodel/pkg/meta/descriptor"
)

const invoiceSource = `package billing

import "time"

// Invoice is a bill.
//
//meta::object -Named="Sales Invoice"
type Invoice struct {
	//meta::title
	Number   string
	Amount   *int ` + "`meta:\"optional; maxlength 12\"`" + `
	Lines    []Line
	Issued   time.Time
	Customer *Customer
	internal string
	Skipped  string ` + "`meta:\"-\"`" + `
}

// Line is not part of the metamodel
type Line struct {
	Sku string
}

//meta::object
type Customer struct {
	Name string
}

func (i *Invoice) Pay(amount int, _ string) error { return nil }

func (i *Invoice) DisablePay() string { return "" }

func (i Invoice) Totals() (int, int) { return 0, 0 }

func (i *Invoice) Log(args ...any) {}

func (i *Invoice) unexported() {}

func (c *Customer) Rename(name string) {}
`

const methodsSource = `package billing

//meta::action -Semantics=safe
func (i *Invoice) Preview() string { return "" }
`

const badSource = `package bad

//meta::object
type Bad struct {
	Code string ` + "`meta:\"maxlength 0\"`" + `
	//meta::action
	Owner string
}
`

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func member(t *testing.T, typ *descriptor.Type, name string) descriptor.Member {
	t.Helper()
	m, ok := typ.Member(name)
	require.True(t, ok, "member %s", name)
	return m
}

func TestScanDescribesObjects(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"go.mod":                          "module example.com/shop\n\ngo 1.25\n",
		"billing/invoice.go":              invoiceSource,
		"billing/methods.go":              methodsSource,
		"billing/invoice_test.go":         "package billing\n\n//meta::object\ntype Fixture struct{}\n",
		"billing/zz_generated_deepcopy.go": "package billing\n\n//meta::object\ntype Generated struct{}\n",
		"vendor/acme/acme.go":             "package acme\n\n//meta::object\ntype Vendored struct{}\n",
	})

	res, err := NewScanner().Scan(root + "/...")
	require.NoError(t, err)
	assert.Equal(t, "example.com/shop", res.Module)
	assert.Equal(t, 2, res.Files)
	assert.Equal(t, []string{filepath.Join(root, "billing")}, res.Packages)
	assert.Equal(t, []string{"billing.Customer", "billing.Invoice"}, res.Table.Names())

	invoice, ok := res.Table.Lookup("billing.Invoice")
	require.True(t, ok)
	object, ok := invoice.Annotations.Get("object")
	require.True(t, ok)
	assert.Equal(t, "Sales Invoice", object.String("Named"))

	var names []string
	for _, m := range invoice.Members {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Number", "Amount", "Lines", "Issued", "Customer", "Pay", "DisablePay", "Preview"}, names)

	assert.True(t, member(t, invoice, "Number").Annotations.Has("title"))
	amount := member(t, invoice, "Amount")
	assert.Equal(t, "*int", amount.Type)
	assert.True(t, amount.Annotations.Has("optional"))
	assert.True(t, amount.Annotations.Has("maxlength"))

	lines := member(t, invoice, "Lines")
	assert.Equal(t, "[]billing.Line", lines.Type)
	assert.Equal(t, "billing.Line", lines.ElemType)
	assert.Equal(t, "time.Time", member(t, invoice, "Issued").Type)
	assert.Equal(t, "*billing.Customer", member(t, invoice, "Customer").Type)

	pay := member(t, invoice, "Pay")
	assert.Equal(t, descriptor.MethodMember, pay.Kind)
	assert.True(t, pay.ReturnsError)
	assert.Equal(t, []descriptor.Param{{Name: "amount", Type: "int"}, {Name: "arg1", Type: "string"}}, pay.Params)

	preview := member(t, invoice, "Preview")
	assert.Equal(t, "string", preview.Type)
	action, _ := preview.Annotations.Get("action")
	assert.Equal(t, "safe", action.String("Semantics"))
}

func TestScanCollectsAnnotationErrors(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"bad/bad.go": badSource})

	res, err := NewScanner().Scan(root)
	require.Error(t, err)

	var multi *errors.MultipleErrors
	require.ErrorAs(t, err, &multi)
	assert.Len(t, multi.Errors, 2)
	assert.True(t, multi.HasCode(errors.AnnotationErrorCode))
	for _, e := range multi.Errors {
		assert.Equal(t, filepath.Join(root, "bad", "bad.go"), e.Location().File)
	}
	assert.Equal(t, []string{"bad.Bad"}, res.Table.Names(), "the type is kept without the bad annotations")
}

func TestScanReportsSyntaxErrors(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"broken/broken.go": "package broken\n\ntype {"})

	_, err := NewScanner().Scan(root)
	var multi *errors.MultipleErrors
	require.ErrorAs(t, err, &multi)
	assert.True(t, multi.HasCode(errors.ScanErrorCode))
}

func TestExcludes(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"billing/invoice.go": invoiceSource,
		"billing/methods.go": methodsSource,
	})

	res, err := NewScanner(WithExcludes("**/methods.go")).Scan(root)
	require.NoError(t, err)
	invoice, _ := res.Table.Lookup("billing.Invoice")
	_, ok := invoice.Member("Preview")
	assert.False(t, ok)
}

func TestScanSource(t *testing.T) {
	types, err := NewScanner().ScanSource("customer.go", `package crm

//meta::object
type Account struct {
	Tags    map[string][]*Tag
	Updates <-chan Event
	Meta    interface{}
}
`)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "map[string][]*crm.Tag", member(t, types[0], "Tags").Type)
	assert.Equal(t, "<-chan crm.Event", member(t, types[0], "Updates").Type)
	assert.Equal(t, "interface {}", member(t, types[0], "Meta").Type)

	_, err = NewScanner().ScanSource("broken.go", "package")
	assert.Error(t, err)
}

func TestScannedTypesFeedTheMetaModel(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"billing/invoice.go": invoiceSource,
		"billing/methods.go": methodsSource,
	})
	table, err := Load(root)
	require.NoError(t, err)

	m, err := meta.New(table)
	require.NoError(t, err)
	err = m.Bootstrap(context.Background())
	require.Error(t, err, "Line is not marked as an object")
	assert.Contains(t, err.Error(), "billing.Invoice#Lines: type billing.Line is not known to the metamodel")
}

func TestScannedValueTypes(t *testing.T) {
	types, err := NewScanner().ScanSource("order.go", `package shop

import "github.com/google/uuid"

//meta::value -Named="Money"
type Money struct {
	Cents int64
}

//meta::object
type Order struct {
	ID    uuid.UUID
	Total Money
}
`)
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, "uuid.UUID", member(t, types[1], "ID").Type)
	assert.Equal(t, "shop.Money", member(t, types[1], "Total").Type)

	cfg := meta.DefaultConfig()
	cfg.ValueTypes = []string{"uuid.UUID"}
	m, err := meta.New(descriptor.NewTable().MustRegister(types...), meta.WithConfig(cfg))
	require.NoError(t, err)
	require.NoError(t, m.Bootstrap(context.Background()))

	specs, err := m.Specifications()
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "shop.Order", specs[0].Name())
	total, ok := specs[0].Property("Total")
	require.True(t, ok)
	assert.Equal(t, "Money", total.Type().DisplayName())
}
