package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/metamodel/pkg/meta/inspect"
	"github.com/toyz/metamodel/pkg/meta/spec"
	"github.com/toyz/metamodel/pkg/meta/validate"
)

const billingSource = `package billing

// Invoice is a bill sent to a customer.
//
//meta::object
type Invoice struct {
	//meta::title
	Number   string
	Amount   int ` + "`meta:\"optional\"`" + `
	Customer *Customer
	paid     bool
}

//meta::object
type Customer struct {
	Name string
}

func (i *Invoice) Pay(amount int) error {
	i.paid = true
	return nil
}

func (i *Invoice) DisablePay() string {
	if i.paid {
		return "Already paid"
	}
	return ""
}
`

const orphanSource = `package billing

func (i *Invoice) HideTotal() bool { return false }
`

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	files["go.mod"] = "module example.com/shop\n\ngo 1.25\n"
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func newTestRunner(t *testing.T, root string, modify ...func(*Config)) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Directories = []string{root + "/..."}
	for _, m := range modify {
		m(&cfg)
	}
	require.NoError(t, cfg.Validate())
	var out, errOut bytes.Buffer
	return NewRunner(cfg, WithOutput(&out, &errOut)), &out, &errOut
}

func TestRunnerValidate(t *testing.T) {
	root := writeModule(t, map[string]string{"billing/invoice.go": billingSource})
	r, out, errOut := newTestRunner(t, root)

	require.NoError(t, r.Validate(context.Background()))
	assert.Empty(t, errOut.String())
	assert.Contains(t, out.String(), "Module example.com/shop")
	assert.Contains(t, out.String(), "Specifications: 2")
	assert.Contains(t, out.String(), "Supporting methods: 1")
	assert.Contains(t, out.String(), "metamodel is valid")
}

func TestRunnerValidateReportsFailures(t *testing.T) {
	root := writeModule(t, map[string]string{
		"billing/invoice.go": billingSource,
		"billing/orphan.go":  orphanSource,
	})
	r, _, errOut := newTestRunner(t, root)

	err := r.Validate(context.Background())
	require.ErrorIs(t, err, validate.ErrMetaModelInvalid)
	r.Report(err)
	assert.Contains(t, errOut.String(), "ERROR: Invalid MetaModel")
	assert.Contains(t, errOut.String(), "billing.Invoice#HideTotal: has prefix Hide")
	assert.Contains(t, errOut.String(), "> Rename the method to match an existing member")
}

func TestRunnerValidateReportsScanErrors(t *testing.T) {
	root := writeModule(t, map[string]string{
		"billing/invoice.go": billingSource,
		"billing/bad.go": "package billing\n\n//meta::object\ntype Bad struct {\n\tCode string `meta:\"maxlength 0\"`\n}\n",
	})
	r, _, errOut := newTestRunner(t, root)

	err := r.Validate(context.Background())
	require.Error(t, err)
	r.Report(err)
	assert.Contains(t, errOut.String(), "ERROR: Scan Failed")
	assert.Contains(t, errOut.String(), "bad.go")
	assert.Contains(t, errOut.String(), "Annotation Syntax Help")
}

func TestRunnerDescribe(t *testing.T) {
	root := writeModule(t, map[string]string{"billing/invoice.go": billingSource})
	r, _, _ := newTestRunner(t, root, func(c *Config) { c.Format = "json" })

	var buf bytes.Buffer
	require.NoError(t, r.Describe(context.Background(), &buf, "billing.Invoice"))

	var view inspect.SpecificationView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &view))
	assert.Equal(t, "billing.Invoice", view.Name)
	require.Len(t, view.Actions, 1)
	assert.Equal(t, "Pay", view.Actions[0].Name)
	assert.Equal(t, "amount", view.Actions[0].Parameters[0].Name)
	assert.Contains(t, view.Removals, inspect.RemovalView{Member: "DisablePay", By: "disable-method"})

	buf.Reset()
	require.NoError(t, r.Describe(context.Background(), &buf))
	var all []inspect.SpecificationView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &all))
	assert.Len(t, all, 2)

	err := r.Describe(context.Background(), &buf, "billing.Vendor")
	assert.ErrorIs(t, err, spec.ErrSpecNotFound)
}

func TestRunnerExportInvalidModel(t *testing.T) {
	root := writeModule(t, map[string]string{
		"billing/invoice.go": billingSource,
		"billing/orphan.go":  orphanSource,
	})
	r, _, _ := newTestRunner(t, root)

	var buf bytes.Buffer
	err := r.Export(context.Background(), &buf)
	require.ErrorIs(t, err, validate.ErrMetaModelInvalid)
	assert.Contains(t, buf.String(), "ready: false")
	assert.Contains(t, buf.String(), "billing.Invoice#HideTotal()")
}

func TestRunnerServesModel(t *testing.T) {
	root := writeModule(t, map[string]string{"billing/invoice.go": billingSource})
	r, _, _ := newTestRunner(t, root)

	_, mm, err := r.Load(context.Background())
	require.NoError(t, err)
	server, err := r.NewServer(mm)
	require.NoError(t, err)
	assert.Equal(t, "Echo", server.Name())

	handler, ok := server.(http.Handler)
	require.True(t, ok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/specs", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["billing.Customer","billing.Invoice"]`, rec.Body.String())
}

func TestRunnerRebuild(t *testing.T) {
	root := writeModule(t, map[string]string{"billing/invoice.go": billingSource})
	r, out, errOut := newTestRunner(t, root)
	ctx := context.Background()

	live, mm, err := r.Load(ctx)
	require.NoError(t, err)

	vendor := filepath.Join(root, "billing", "vendor.go")
	require.NoError(t, os.WriteFile(vendor, []byte("package billing\n\n//meta::object\ntype Vendor struct {\n\tName string\n}\n"), 0644))
	r.Rebuild(ctx, live, mm, []string{vendor})
	assert.Contains(t, out.String(), "metamodel rebuilt with 3 specifications")

	_, err = mm.Specification(ctx, "billing.Vendor")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(vendor, []byte("package billing\n\ntype {"), 0644))
	r.Rebuild(ctx, live, mm, []string{vendor})
	assert.Contains(t, errOut.String(), "ERROR: Scan Failed")
	assert.True(t, mm.Ready(), "a failed rescan keeps the current model")

	require.NoError(t, os.WriteFile(vendor, []byte(orphanSource), 0644))
	r.Rebuild(ctx, live, mm, []string{vendor})
	assert.False(t, mm.Ready())
	assert.Contains(t, errOut.String(), "ERROR: Invalid MetaModel")
}
