package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/metamodel/pkg/meta/validate"
)

const shopSource = `package shop

//meta::object
type Order struct {
	//meta::title
	Reference string
	Quantity  int
}

func (o *Order) Cancel() error { return nil }

func (o *Order) HideCancel() bool { return false }
`

func writeShop(t *testing.T, extra string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "shop")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/shop\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "order.go"), []byte(shopSource+extra), 0644))
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestHelp(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)
	for _, want := range []string{"validate", "describe", "export", "serve", "watch", "--env-file"} {
		assert.Contains(t, out, want)
	}
}

func TestValidateCommand(t *testing.T) {
	root := writeShop(t, "")

	out, errOut, err := execute(t, "validate", root+"/...")
	require.NoError(t, err, errOut)
	assert.Contains(t, out, "metamodel is valid")
	assert.Contains(t, out, "Supporting methods: 1")
}

func TestValidateCommandReportsFailures(t *testing.T) {
	root := writeShop(t, "\nfunc (o *Order) DisableShip() string { return \"\" }\n")

	_, errOut, err := execute(t, "validate", root)
	require.ErrorIs(t, err, validate.ErrMetaModelInvalid)

	var r reported
	require.ErrorAs(t, err, &r, "the error is printed before main sees it")
	assert.Contains(t, errOut, "ERROR: Invalid MetaModel")
	assert.Contains(t, errOut, "shop.Order#DisableShip")
}

func TestDescribeCommand(t *testing.T) {
	root := writeShop(t, "")

	out, _, err := execute(t, "describe", "-f", "json", "-t", "shop.Order", root)
	require.NoError(t, err)

	var view struct {
		Name       string `json:"name"`
		Properties []struct {
			Name string `json:"name"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view), "progress must not mix with the document")
	assert.Equal(t, "shop.Order", view.Name)
	require.Len(t, view.Properties, 2)
	assert.Equal(t, "Reference", view.Properties[0].Name)
}

func TestExportCommandWritesFile(t *testing.T) {
	root := writeShop(t, "")
	output := filepath.Join(t.TempDir(), "model.yaml")

	_, _, err := execute(t, "export", "-o", output, root)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ready: true")
	assert.Contains(t, string(data), "name: shop.Order")
}

func TestConfigurationErrors(t *testing.T) {
	root := writeShop(t, "")

	_, errOut, err := execute(t, "describe", "--format", "xml", root)
	require.Error(t, err)
	assert.Contains(t, errOut, "ERROR: ConfigurationError")

	_, errOut, err = execute(t, "serve", "--server", "chi", root)
	require.Error(t, err)
	assert.Contains(t, errOut, "server.framework")

	configFile := filepath.Join(t.TempDir(), "metamodel.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("format: json\nmetamodel:\n  parallelism: 0\n"), 0644))
	_, errOut, err = execute(t, "validate", "--config", configFile, root)
	require.Error(t, err)
	assert.Contains(t, errOut, "parallelism")
}
