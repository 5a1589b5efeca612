package cli

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/toyz/metamodel/internal/errors"
	"github.com/toyz/metamodel/pkg/meta/ident"
	"github.com/toyz/metamodel/pkg/meta/validate"
)

func TestDiagnosticReporter_ReportWarning(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewDiagnosticReporter(&buf, false)

	reporter.ReportWarning("This is a test warning", "hidden unless verbose")

	output := buf.String()
	if !strings.Contains(output, "! This is a test warning") {
		t.Errorf("Expected warning message not found in output: %q", output)
	}
	if strings.Contains(output, "hidden unless verbose") {
		t.Errorf("Suggestions should only be shown in verbose mode")
	}

	buf.Reset()
	NewDiagnosticReporter(&buf, true).ReportWarning("Verbose warning", "First suggestion")
	if !strings.Contains(buf.String(), "  - First suggestion") {
		t.Errorf("Expected suggestion in verbose output: %q", buf.String())
	}
}

func TestDiagnosticReporter_ReportInvalidMetaModel(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewDiagnosticReporter(&buf, true)

	err := fmt.Errorf("bootstrap: %w", &validate.InvalidError{Failures: []validate.Failure{
		{Identifier: ident.ForAction("billing.Invoice", "HideTotal"), Message: "billing.Invoice#HideTotal: has prefix Hide, is probably intended as a supporting method"},
		{Identifier: ident.ForProperty("billing.Invoice", "Lines"), Message: "billing.Invoice#Lines: type billing.Line is not known to the metamodel"},
	}})
	reporter.ReportError(err)

	output := buf.String()
	expected := []string{
		"ERROR: Invalid MetaModel",
		"  1: billing.Invoice#HideTotal",
		"  2: billing.Invoice#Lines",
		"Identifier: billing.Invoice#HideTotal()",
		"> Mark the type with //meta::object",
		"not usable until every failure above is fixed",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Run with --verbose") {
		t.Errorf("Verbose hint should not be shown in verbose mode")
	}
}

func TestDiagnosticReporter_ReportMetaError(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewDiagnosticReporter(&buf, false)

	cause := stderrors.New("unexpected EOF")
	reporter.ReportError(errors.WrapConfigurationError("metamodel.yaml", cause))

	output := buf.String()
	for _, want := range []string{
		"ERROR: ConfigurationError",
		"invalid configuration in metamodel.yaml: unexpected EOF",
		"> Run 'metamodel validate --help'",
		"Run with --verbose",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Underlying cause") {
		t.Errorf("Causes are only shown in verbose mode")
	}
}

func TestDiagnosticReporter_ReportBasicError(t *testing.T) {
	var buf bytes.Buffer
	NewDiagnosticReporter(&buf, false).ReportError(stderrors.New("something broke"))

	if !strings.Contains(buf.String(), "Message: something broke") {
		t.Errorf("Expected basic error message in output: %q", buf.String())
	}
}

func TestFormatContextKey(t *testing.T) {
	tests := map[string]string{
		"identifier": "Identifier",
		"type_name":  "Type Name",
		"":           "",
	}
	for key, want := range tests {
		if got := formatContextKey(key); got != want {
			t.Errorf("formatContextKey(%q) = %q, want %q", key, got, want)
		}
	}
}
