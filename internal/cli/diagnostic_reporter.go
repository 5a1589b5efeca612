package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/metamodel/internal/errors"
	"github.com/toyz/metamodel/pkg/meta/validate"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	out     io.Writer
	verbose bool
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to out
func NewDiagnosticReporter(out io.Writer, verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{
		out:     out,
		verbose: verbose,
	}
}

// ReportWarning provides user-friendly warning reporting
func (r *DiagnosticReporter) ReportWarning(message string, suggestions ...string) {
	orange := color.New(color.FgYellow, color.Bold)
	orange.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
	if r.verbose {
		for _, s := range suggestions {
			fmt.Fprintf(r.out, "  - %s\n", s)
		}
	}
}

// ReportError reports err with every location, context and suggestion it carries
func (r *DiagnosticReporter) ReportError(err error) {
	var invalid *validate.InvalidError
	var multi *errors.MultipleErrors
	var single errors.MetaError

	switch {
	case stderrors.As(err, &invalid):
		r.printHeader("Invalid MetaModel")
		r.reportAll(errors.FromInvalidMetaModel(invalid).Errors)
		r.printAdditionalHelp(errors.MetaModelErrorCode)
	case stderrors.As(err, &multi):
		r.printHeader("Scan Failed")
		r.reportAll(multi.Errors)
		if len(multi.Errors) > 0 {
			r.printAdditionalHelp(multi.Errors[0].ErrorCode())
		}
	case stderrors.As(err, &single):
		r.printHeader(single.ErrorCode().String())
		r.reportOne(0, single)
		r.printAdditionalHelp(single.ErrorCode())
	default:
		r.printHeader("Failed")
		fmt.Fprintf(r.out, "Message: %s\n", err.Error())
	}
	fmt.Fprintln(r.out)
}

func (r *DiagnosticReporter) printHeader(title string) {
	line := "ERROR: " + title
	fmt.Fprintf(r.out, "\n%s\n%s\n\n", line, strings.Repeat("=", len(line)))
}

func (r *DiagnosticReporter) reportAll(errs []errors.MetaError) {
	for i, e := range errs {
		r.reportOne(i+1, e)
	}
}

// reportOne prints one error, numbered when n > 0
func (r *DiagnosticReporter) reportOne(n int, e errors.MetaError) {
	prefix := ""
	if n > 0 {
		prefix = fmt.Sprintf("%3d: ", n)
	}
	color.New(color.FgRed).Fprint(r.out, prefix)
	fmt.Fprintf(r.out, "%s\n", e.Error())

	indent := strings.Repeat(" ", len(prefix))
	if r.verbose {
		if ctx := e.Context(); len(ctx) > 0 {
			keys := make([]string, 0, len(ctx))
			for k := range ctx {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(r.out, "%s%s: %v\n", indent, formatContextKey(k), ctx[k])
			}
		}
		if cause := e.Unwrap(); cause != nil {
			fmt.Fprintf(r.out, "%sUnderlying cause: %s\n", indent, cause)
		}
	}
	for _, s := range e.Suggestions() {
		fmt.Fprintf(r.out, "%s> %s\n", indent, s)
	}
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

func (r *DiagnosticReporter) printAdditionalHelp(code errors.ErrorCode) {
	switch code {
	case errors.AnnotationErrorCode:
		fmt.Fprintf(r.out, "\nAnnotation Syntax Help:\n")
		fmt.Fprintf(r.out, "  - Annotations start with //meta:: in doc comments\n")
		fmt.Fprintf(r.out, "  - Struct tags use the same syntax: `meta:\"mandatory; maxlength 20\"`\n")
		fmt.Fprintf(r.out, "  - Parameters are written -Key=Value\n")
	case errors.MetaModelErrorCode:
		fmt.Fprintf(r.out, "\nThe metamodel is not usable until every failure above is fixed.\n")
	case errors.ConfigurationErrorCode:
		fmt.Fprintf(r.out, "\nCheck %s and the METAMODEL_* environment variables.\n", DefaultConfigFile)
	}
	if !r.verbose {
		fmt.Fprintf(r.out, "\nRun with --verbose for more detailed output\n")
	}
}
