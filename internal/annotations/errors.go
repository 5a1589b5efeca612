package annotations

import (
	"fmt"
	"strings"
)

// Kind classifies annotation errors
type Kind int

const (
	// SyntaxKind is text that does not parse
	SyntaxKind Kind = iota
	// ParameterKind is a missing, unknown or malformed parameter
	ParameterKind
	// UnknownKind is an annotation name without a schema
	UnknownKind
	// TargetKind is an annotation written where it does not apply
	TargetKind
)

var kindNames = [...]string{
	SyntaxKind:    "syntax",
	ParameterKind: "parameter",
	UnknownKind:   "unknown",
	TargetKind:    "target",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// AnnotationError is implemented by every located error of this package
type AnnotationError interface {
	error
	Location() SourceLocation
	Suggestion() string
	Code() Kind
}

// Error is one problem found in an annotation
type Error struct {
	Kind       Kind
	Annotation AnnotationType
	Param      string
	Msg        string
	Loc        SourceLocation
	Hint       string

	named bool
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Loc.String())
	b.WriteString(": ")
	switch {
	case e.Kind == SyntaxKind:
		b.WriteString("syntax error: ")
	case e.named && e.Param != "":
		fmt.Fprintf(&b, "%s -%s: ", e.Annotation, e.Param)
	case e.named:
		fmt.Fprintf(&b, "%s: ", e.Annotation)
	}
	b.WriteString(e.Msg)
	if e.Hint != "" {
		b.WriteString(". ")
		b.WriteString(e.Hint)
	}
	return b.String()
}

func (e *Error) Location() SourceLocation { return e.Loc }
func (e *Error) Suggestion() string       { return e.Hint }
func (e *Error) Code() Kind               { return e.Kind }

func syntaxError(loc SourceLocation, msg, input string) *Error {
	hint := "Expected the form //meta::name [positional...] [-Key=Value...]"
	switch trimmed := strings.TrimSpace(input); {
	case strings.Contains(input, "'") && !strings.Contains(input, `"`):
		hint = "Use double quotes for values containing spaces or special characters"
	case strings.Contains(msg, `unexpected token "="`), strings.HasPrefix(trimmed, "="):
		hint = "Named parameters are written as -Key=Value"
	case trimmed == "", strings.HasSuffix(trimmed, Prefix):
		hint = "Write an annotation name after the meta:: prefix, e.g. //meta::hidden"
	}
	return &Error{Kind: SyntaxKind, Msg: msg, Loc: loc, Hint: hint}
}

func paramError(a AnnotationType, param string, loc SourceLocation, format string, args ...any) *Error {
	return &Error{
		Kind:       ParameterKind,
		Annotation: a,
		Param:      param,
		Msg:        fmt.Sprintf(format, args...),
		Loc:        loc,
		named:      true,
	}
}

func unknownAnnotation(name string, loc SourceLocation) *Error {
	hint := "Known annotations: " + strings.Join(annotationTypeNames, ", ")
	if closest := closestAnnotationName(name); closest != "" {
		hint = fmt.Sprintf("Did you mean '%s'? %s", closest, hint)
	}
	return &Error{Kind: UnknownKind, Msg: fmt.Sprintf("unknown annotation '%s'", name), Loc: loc, Hint: hint}
}

func targetError(a AnnotationType, got, allowed Target, loc SourceLocation) *Error {
	return &Error{
		Kind:       TargetKind,
		Annotation: a,
		Msg:        fmt.Sprintf("cannot be used on a %s", got),
		Loc:        loc,
		Hint:       fmt.Sprintf("It may only annotate: %s", allowed),
		named:      true,
	}
}

// closestAnnotationName returns the known name within edit distance two, if any
func closestAnnotationName(name string) string {
	best, bestDistance := "", 3
	for _, candidate := range annotationTypeNames {
		if d := levenshtein(strings.ToLower(name), candidate); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// ErrorList collects the errors of every annotation in a comment, tag or file
type ErrorList struct {
	Errors []AnnotationError
}

// Add appends err, flattening other lists. Errors that carry no location
// are recorded as syntax errors.
func (l *ErrorList) Add(err error) {
	switch e := err.(type) {
	case nil:
	case *ErrorList:
		l.Errors = append(l.Errors, e.Errors...)
	case AnnotationError:
		l.Errors = append(l.Errors, e)
	default:
		l.Errors = append(l.Errors, &Error{Kind: SyntaxKind, Msg: err.Error()})
	}
}

// Count returns the number of errors of kind k
func (l *ErrorList) Count(k Kind) int {
	n := 0
	for _, e := range l.Errors {
		if e.Code() == k {
			n++
		}
	}
	return n
}

// Err returns l, or nil when it is empty
func (l *ErrorList) Err() error {
	if l == nil || len(l.Errors) == 0 {
		return nil
	}
	return l
}

func (l *ErrorList) Error() string {
	switch len(l.Errors) {
	case 0:
		return "no annotation errors"
	case 1:
		return l.Errors[0].Error()
	}
	lines := make([]string, len(l.Errors))
	for i, e := range l.Errors {
		lines[i] = fmt.Sprintf("  %d. %s", i+1, e)
	}
	return fmt.Sprintf("%d annotation errors:\n%s", len(l.Errors), strings.Join(lines, "\n"))
}

func (l *ErrorList) Unwrap() []error {
	out := make([]error, len(l.Errors))
	for i, e := range l.Errors {
		out[i] = e
	}
	return out
}
