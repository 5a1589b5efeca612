package errors

import (
	"fmt"
	"strings"
)

// MetaError is implemented by every error carrying a code, a location and hints
type MetaError interface {
	error
	ErrorCode() ErrorCode
	Location() SourceLocation
	Context() map[string]any
	Suggestions() []string
	Unwrap() error
}

// ErrorCode groups errors by the stage of a build that produced them
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota
	ScanErrorCode
	AnnotationErrorCode
	MetaModelErrorCode
	ConfigurationErrorCode
	FileSystemErrorCode
)

var codeNames = [...]string{
	UnknownErrorCode:       "UnknownError",
	ScanErrorCode:          "ScanError",
	AnnotationErrorCode:    "AnnotationError",
	MetaModelErrorCode:     "MetaModelError",
	ConfigurationErrorCode: "ConfigurationError",
	FileSystemErrorCode:    "FileSystemError",
}

func (c ErrorCode) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return codeNames[UnknownErrorCode]
	}
	return codeNames[c]
}

// SourceLocation is a position in a scanned file
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

func (s SourceLocation) String() string {
	switch {
	case s.File == "":
		return "unknown location"
	case s.Line == 0:
		return s.File
	case s.Column == 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsEmpty reports whether no file is known
func (s SourceLocation) IsEmpty() bool {
	return s.File == ""
}

// BaseError is the MetaError built by New and Wrap
type BaseError struct {
	Code        ErrorCode
	Message     string
	Loc         SourceLocation
	Cause       error
	ContextData map[string]any
	Hints       []string
}

// Error reports a message-less error as its cause
func (e *BaseError) Error() string {
	if e.Message == "" && e.Cause != nil {
		return e.Cause.Error()
	}
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.Loc.IsEmpty() {
		return msg
	}
	return e.Loc.String() + ": " + msg
}

func (e *BaseError) ErrorCode() ErrorCode     { return e.Code }
func (e *BaseError) Location() SourceLocation { return e.Loc }
func (e *BaseError) Suggestions() []string    { return e.Hints }
func (e *BaseError) Unwrap() error            { return e.Cause }

// Context never returns nil
func (e *BaseError) Context() map[string]any {
	if e.ContextData == nil {
		return map[string]any{}
	}
	return e.ContextData
}

// WithLocation sets where the error occurred
func (e *BaseError) WithLocation(loc SourceLocation) *BaseError {
	e.Loc = loc
	return e
}

// WithContext records a detail shown by verbose reporting
func (e *BaseError) WithContext(key string, value any) *BaseError {
	if e.ContextData == nil {
		e.ContextData = make(map[string]any)
	}
	e.ContextData[key] = value
	return e
}

// WithSuggestions appends hints on how to fix the error
func (e *BaseError) WithSuggestions(suggestions ...string) *BaseError {
	e.Hints = append(e.Hints, suggestions...)
	return e
}

// New creates an error without a cause
func New(code ErrorCode, message string) *BaseError {
	return &BaseError{Code: code, Message: message}
}

// Wrap creates an error around cause
func Wrap(code ErrorCode, message string, cause error) *BaseError {
	return &BaseError{Code: code, Message: message, Cause: cause}
}

// MultipleErrors collects the errors of a scan or a build
type MultipleErrors struct {
	Errors []MetaError
}

func (e *MultipleErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	}
	lines := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		lines[i] = fmt.Sprintf("  %d. %s", i+1, err)
	}
	return fmt.Sprintf("%d errors:\n%s", len(e.Errors), strings.Join(lines, "\n"))
}

func (e *MultipleErrors) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err
	}
	return out
}

// Add appends err
func (e *MultipleErrors) Add(err MetaError) {
	e.Errors = append(e.Errors, err)
}

// Err returns e, or nil when nothing was collected
func (e *MultipleErrors) Err() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// HasCode reports whether any collected error has code
func (e *MultipleErrors) HasCode(code ErrorCode) bool {
	for _, err := range e.Errors {
		if err.ErrorCode() == code {
			return true
		}
	}
	return false
}
