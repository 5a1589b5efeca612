package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/toyz/metamodel/internal/annotations"
	"github.com/toyz/metamodel/pkg/meta/validate"
)

// WrapFileSystemError wraps file system related errors
func WrapFileSystemError(operation, path string, cause error) *BaseError {
	return Wrap(FileSystemErrorCode, fmt.Sprintf("failed to %s '%s'", operation, path), cause).
		WithContext("operation", operation).
		WithContext("path", path)
}

// WrapConfigurationError wraps configuration-related errors
func WrapConfigurationError(source string, cause error) *BaseError {
	return Wrap(ConfigurationErrorCode, fmt.Sprintf("invalid configuration in %s", source), cause).
		WithContext("source", source).
		WithSuggestions("Run 'metamodel validate --help' to see the supported options")
}

// WrapScanError wraps a failure to parse or type-check a Go file
func WrapScanError(loc SourceLocation, cause error) *BaseError {
	return Wrap(ScanErrorCode, "failed to scan source", cause).WithLocation(loc)
}

// FromAnnotationError converts an annotation error, keeping its location and hint
func FromAnnotationError(err annotations.AnnotationError) *BaseError {
	loc := err.Location()
	e := Wrap(AnnotationErrorCode, "", err).
		WithLocation(SourceLocation{File: loc.File, Line: loc.Line, Column: loc.Column}).
		WithContext("kind", err.Code().String())
	if hint := err.Suggestion(); hint != "" {
		e.WithSuggestions(hint)
	}
	return e
}

// FromAnnotations flattens annotation errors into a collection, or returns nil
func FromAnnotations(err error) *MultipleErrors {
	if err == nil {
		return nil
	}
	out := &MultipleErrors{}
	var multi *annotations.ErrorList
	var single annotations.AnnotationError
	switch {
	case stderrors.As(err, &multi):
		for _, e := range multi.Errors {
			out.Add(FromAnnotationError(e))
		}
	case stderrors.As(err, &single):
		out.Add(FromAnnotationError(single))
	default:
		out.Add(Wrap(AnnotationErrorCode, "invalid annotation", err))
	}
	return out
}

// FromInvalidMetaModel turns each metamodel failure into a located error with a hint
func FromInvalidMetaModel(err *validate.InvalidError) *MultipleErrors {
	out := &MultipleErrors{}
	for _, f := range err.Failures {
		e := New(MetaModelErrorCode, f.Message).WithContext("identifier", f.Identifier.String())
		if hint := suggestFor(f.Message); hint != "" {
			e.WithSuggestions(hint)
		}
		out.Add(e)
	}
	return out
}

func suggestFor(message string) string {
	switch {
	case strings.Contains(message, "is probably intended as a supporting method"):
		return "Rename the method to match an existing member, or add //meta::programmatic above it"
	case strings.Contains(message, "is not known to the metamodel"):
		return "Mark the type with //meta::object so it is scanned, or mark the member //meta::programmatic"
	case strings.Contains(message, "conflicting explicit"):
		return "Keep only one of the conflicting annotations"
	case strings.Contains(message, "supporting method must"):
		return "Supporting methods return bool or string; check the signature against the member it supports"
	}
	return ""
}
