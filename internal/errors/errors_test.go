package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/metamodel/internal/annotations"
	"github.com/toyz/metamodel/pkg/meta/ident"
	"github.com/toyz/metamodel/pkg/meta/validate"
)

func TestBaseErrorFormatting(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := WrapFileSystemError("read", "meta.yaml", cause)

	assert.Equal(t, "failed to read 'meta.yaml': permission denied", err.Error())
	assert.Equal(t, FileSystemErrorCode, err.ErrorCode())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "meta.yaml", err.Context()["path"])

	located := WrapScanError(SourceLocation{File: "invoice.go", Line: 3}, cause)
	assert.Equal(t, "invoice.go:3: failed to scan source: permission denied", located.Error())
	assert.Equal(t, "ScanError", located.ErrorCode().String())

	assert.Equal(t, "unknown location", SourceLocation{}.String())
	assert.Equal(t, "a.go:1:2", SourceLocation{File: "a.go", Line: 1, Column: 2}.String())
}

func TestMultipleErrors(t *testing.T) {
	errs := &MultipleErrors{}
	assert.NoError(t, errs.Err())

	first := New(ScanErrorCode, "first")
	errs.Add(first)
	assert.Equal(t, "first", errs.Error())

	errs.Add(New(ConfigurationErrorCode, "second"))
	assert.Equal(t, "2 errors:\n  1. first\n  2. second", errs.Error())
	assert.True(t, errs.HasCode(ConfigurationErrorCode))
	assert.False(t, errs.HasCode(MetaModelErrorCode))
	assert.ErrorIs(t, errs.Err(), first)
}

func TestFromAnnotations(t *testing.T) {
	assert.Nil(t, FromAnnotations(nil))

	src := &annotations.ErrorList{}
	src.Add(&annotations.Error{Kind: annotations.SyntaxKind, Msg: "unexpected token", Loc: annotations.SourceLocation{File: "a.go", Line: 4}})
	src.Add(&annotations.Error{Kind: annotations.UnknownKind, Msg: "unknown annotation", Loc: annotations.SourceLocation{File: "a.go", Line: 9}, Hint: "Did you mean hidden?"})

	errs := FromAnnotations(src)
	require.Len(t, errs.Errors, 2)
	assert.Equal(t, "a.go:4: syntax error: unexpected token", errs.Errors[0].Error())
	assert.Equal(t, 9, errs.Errors[1].Location().Line)
	assert.Equal(t, []string{"Did you mean hidden?"}, errs.Errors[1].Suggestions())
	assert.Equal(t, "unknown", errs.Errors[1].Context()["kind"])

	plain := FromAnnotations(stderrors.New("boom"))
	require.Len(t, plain.Errors, 1)
	assert.Equal(t, AnnotationErrorCode, plain.Errors[0].ErrorCode())
}

func TestFromInvalidMetaModel(t *testing.T) {
	invalid := &validate.InvalidError{Failures: []validate.Failure{
		{Identifier: ident.ForAction("demo.Order", "HideShip"), Message: "demo.Order#HideShip: has prefix Hide, is probably intended as a supporting method for a property, collection or action."},
		{Identifier: ident.ForProperty("demo.Order", "Supplier"), Message: "demo.Order#Supplier: type vendor.Supplier is not known to the metamodel"},
		{Identifier: ident.ForClass("demo.Order"), Message: "demo.Order: something else"},
	}}

	errs := FromInvalidMetaModel(invalid)
	require.Len(t, errs.Errors, 3)
	assert.Contains(t, errs.Errors[0].Suggestions()[0], "programmatic")
	assert.Contains(t, errs.Errors[1].Suggestions()[0], "//meta::object")
	assert.Empty(t, errs.Errors[2].Suggestions())
	assert.Equal(t, "demo.Order#Supplier", errs.Errors[1].Context()["identifier"])
}
