package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldError(t *testing.T) {
	assert.Equal(t, "parallelism: must be at least 1",
		(&FieldError{Field: "parallelism", Message: "must be at least 1"}).Error())
	assert.Equal(t, "invalid format", (&FieldError{Message: "invalid format"}).Error())
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"not empty ok", NotEmpty("root")("./..."), false},
		{"not empty fails", NotEmpty("root")(""), true},
		{"one of ok", OneOf("format", "yaml", "json")("json"), false},
		{"one of fails", OneOf("format", "yaml", "json")("xml"), true},
		{"at least ok", AtLeast("parallelism", 1)(4), false},
		{"at least fails", AtLeast("parallelism", 1)(0), true},
		{"positive duration ok", Positive[time.Duration]("debounce")(time.Second), false},
		{"positive duration fails", Positive[time.Duration]("debounce")(0), true},
		{"glob ok", Glob("exclude")("**/*_test.go"), false},
		{"glob fails", Glob("exclude")("[unclosed"), true},
		{"check fails", Check("port", "must be even", func(v int) bool { return v%2 == 0 })(3), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantErr {
				assert.Error(t, tt.err)
			} else {
				assert.NoError(t, tt.err)
			}
		})
	}
}

func TestOneOfNamesTheValue(t *testing.T) {
	err := OneOf("server.framework", "echo", "gin")("chi")
	assert.EqualError(t, err, "server.framework: must be one of [echo gin], got chi")
}

func TestEachReportsIndex(t *testing.T) {
	err := Each("excludes", Glob("exclude"))([]string{"vendor/**", "[bad"})
	require.Error(t, err)
	assert.EqualError(t, err, "excludes[1]: must be a valid glob pattern")

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "[bad", fe.Value)
}

func TestAllStopsAtFirstFailure(t *testing.T) {
	calls := 0
	counting := func(string) error { calls++; return nil }

	assert.Error(t, All(NotEmpty("root"), counting)(""))
	assert.Equal(t, 0, calls)

	assert.NoError(t, All(NotEmpty("root"), counting, counting)("."))
	assert.Equal(t, 2, calls)
}
