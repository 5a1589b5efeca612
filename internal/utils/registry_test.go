package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry[string, int]("facets")

	require.NoError(t, r.Register("hidden", 3))
	require.NoError(t, r.Register("disabled", 1))
	require.NoError(t, r.Register("named", 2))
	require.NoError(t, r.Register("disabled", 10))

	assert.Equal(t, []string{"hidden", "disabled", "named"}, r.Keys())
	assert.Equal(t, []int{3, 10, 2}, r.Values())
	assert.Equal(t, 3, r.Len())

	var visited []string
	for k := range r.All() {
		visited = append(visited, k)
	}
	assert.Equal(t, []string{"hidden", "disabled", "named"}, visited)
}

func TestRegistryAllStopsEarly(t *testing.T) {
	r := NewRegistry[string, int]("facets")
	require.NoError(t, r.Register("a", 1))
	require.NoError(t, r.Register("b", 2))

	n := 0
	for range r.All() {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry[string, int]("facets")
	require.NoError(t, r.Register("a", 1))
	require.NoError(t, r.Register("b", 2))

	assert.True(t, r.Remove("a"))
	assert.False(t, r.Remove("a"))
	assert.Equal(t, []string{"b"}, r.Keys())
	assert.False(t, r.Has("a"))
}

func TestRegistryChecks(t *testing.T) {
	odd := errors.New("odd values are not allowed")
	r := NewRegistry("programming model",
		NonZeroKey[string, int]("factory name"),
		Unique[string, int]("factory"),
		func(_ string, v int, _ bool) error {
			if v%2 != 0 {
				return odd
			}
			return nil
		},
	)

	require.NoError(t, r.Register("fallback", 2))
	assert.EqualError(t, r.Register("fallback", 4), "programming model: factory fallback is already registered")
	assert.EqualError(t, r.Register("", 6), "programming model: factory name cannot be empty")
	assert.ErrorIs(t, r.Register("named", 3), odd)

	v, _ := r.Get("fallback")
	assert.Equal(t, 2, v)
	assert.False(t, r.Has("named"))
}
