package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCacheKey(t *testing.T) {
	a := map[string]any{"threshold": 0.5, "limit": 5, "schedule": map[string]int{"Mon": 1, "Wed": 1}}
	b := map[string]any{"schedule": map[string]int{"Wed": 1, "Mon": 1}, "limit": 5, "threshold": 0.5}

	keyA, err := GenerateCacheKey(a)
	require.NoError(t, err)
	keyB, err := GenerateCacheKey(b)
	require.NoError(t, err)

	assert.Len(t, keyA, 64)
	assert.Equal(t, keyA, keyB)

	b["limit"] = 6
	keyC, err := GenerateCacheKey(b)
	require.NoError(t, err)
	assert.NotEqual(t, keyA, keyC)
}

func TestGenerateCacheKeyUnencodable(t *testing.T) {
	_, err := GenerateCacheKey(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}
