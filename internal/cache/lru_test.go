package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetCache_Evicts(t *testing.T) {
	c, err := NewAssetCache(2)
	require.NoError(t, err)

	c.Put("/images/a.jpg", &Asset{URL: "a"})
	c.Put("/images/b.jpg", &Asset{URL: "b"})
	_, _ = c.Get("/images/a.jpg")
	c.Put("/images/c.jpg", &Asset{URL: "c"})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("/images/b.jpg")
	assert.False(t, ok)

	got, ok := c.Get("/images/a.jpg")
	require.True(t, ok)
	assert.Equal(t, "a", got.URL)
}

func TestNewAssetCache_InvalidSize(t *testing.T) {
	_, err := NewAssetCache(0)
	assert.Error(t, err)
}
