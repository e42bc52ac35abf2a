// Package cache provides caching utilities for fetched result assets.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Asset is a downloaded result image.
type Asset struct {
	URL         string
	ContentType string
	Data        []byte
}

// AssetCache provides thread-safe LRU caching for result images, keyed by
// the image path the backend returned.
type AssetCache struct {
	cache *lru.Cache[string, *Asset]
}

// NewAssetCache creates a new LRU cache with the specified maximum number of items.
func NewAssetCache(maxItems int) (*AssetCache, error) {
	c, err := lru.New[string, *Asset](maxItems)
	if err != nil {
		return nil, err
	}
	return &AssetCache{cache: c}, nil
}

// Get retrieves an asset by path.
// Returns the asset and true if found, nil and false otherwise.
func (c *AssetCache) Get(path string) (*Asset, bool) {
	return c.cache.Get(path)
}

// Put adds or updates an asset in the cache.
func (c *AssetCache) Put(path string, asset *Asset) {
	c.cache.Add(path, asset)
}

// Len returns the current number of items in the cache.
func (c *AssetCache) Len() int {
	return c.cache.Len()
}
