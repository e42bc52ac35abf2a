// Package assets loads result images and decides their fallbacks.
package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/usestring/rugsearch/internal/cache"
	"github.com/usestring/rugsearch/pkg/types"
)

// DefaultWorkers bounds concurrent image fetches.
const DefaultWorkers = 4

var (
	// ErrNoImage is returned for results without an image path.
	ErrNoImage = errors.New("result has no image")

	// ErrNotImage is returned when fetched content is not an image.
	ErrNotImage = errors.New("fetched content is not an image")
)

// Fetcher downloads result images.
type Fetcher interface {
	ImageURL(path string) string
	FetchImage(ctx context.Context, path string) ([]byte, string, error)
}

// Loader fetches result images through a cache.
type Loader struct {
	fetcher Fetcher
	cache   *cache.AssetCache
	workers int
	group   singleflight.Group
}

// NewLoader creates a loader. A nil cache disables caching and workers
// below one fall back to DefaultWorkers.
func NewLoader(f Fetcher, c *cache.AssetCache, workers int) *Loader {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Loader{fetcher: f, cache: c, workers: workers}
}

// Load returns the image at path, fetching it at most once per concurrent
// burst of callers.
func (l *Loader) Load(ctx context.Context, path string) (*cache.Asset, error) {
	if path == "" {
		return nil, ErrNoImage
	}
	if l.cache != nil {
		if cached, ok := l.cache.Get(path); ok {
			return cached, nil
		}
	}

	// The shared fetch outlives any one caller; each caller still stops
	// waiting when its own ctx ends.
	fetchCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(path, func() (any, error) {
		data, contentType, err := l.fetcher.FetchImage(fetchCtx, path)
		if err != nil {
			return nil, err
		}
		detected := mimetype.Detect(data)
		if !strings.HasPrefix(detected.String(), "image/") {
			return nil, fmt.Errorf("%w: %s is %s", ErrNotImage, path, detected.String())
		}
		if contentType == "" || !strings.HasPrefix(contentType, "image/") {
			contentType = detected.String()
		}
		asset := &cache.Asset{URL: l.fetcher.ImageURL(path), ContentType: contentType, Data: data}
		if l.cache != nil {
			l.cache.Put(path, asset)
		}
		return asset, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*cache.Asset), nil
	}
}

// Availability records the load outcome per image path. A nil error means
// the image loaded.
type Availability map[string]error

// Available reports whether the image at path loaded.
func (a Availability) Available(path string) bool {
	err, ok := a[path]
	return ok && err == nil
}

// Prefetch loads every distinct image referenced by results using a bounded
// worker pool. Individual failures are recorded and never abort the batch.
func (l *Loader) Prefetch(ctx context.Context, results []types.SearchResult) (Availability, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, r := range results {
		if r.Image == "" || seen[r.Image] {
			continue
		}
		seen[r.Image] = true
		paths = append(paths, r.Image)
	}

	errs := make([]error, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	for i, path := range paths {
		g.Go(func() error {
			if _, err := l.Load(ctx, path); err != nil {
				slog.Warn("result image unavailable",
					slog.String("path", path),
					slog.String("error", err.Error()),
				)
				errs[i] = err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	avail := make(Availability, len(paths))
	for i, path := range paths {
		avail[path] = errs[i]
	}
	return avail, nil
}
