// Package app assembles the search session and its infrastructure from a
// config.Config.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/usestring/rugsearch/internal/assets"
	"github.com/usestring/rugsearch/internal/cache"
	"github.com/usestring/rugsearch/internal/config"
	"github.com/usestring/rugsearch/internal/mode"
	"github.com/usestring/rugsearch/internal/query"
	"github.com/usestring/rugsearch/internal/rank"
	"github.com/usestring/rugsearch/internal/schema"
	"github.com/usestring/rugsearch/internal/session"
	"github.com/usestring/rugsearch/internal/upload"
	"github.com/usestring/rugsearch/pkg/client"
)

// App holds the assembled components.
type App struct {
	Config  *config.Config
	Client  *client.Client
	Uploads *upload.Manager
	Session *session.Controller
	Cache   *cache.AssetCache
	Assets  *assets.Loader
	Query   *query.Engine
}

// Option configures assembly.
type Option func(*options)

type options struct {
	client      *client.Client
	sessionOpts []session.Option
}

// WithClient uses c instead of building a client from the config.
func WithClient(c *client.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithSessionOptions passes extra options to the session, after the ones
// derived from the config.
func WithSessionOptions(opts ...session.Option) Option {
	return func(o *options) {
		o.sessionOpts = append(o.sessionOpts, opts...)
	}
}

// New assembles an App. Unknown DEFAULT_MODE or DEFAULT_SORT values are
// errors.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Load()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	m, err := mode.Parse(cfg.DefaultMode)
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_MODE: %w", err)
	}
	sortKey, err := rank.ParseSortKey(cfg.DefaultSort)
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_SORT: %w", err)
	}

	c := o.client
	if c == nil {
		c = NewClient(cfg)
	}

	assetCache, err := cache.NewAssetCache(cfg.AssetCacheMaxItems)
	if err != nil {
		return nil, fmt.Errorf("creating asset cache: %w", err)
	}

	uploads := upload.NewManager(cfg.PreviewDir, upload.WithMaxEdge(cfg.PreviewMaxEdge))

	sessionOpts := append([]session.Option{
		session.WithMode(m),
		session.WithSortKey(sortKey),
	}, o.sessionOpts...)

	return &App{
		Config:  cfg,
		Client:  c,
		Uploads: uploads,
		Session: session.New(c, uploads, sessionOpts...),
		Cache:   assetCache,
		Assets:  assets.NewLoader(c, assetCache, cfg.AssetFetchWorkers),
		Query:   query.NewEngine(),
	}, nil
}

// NewClient builds the backend client described by cfg. Options in extra
// are applied last.
func NewClient(cfg *config.Config, extra ...client.Option) *client.Client {
	clientOpts := []client.Option{
		client.WithBaseURL(cfg.BaseURL),
		client.WithHTTPClient(&http.Client{Timeout: cfg.HTTPClientTimeout}),
	}
	if cfg.ResponseSchemaCheck {
		v, err := schema.NewResponseValidator()
		if err != nil {
			// Drift checks are advisory; search works without them.
			slog.Warn("response schema check disabled", slog.String("error", err.Error()))
		} else {
			clientOpts = append(clientOpts, client.WithResponseChecker(v))
		}
	}
	return client.New(append(clientOpts, extra...)...)
}

// Close releases the session's preview file.
func (a *App) Close() error {
	return a.Session.Close()
}
