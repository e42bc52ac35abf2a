package mcpsrv

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/rugsearch/internal/app"
	"github.com/usestring/rugsearch/internal/config"
	"github.com/usestring/rugsearch/internal/logging"
	"github.com/usestring/rugsearch/internal/mcp"
	"github.com/usestring/rugsearch/internal/mcp/tools"
	"github.com/usestring/rugsearch/pkg/client"
)

// Server is the rug search MCP server.
// It wraps the internal implementation and provides extension points.
type Server struct {
	internal   *mcp.Server
	app        *app.App
	deps       *Deps
	logCleanup func() error
}

// NewServer creates a new MCP server with builtin search tools.
//
// A nil client is built from the configuration. Use functional options to
// configure logging, add custom tools, etc.
func NewServer(c *client.Client, opts ...Option) (*Server, error) {
	cfg := &serverConfig{
		config: config.Load(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logCfg := logging.Config{
		Level:      cfg.config.LogLevel,
		Format:     cfg.config.LogFormat,
		FilePath:   cfg.config.LogFile,
		MaxSizeMB:  cfg.config.LogMaxSizeMB,
		MaxBackups: cfg.config.LogMaxBackups,
		MaxAgeDays: cfg.config.LogMaxAgeDays,
		Compress:   cfg.config.LogCompress,
	}
	if cfg.logLevel != "" {
		logCfg.Level = cfg.logLevel
	}
	if cfg.logFile != "" {
		logCfg.FilePath = cfg.logFile
	}
	logCleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	if c == nil && cfg.httpClient != nil {
		c = app.NewClient(cfg.config, client.WithHTTPClient(cfg.httpClient))
	}
	var appOpts []app.Option
	if c != nil {
		appOpts = append(appOpts, app.WithClient(c))
	}
	a, err := app.New(cfg.config, appOpts...)
	if err != nil {
		_ = logCleanup()
		return nil, err
	}

	toolDeps := &tools.Deps{
		Client:  a.Client,
		Session: a.Session,
		Assets:  a.Assets,
		Query:   a.Query,
		Config:  a.Config,
	}

	// Same values, different type for the public API
	deps := &Deps{
		Client:  a.Client,
		Session: a.Session,
		Cache:   a.Cache,
		Assets:  a.Assets,
		Query:   a.Query,
		Config:  a.Config,
	}

	var internalOpts []mcp.ServerOption
	if !cfg.disableBuiltinTools {
		internalOpts = append(internalOpts, mcp.WithBuiltinTools())
	}
	if !cfg.disableBuiltinPrompts {
		internalOpts = append(internalOpts, mcp.WithBuiltinPrompts())
	}
	if cfg.version != "" {
		internalOpts = append(internalOpts, mcp.WithVersion(cfg.version))
	}

	for _, fn := range cfg.registrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(fn))
	}
	for _, fn := range cfg.depsRegistrations {
		internalOpts = append(internalOpts, mcp.WithCustomRegistration(func(srv *sdkmcp.Server) {
			fn(srv, deps)
		}))
	}

	internal, err := mcp.NewServer(toolDeps, internalOpts...)
	if err != nil {
		_ = a.Close()
		_ = logCleanup()
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	return &Server{
		internal:   internal,
		app:        a,
		deps:       deps,
		logCleanup: logCleanup,
	}, nil
}

// Run starts the MCP server with stdio transport.
// The server runs until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.internal.Run(ctx)
}

// Close releases the session preview and flushes the log file.
func (s *Server) Close() error {
	err := s.app.Close()
	if s.logCleanup != nil {
		if cerr := s.logCleanup(); err == nil {
			err = cerr
		}
	}
	return err
}

// Deps returns the dependencies for building custom tools.
func (s *Server) Deps() *Deps {
	return s.deps
}

// MCPServer returns the underlying MCP server, for in-process transports.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.internal.MCPServer()
}
