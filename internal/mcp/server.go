package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/rugsearch/internal/mcp/prompts"
	"github.com/usestring/rugsearch/internal/mcp/tools"
	"github.com/usestring/rugsearch/internal/mode"
)

// serverName is the implementation name reported on initialize.
const serverName = "rugsearch"

// Server exposes one rug search session to MCP clients. Every connected
// client drives the same session.
type Server struct {
	mcpServer *sdkmcp.Server
	deps      *tools.Deps
	settings  settings
}

type settings struct {
	version   string
	tools     bool
	prompts   bool
	callbacks []func(*sdkmcp.Server)
}

// ServerOption configures a Server.
type ServerOption func(*settings)

// WithBuiltinTools registers the rug_* tools and the state and modes resources.
func WithBuiltinTools() ServerOption {
	return func(s *settings) { s.tools = true }
}

// WithBuiltinPrompts registers find_rug and usage_guide.
func WithBuiltinPrompts() ServerOption {
	return func(s *settings) { s.prompts = true }
}

// WithVersion sets the version reported on initialize.
func WithVersion(v string) ServerOption {
	return func(s *settings) {
		if v != "" {
			s.version = v
		}
	}
}

// WithCustomRegistration runs fn against the underlying server after the
// builtins are registered, so fn may replace a builtin of the same name.
func WithCustomRegistration(fn func(*sdkmcp.Server)) ServerOption {
	return func(s *settings) { s.callbacks = append(s.callbacks, fn) }
}

// NewServer builds a server around deps. deps.Session is required; the
// client is only used to tell prompts where the backend lives.
func NewServer(deps *tools.Deps, opts ...ServerOption) (*Server, error) {
	if deps == nil {
		return nil, errors.New("deps is required")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("deps.Session is required")
	}

	st := settings{version: "dev"}
	for _, opt := range opts {
		opt(&st)
	}

	srv := sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: serverName, Version: st.version},
		&sdkmcp.ServerOptions{Instructions: Instructions()},
	)
	srv.AddReceivingMiddleware(LoggingMiddleware())

	s := &Server{mcpServer: srv, deps: deps, settings: st}
	if st.tools {
		tools.Register(srv, deps)
		s.registerResources()
	}
	if st.prompts {
		cfg := &prompts.Config{}
		if deps.Client != nil {
			cfg.BackendURL = deps.Client.BaseURL()
		}
		prompts.Register(srv, cfg)
	}
	for _, fn := range st.callbacks {
		fn(srv)
	}
	return s, nil
}

// Instructions summarizes the per-mode input rules for clients.
func Instructions() string {
	var sb strings.Builder
	sb.WriteString("Search a rug catalog. One shared session holds the mode, inputs, and the last results.\n")
	for _, p := range mode.Profiles() {
		fmt.Fprintf(&sb, "- %s (%s): requires %s. Missing it: %q\n", p.Mode, p.Label, p.Requires, p.MissingNotice)
	}
	sb.WriteString("Set inputs with rug_update_inputs or pass them to rug_search; omitted fields keep their values.")
	return sb.String()
}

// Run serves over stdio until ctx ends or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
}

// MCPServer returns the underlying server, for other transports and tests.
func (s *Server) MCPServer() *sdkmcp.Server {
	return s.mcpServer
}

// Deps returns the dependencies the tools run against.
func (s *Server) Deps() *tools.Deps {
	return s.deps
}
