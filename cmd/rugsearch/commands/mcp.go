package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/usestring/rugsearch/pkg/mcpsrv"
)

// NewMCPCommand runs the MCP server.
func NewMCPCommand(g *globals) *cobra.Command {
	var (
		transport string
		address   string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run MCP server",
		Long:  "Run MCP server exposing the rug search session as tools, resources and prompts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server, err := mcpsrv.NewServer(nil,
				mcpsrv.WithConfig(g.cfg),
				mcpsrv.WithVersion(g.version),
			)
			if err != nil {
				return err
			}
			defer server.Close()

			ctx := cmd.Context()
			switch transport {
			case "stdio":
				slog.Info("starting rugsearch MCP server on stdio")
				err = server.Run(ctx)
			case "http":
				err = serveHTTP(ctx, server, address)
			default:
				return fmt.Errorf("unsupported transport: %s (supported: stdio, http)", transport)
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&transport, "transport", "t", "stdio", "transport (stdio, http)")
	cmd.Flags().StringVarP(&address, "address", "a", ":8080", "listen address for the http transport")
	return cmd
}

// serveHTTP serves the streamable HTTP transport on addr until ctx ends.
// Every client shares the one search session.
func serveHTTP(ctx context.Context, server *mcpsrv.Server, addr string) error {
	handler := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return server.MCPServer()
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	httpSrv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting rugsearch MCP server", slog.String("address", addr), slog.String("path", "/mcp"))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}
