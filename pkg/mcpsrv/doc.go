// Package mcpsrv provides an extensible MCP server for rug search.
//
// The server owns one search session: inputs set through one tool call are
// seen by the next, the way a single open search page would keep them.
//
// # Basic Usage
//
//	server, err := mcpsrv.NewServer(nil) // client built from the environment
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Close()
//	server.Run(ctx)
//
// # Extension
//
// Add custom tools using MCP SDK types directly:
//
//	import mcp "github.com/modelcontextprotocol/go-sdk/mcp"
//
//	type CountInput struct{}
//
//	type CountOutput struct {
//	    Count int `json:"count"`
//	}
//
//	server, err := mcpsrv.NewServer(nil,
//	    mcpsrv.WithDepsTool(
//	        &mcp.Tool{Name: "rug_count", Description: "Number of displayed results"},
//	        func(d *mcpsrv.Deps) func(context.Context, *mcp.CallToolRequest, CountInput) (*mcp.CallToolResult, CountOutput, error) {
//	            return func(ctx context.Context, req *mcp.CallToolRequest, in CountInput) (*mcp.CallToolResult, CountOutput, error) {
//	                return nil, CountOutput{Count: len(d.Session.Snapshot().Results)}, nil
//	            }
//	        },
//	    ),
//	)
//
// # Configuration
//
// Configuration is read from the environment (see internal/config). Options
// override individual values:
//
//	server, err := mcpsrv.NewServer(nil,
//	    mcpsrv.WithLogLevel("debug"),
//	    mcpsrv.WithLogFile("/var/log/rugsearch-mcp.log"),
//	)
package mcpsrv
