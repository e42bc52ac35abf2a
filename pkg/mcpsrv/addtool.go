package mcpsrv

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/rugsearch/internal/mcp/tools"
)

// AddTool registers a tool the way builtin tools are registered: the zero
// value of Out must pass the output schema the SDK infers for it, or AddTool
// panics at startup naming the offending field.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	tools.AddTool(srv, t, h)
}
