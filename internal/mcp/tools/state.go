package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// StateInput is the input for rug_state.
type StateInput struct{}

// ToolState reports the session state without changing it.
func ToolState(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input StateInput) (*sdkmcp.CallToolResult, StateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input StateInput) (*sdkmcp.CallToolResult, StateOutput, error) {
		return nil, d.stateOutput(d.Session.Snapshot(), nil), nil
	}
}
