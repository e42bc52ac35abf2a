package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/rugsearch/internal/mode"
)

// ModesInput is the input for rug_modes.
type ModesInput struct{}

// ModeInfo describes one search mode.
type ModeInfo struct {
	Mode             string `json:"mode"`
	Label            string `json:"label"`
	Badge            string `json:"badge"`
	Requires         string `json:"requires"`
	TextLabel        string `json:"text_label"`
	TextPlaceholder  string `json:"text_placeholder"`
	ShowsUpload      bool   `json:"shows_upload"`
	ShowsParsedQuery bool   `json:"shows_parsed_query"`
	Active           bool   `json:"active"`
}

// ModesOutput is the output for rug_modes.
type ModesOutput struct {
	Active string     `json:"active"`
	Modes  []ModeInfo `json:"modes,omitempty"`
}

// ToolModes lists the search modes and marks the active one.
func ToolModes(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input ModesInput) (*sdkmcp.CallToolResult, ModesOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input ModesInput) (*sdkmcp.CallToolResult, ModesOutput, error) {
		active := d.Session.Mode()
		profiles := mode.Profiles()

		output := ModesOutput{
			Active: string(active),
			Modes:  make([]ModeInfo, len(profiles)),
		}
		for i, p := range profiles {
			output.Modes[i] = ModeInfo{
				Mode:             string(p.Mode),
				Label:            p.Label,
				Badge:            p.Badge,
				Requires:         string(p.Requires),
				TextLabel:        p.TextLabel,
				TextPlaceholder:  p.TextPlaceholder,
				ShowsUpload:      p.ShowsUpload,
				ShowsParsedQuery: p.ShowsParsedQuery,
				Active:           p.Mode == active,
			}
		}
		return nil, output, nil
	}
}
