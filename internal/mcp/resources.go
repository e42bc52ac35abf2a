package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/rugsearch/internal/mcp/tools"
)

// Resource URIs:
//   rugsearch://state  current inputs and displayed results
//   rugsearch://modes  mode profiles

const (
	stateURI = "rugsearch://state"
	modesURI = "rugsearch://modes"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         stateURI,
		Name:        "Search Session",
		Description: "Current search inputs, loading flag and displayed results. Same content as the rug_state tool.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.6,
		},
	}, s.handleResourceState)

	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         modesURI,
		Name:        "Search Modes",
		Description: "Search modes with their labels and required inputs.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.4,
		},
	}, s.handleResourceModes)
}

func (s *Server) handleResourceState(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	_, state, err := tools.ToolState(s.deps)(ctx, nil, tools.StateInput{})
	if err != nil {
		return nil, err
	}
	return toResourceResult(req.Params.URI, state)
}

func (s *Server) handleResourceModes(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	_, modes, err := tools.ToolModes(s.deps)(ctx, nil, tools.ModesInput{})
	if err != nil {
		return nil, err
	}
	return toResourceResult(req.Params.URI, modes)
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
