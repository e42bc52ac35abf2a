package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// FetchImageInput is the input for rug_fetch_image.
type FetchImageInput struct {
	Path string `json:"path" jsonschema:"Image path from a result, e.g. /images/123.jpg"`
}

// FetchImageOutput is the output for rug_fetch_image.
type FetchImageOutput struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Bytes       int    `json:"bytes"`
}

// ToolFetchImage downloads a result image and returns it as image content.
func ToolFetchImage(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input FetchImageInput) (*sdkmcp.CallToolResult, FetchImageOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input FetchImageInput) (*sdkmcp.CallToolResult, FetchImageOutput, error) {
		if input.Path == "" {
			return nil, FetchImageOutput{}, ErrInvalidInput("path is required")
		}

		asset, err := d.Assets.Load(ctx, input.Path)
		if err != nil {
			return nil, FetchImageOutput{}, WrapSearchError(err)
		}

		result := &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{
				&sdkmcp.ImageContent{Data: asset.Data, MIMEType: asset.ContentType},
			},
		}
		return result, FetchImageOutput{
			Path:        input.Path,
			URL:         asset.URL,
			ContentType: asset.ContentType,
			Bytes:       len(asset.Data),
		}, nil
	}
}
