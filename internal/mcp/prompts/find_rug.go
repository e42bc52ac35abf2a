package prompts

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleFindRug serves the guided rug finding workflow.
func HandleFindRug(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		args := map[string]string{}
		if req != nil && req.Params != nil && req.Params.Arguments != nil {
			args = req.Params.Arguments
		}
		description := strings.TrimSpace(args["description"])
		roomImage := strings.TrimSpace(args["room_image"])
		budget := strings.TrimSpace(args["budget"])

		var sb strings.Builder
		sb.WriteString("# Find a Rug\n\n")
		sb.WriteString("Help the user pick a rug from the catalog.\n\n")

		if description != "" || roomImage != "" || budget != "" {
			sb.WriteString("## What the user gave\n")
			if description != "" {
				fmt.Fprintf(&sb, "- Description: %s\n", description)
			}
			if roomImage != "" {
				fmt.Fprintf(&sb, "- Room image: `%s`\n", roomImage)
			}
			if budget != "" {
				fmt.Fprintf(&sb, "- Budget: %s\n", budget)
			}
			sb.WriteString("\n")
		}

		sb.WriteString("## Steps\n")
		switch {
		case roomImage != "":
			fmt.Fprintf(&sb, "1. `rug_search(mode: \"clip\", image_path: %q", roomImage)
			if description != "" {
				fmt.Fprintf(&sb, ", text_query: %q", description)
			}
			sb.WriteString(")`\n")
		case description != "":
			fmt.Fprintf(&sb, "1. `rug_search(mode: \"structured\", text_query: %q)`; if the chips miss the point, retry with `mode: \"sbert\"`\n", description)
		default:
			sb.WriteString("1. Ask for a room photo or a description, then call `rug_search`\n")
		}
		if budget != "" {
			fmt.Fprintf(&sb, "2. Pass `max_price: %q` and `sort: \"price\"` when price matters more than relevance\n", budget)
		} else {
			sb.WriteString("2. Ask whether there is a budget; pass it as `max_price`\n")
		}
		sb.WriteString("3. Present the top results with title, price display and the `why` explanation\n")
		sb.WriteString("4. Show images with `rug_fetch_image`; for missing images use the `placeholder` initials\n")

		return &sdkmcp.GetPromptResult{
			Description: "Guided rug search",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
