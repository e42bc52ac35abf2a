package prompts

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// HandleUsageGuide serves the tool usage guide.
func HandleUsageGuide(cfg *Config) func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	return func(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
		var sb strings.Builder

		sb.WriteString("# Rug Search Tool Guide\n\n")
		if cfg.BackendURL != "" {
			sb.WriteString("Backend: `" + cfg.BackendURL + "`\n\n")
		}

		sb.WriteString("## Modes\n\n")
		sb.WriteString("| Mode | Requires | Use when |\n")
		sb.WriteString("|------|----------|----------|\n")
		sb.WriteString("| `clip` | room image | The user has a photo of the room; text refines the match |\n")
		sb.WriteString("| `sbert` | text | Free-form description, no photo |\n")
		sb.WriteString("| `structured` | text | The query names size, color, style or shape (e.g. `8x10 beige traditional rug`) |\n")

		sb.WriteString("\n**Key rules**:\n")
		sb.WriteString("- Inputs persist across calls; switching mode never clears text or image\n")
		sb.WriteString("- A search missing its mode's input fails with `VALIDATION` and the previous results stay visible\n")
		sb.WriteString("- An image selected in a text mode is still sent\n")
		sb.WriteString("- Prices that do not parse as numbers are silently dropped from the request\n")
		sb.WriteString("- `sort` applies when a search completes; changing it alone does not reorder shown results\n")

		sb.WriteString("\n## Workflow\n")
		sb.WriteString("1. `rug_modes` to see the active mode\n")
		sb.WriteString("2. `rug_search(mode: \"structured\", text_query: \"round grey modern rug\", max_price: \"15000\")`\n")
		sb.WriteString("3. Read `chips` to confirm how the backend parsed the query (structured mode only)\n")
		sb.WriteString("4. `rug_fetch_image(path)` for results worth showing; set `check_images: true` to learn which images load\n")

		sb.WriteString("\n## JQ Over Results\n")
		sb.WriteString("`rug_search(jq: ...)` runs over `{results, parsed_query}`:\n")
		sb.WriteString("- `.results[] | select(.price != null and .price < 5000) | .title`\n")
		sb.WriteString("- `[.results[] | .score] | add / length`\n")
		sb.WriteString("- `.results | map({title, why})`\n")

		sb.WriteString("\n## Errors\n")
		sb.WriteString("- `BUSY`: a search is running, retry after it completes\n")
		sb.WriteString("- `BACKEND_ERROR`: the backend failed; results were cleared\n")
		sb.WriteString("- `INVALID_INPUT`: unknown mode or sort, unreadable or non-image file, bad jq\n")

		return &sdkmcp.GetPromptResult{
			Description: "Guide for searching rugs with the rug_* tools",
			Messages: []*sdkmcp.PromptMessage{
				{
					Role:    "user",
					Content: &sdkmcp.TextContent{Text: sb.String()},
				},
			},
		}, nil
	}
}
