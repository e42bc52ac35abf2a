package prompts

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all prompts with the MCP server.
func Register(srv *sdkmcp.Server, cfg *Config) {
	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "find_rug",
		Description: "RECOMMENDED: Guided rug search from a room photo, a description or both, with an optional budget.",
		Arguments: []*sdkmcp.PromptArgument{
			{
				Name:        "description",
				Description: "What the user wants, e.g. 'round grey modern rug'",
				Required:    false,
			},
			{
				Name:        "room_image",
				Description: "Local path of a room photo",
				Required:    false,
			},
			{
				Name:        "budget",
				Description: "Maximum price",
				Required:    false,
			},
		},
	}, HandleFindRug(cfg))

	srv.AddPrompt(&sdkmcp.Prompt{
		Name:        "usage_guide",
		Description: "Modes, input rules, jq examples and error codes for the rug_* tools.",
	}, HandleUsageGuide(cfg))
}
