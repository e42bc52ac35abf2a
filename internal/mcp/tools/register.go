package tools

import (
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register registers all tools with the MCP server.
func Register(srv *sdkmcp.Server, d *Deps) {
	AddTool(srv, &sdkmcp.Tool{
		Name:        "rug_modes",
		Description: "List the search modes (clip: room image, sbert: free text, structured: text with parsed size/color/style/shape facets) with the input each requires, and the active mode.",
	}, ToolModes(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "rug_update_inputs",
		Description: "Change session inputs without searching: mode, text_query, max_price, min_price, sort, image_path, clear_image. Omitted fields keep their value; switching mode never clears text or image. Returns the session state.",
	}, ToolUpdateInputs(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "rug_search",
		Description: "Run one search with the session inputs, optionally setting inputs first. Returns up to 8 ranked results, parsed query chips in structured mode, and jq output when jq is set. Fails with VALIDATION when the mode's required input is missing, BUSY while a search is running, BACKEND_ERROR when the backend call fails.",
	}, ToolSearch(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "rug_state",
		Description: "Get the session state: inputs, loading flag, last outcome and the displayed results.",
	}, ToolState(d))

	AddTool(srv, &sdkmcp.Tool{
		Name:        "rug_fetch_image",
		Description: "Download a result image by its path and return it as image content. Results without a loadable image should be shown by their placeholder initials.",
	}, ToolFetchImage(d))
}
