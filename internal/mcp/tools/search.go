package tools

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/rugsearch/internal/assets"
	"github.com/usestring/rugsearch/pkg/types"
)

// SearchInput is the input for rug_search. Input fields, when given, are
// applied to the session before submitting.
type SearchInput struct {
	Mode        *string `json:"mode,omitempty" jsonschema:"Search mode: clip, sbert or structured"`
	TextQuery   *string `json:"text_query,omitempty" jsonschema:"Free-text query"`
	MaxPrice    *string `json:"max_price,omitempty" jsonschema:"Price ceiling as typed"`
	MinPrice    *string `json:"min_price,omitempty" jsonschema:"Price floor as typed"`
	Sort        *string `json:"sort,omitempty" jsonschema:"score or price"`
	ImagePath   *string `json:"image_path,omitempty" jsonschema:"Local path of a room image to select"`
	JQ          string  `json:"jq,omitempty" jsonschema:"jq expression run over {results, parsed_query}; e.g. .results[] | select(.price < 5000) | .title"`
	CheckImages bool    `json:"check_images,omitempty" jsonschema:"Fetch every result image and report which ones load"`
}

func (in SearchInput) inputs() UpdateInputsInput {
	return UpdateInputsInput{
		Mode:      in.Mode,
		TextQuery: in.TextQuery,
		MaxPrice:  in.MaxPrice,
		MinPrice:  in.MinPrice,
		Sort:      in.Sort,
		ImagePath: in.ImagePath,
	}
}

// JQOutput holds the values a jq filter produced.
type JQOutput struct {
	Values   []any    `json:"values,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	RawCount int      `json:"raw_count"`
}

// SearchOutput is the output for rug_search.
type SearchOutput struct {
	Mode        string             `json:"mode"`
	Sort        string             `json:"sort"`
	Outcome     string             `json:"outcome"`
	ResultCount int                `json:"result_count"`
	Results     []ResultInfo       `json:"results,omitempty"`
	ParsedQuery *types.ParsedQuery `json:"parsed_query,omitempty"` // Only in structured mode
	Chips       []string           `json:"chips,omitempty"`
	JQ          *JQOutput          `json:"jq,omitempty"`
}

// ToolSearch submits a search with the current session inputs.
func ToolSearch(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchInput) (*sdkmcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input SearchInput) (*sdkmcp.CallToolResult, SearchOutput, error) {
		if input.JQ != "" {
			if err := d.Query.ValidateExpression(input.JQ); err != nil {
				return nil, SearchOutput{}, ErrInvalidInput(err.Error())
			}
		}
		if err := applyInputs(d, input.inputs()); err != nil {
			return nil, SearchOutput{}, err
		}

		if err := d.Session.Submit(ctx); err != nil {
			return nil, SearchOutput{}, WrapSearchError(err)
		}
		snap := d.Session.Snapshot()

		var avail assets.Availability
		if input.CheckImages && d.Assets != nil {
			a, err := d.Assets.Prefetch(ctx, snap.Results)
			if err != nil {
				return nil, SearchOutput{}, WrapSearchError(err)
			}
			avail = a
		}

		visible := snap.VisibleParsedQuery()
		output := SearchOutput{
			Mode:        string(snap.Mode),
			Sort:        string(snap.SortKey),
			Outcome:     string(snap.LastOutcome),
			ResultCount: len(snap.Results),
			Results:     d.resultInfos(snap.Results, avail),
			ParsedQuery: visible,
			Chips:       visible.Chips(),
		}

		if input.JQ != "" {
			resp := &types.SearchResponse{Results: snap.Results, ParsedQuery: visible}
			result, err := d.Query.QueryResponse(resp, input.JQ, d.jqMaxResults())
			if err != nil {
				return nil, SearchOutput{}, ErrInvalidInput(err.Error())
			}
			output.JQ = &JQOutput{
				Values:   result.Values,
				Errors:   result.Errors,
				RawCount: result.RawCount,
			}
		}
		return nil, output, nil
	}
}
