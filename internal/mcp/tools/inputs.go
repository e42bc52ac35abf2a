package tools

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/rugsearch/internal/mode"
	"github.com/usestring/rugsearch/internal/rank"
	"github.com/usestring/rugsearch/internal/upload"
	"github.com/usestring/rugsearch/pkg/types"
)

// UpdateInputsInput is the input for rug_update_inputs. Omitted fields keep
// their current value.
type UpdateInputsInput struct {
	Mode       *string `json:"mode,omitempty" jsonschema:"Search mode: clip (room image), sbert (text) or structured (text with parsed facets)"`
	TextQuery  *string `json:"text_query,omitempty" jsonschema:"Free-text query; required by the sbert and structured modes"`
	MaxPrice   *string `json:"max_price,omitempty" jsonschema:"Price ceiling as typed; non-numeric values are ignored"`
	MinPrice   *string `json:"min_price,omitempty" jsonschema:"Price floor as typed; non-numeric values are ignored"`
	Sort       *string `json:"sort,omitempty" jsonschema:"Sort key applied when a search completes: score or price"`
	ImagePath  *string `json:"image_path,omitempty" jsonschema:"Local path of a room image to select"`
	ClearImage bool    `json:"clear_image,omitempty" jsonschema:"Drop the selected image"`
}

// ToolUpdateInputs applies input changes to the session.
func ToolUpdateInputs(d *Deps) func(ctx context.Context, req *sdkmcp.CallToolRequest, input UpdateInputsInput) (*sdkmcp.CallToolResult, StateOutput, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, input UpdateInputsInput) (*sdkmcp.CallToolResult, StateOutput, error) {
		if err := applyInputs(d, input); err != nil {
			return nil, StateOutput{}, err
		}
		return nil, d.stateOutput(d.Session.Snapshot(), nil), nil
	}
}

// applyInputs validates every field before changing anything, so a bad
// field leaves the session as it was.
func applyInputs(d *Deps, in UpdateInputsInput) error {
	s := d.Session

	var file *upload.File
	if in.ImagePath != nil && *in.ImagePath != "" {
		f, err := upload.ReadFile(*in.ImagePath)
		if err != nil {
			return ErrInvalidInput(err.Error())
		}
		file = f
	}
	var (
		m       types.SearchMode
		sortKey types.SortKey
		err     error
	)
	if in.Mode != nil {
		if m, err = mode.Parse(*in.Mode); err != nil {
			return ErrInvalidInput(err.Error())
		}
	}
	if in.Sort != nil {
		if sortKey, err = rank.ParseSortKey(*in.Sort); err != nil {
			return ErrInvalidInput(err.Error())
		}
	}

	if file != nil {
		if err := s.SelectImage(file); err != nil {
			return WrapSearchError(err)
		}
	} else if in.ClearImage {
		if err := s.ClearImage(); err != nil {
			return fmt.Errorf("clearing image: %w", err)
		}
	}
	if in.Mode != nil {
		if err := s.SetMode(m); err != nil {
			return ErrInvalidInput(err.Error())
		}
	}
	if in.Sort != nil {
		s.SetSortKey(sortKey)
	}
	if in.TextQuery != nil {
		s.SetTextQuery(*in.TextQuery)
	}
	if in.MaxPrice != nil {
		s.SetMaxPrice(*in.MaxPrice)
	}
	if in.MinPrice != nil {
		s.SetMinPrice(*in.MinPrice)
	}
	return nil
}
