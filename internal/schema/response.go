package schema

import (
	"fmt"

	"github.com/invopop/jsonschema"
)

// responseContract documents the search response the backend promises.
// Decoding is more lenient than this; the contract only drives warnings.
type responseContract struct {
	Results     []resultContract     `json:"results" jsonschema:"required"`
	ParsedQuery *parsedQueryContract `json:"parsed_query,omitempty"`
}

type resultContract struct {
	Title string   `json:"title" jsonschema:"required"`
	Price *float64 `json:"price,omitempty"`
	Score float64  `json:"score" jsonschema:"required"`
	Why   string   `json:"why,omitempty"`
	Image string   `json:"image,omitempty" jsonschema:"description=Path relative to the backend origin"`
	Model string   `json:"model,omitempty"`
}

type parsedQueryContract struct {
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
	Style string `json:"style,omitempty"`
	Shape string `json:"shape,omitempty"`
}

// ResponseSchema reflects the search response contract.
func ResponseSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
		Anonymous:                  true,
	}
	return r.Reflect(&responseContract{})
}

// NewResponseValidator compiles the search response contract.
func NewResponseValidator() (*Validator, error) {
	v, err := NewValidator(ResponseSchema())
	if err != nil {
		return nil, fmt.Errorf("building response validator: %w", err)
	}
	return v, nil
}
