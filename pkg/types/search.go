package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SearchMode selects the backend model used for a search.
// The values are the wire names sent as model_type.
type SearchMode string

// Search modes.
const (
	ModeImageText      SearchMode = "clip"       // image required, text optional
	ModeTextOnly       SearchMode = "sbert"      // text required
	ModeStructuredText SearchMode = "structured" // text required, parsed into facets by the backend
)

// Valid reports whether m is one of the known modes.
func (m SearchMode) Valid() bool {
	switch m {
	case ModeImageText, ModeTextOnly, ModeStructuredText:
		return true
	}
	return false
}

// SortKey selects the client-side ordering of results.
type SortKey string

// Sort keys.
const (
	SortByScore SortKey = "score" // descending relevance (default)
	SortByPrice SortKey = "price" // ascending price
)

// TopK is the number of results requested per search.
const TopK = 8

// ImagePart is the binary image sent with a search.
type ImagePart struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SearchRequest is the payload of a single search submission.
// It is built fresh on every submit.
type SearchRequest struct {
	Image     *ImagePart // Optional; sent whenever an image is selected
	TextQuery string     // Always sent, may be empty
	TopK      int        // Always TopK
	ModelType SearchMode
	MaxPrice  *float64 // Present only when the raw input parsed as a number
	MinPrice  *float64 // Present only when the raw input parsed as a number
}

// ParsedQuery holds the facets the backend extracted from a structured query.
type ParsedQuery struct {
	Size  string `json:"size,omitempty"`
	Color string `json:"color,omitempty"`
	Style string `json:"style,omitempty"`
	Shape string `json:"shape,omitempty"`
}

// Chips returns one "<facet>: <value>" label per non-empty facet,
// in the order size, color, style, shape.
func (p *ParsedQuery) Chips() []string {
	if p == nil {
		return nil
	}
	var chips []string
	for _, f := range []struct{ name, value string }{
		{"size", p.Size},
		{"color", p.Color},
		{"style", p.Style},
		{"shape", p.Shape},
	} {
		if f.value != "" {
			chips = append(chips, f.name+": "+f.value)
		}
	}
	return chips
}

// UnmarshalJSON decodes facets leniently: non-string facets are treated as absent.
func (p *ParsedQuery) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = ParsedQuery{
		Size:  lenientString(raw["size"]),
		Color: lenientString(raw["color"]),
		Style: lenientString(raw["style"]),
		Shape: lenientString(raw["shape"]),
	}
	return nil
}

// SearchResult is a single ranked match.
// Price and Score are nil when the backend omitted them or sent a non-numeric value.
type SearchResult struct {
	Title string   `json:"title"`
	Price *float64 `json:"price,omitempty"`
	Score *float64 `json:"score,omitempty"`
	Why   string   `json:"why"`
	Image string   `json:"image,omitempty"` // Relative to the backend origin
	Model string   `json:"model,omitempty"`
}

// UnmarshalJSON decodes a result leniently. A field with an unexpected JSON
// type is treated as absent; a non-object entry decodes as an empty result.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	*r = SearchResult{}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	r.Title = lenientString(raw["title"])
	r.Price = lenientNumber(raw["price"])
	r.Score = lenientNumber(raw["score"])
	r.Why = lenientString(raw["why"])
	r.Image = lenientString(raw["image"])
	r.Model = lenientString(raw["model"])
	return nil
}

// SearchResponse is the decoded backend response.
type SearchResponse struct {
	Results     []SearchResult `json:"results"`
	ParsedQuery *ParsedQuery   `json:"parsed_query,omitempty"`
}

// UnmarshalJSON requires a JSON object. A missing or non-array results field
// yields an empty result set; a missing or non-object parsed_query yields nil.
func (r *SearchResponse) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("response is not a JSON object: %w", err)
	}
	if raw == nil {
		return errors.New("response is not a JSON object: null")
	}
	*r = SearchResponse{Results: []SearchResult{}}

	if v, ok := raw["results"]; ok && jsonKind(v) == '[' {
		var results []SearchResult
		if err := json.Unmarshal(v, &results); err == nil {
			r.Results = results
		}
	}
	if v, ok := raw["parsed_query"]; ok && jsonKind(v) == '{' {
		var pq ParsedQuery
		if err := json.Unmarshal(v, &pq); err == nil {
			r.ParsedQuery = &pq
		}
	}
	return nil
}

// jsonKind returns the first significant byte of a JSON value, or 0.
func jsonKind(v json.RawMessage) byte {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return 0
	}
	return v[0]
}

func lenientString(v json.RawMessage) string {
	if jsonKind(v) != '"' {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

// lenientNumber accepts JSON numbers and numeric strings. NaN and infinities
// are treated as absent so results stay JSON-encodable.
func lenientNumber(v json.RawMessage) *float64 {
	var f float64
	switch jsonKind(v) {
	case '"':
		s := lenientString(v)
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		f = parsed
	case 0, 'n', 't', 'f', '[', '{':
		return nil
	default:
		if err := json.Unmarshal(v, &f); err != nil {
			return nil
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
