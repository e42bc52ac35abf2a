// Package request assembles outgoing search payloads.
package request

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/usestring/rugsearch/internal/upload"
	"github.com/usestring/rugsearch/pkg/types"
)

// decimalPrefix matches the longest leading decimal literal of a string.
var decimalPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// ParsePrice parses the leading decimal number of raw, skipping leading
// whitespace. It reports false when raw is empty or has no numeric prefix,
// in which case the field must be omitted from the request.
//
// Negative values are returned as-is: the backend treats them as a filter
// that matches nothing, and no client-side bound is enforced.
//
// "Infinity" and values that overflow float64 (such as "1e400") are reported
// as absent, unlike a JavaScript parseFloat, which yields Infinity for both.
// A form field cannot carry an infinite ceiling the backend would parse.
func ParsePrice(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	lit := decimalPrefix.FindString(strings.TrimLeft(raw, " \t\n\r\f\v"))
	if lit == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		// Only overflow can fail here; an out-of-range ceiling is not a number.
		return 0, false
	}
	return v, true
}

// Option adjusts a request after the required fields are set.
type Option func(*types.SearchRequest)

// WithMinPrice adds a price floor using the same rule as the ceiling.
func WithMinPrice(raw string) Option {
	return func(r *types.SearchRequest) {
		if v, ok := ParsePrice(raw); ok {
			r.MinPrice = &v
		}
	}
}

// Build assembles a request. TopK is always types.TopK, textQuery is always
// sent, and image is included whenever one is selected, whatever the mode.
// maxPriceRaw yields MaxPrice only when ParsePrice accepts it.
func Build(m types.SearchMode, textQuery, maxPriceRaw string, image *upload.File, opts ...Option) *types.SearchRequest {
	req := &types.SearchRequest{
		Image:     image.Part(),
		TextQuery: textQuery,
		TopK:      types.TopK,
		ModelType: m,
	}
	if v, ok := ParsePrice(maxPriceRaw); ok {
		req.MaxPrice = &v
	}
	for _, opt := range opts {
		opt(req)
	}
	return req
}
