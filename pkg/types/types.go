// Package types provides shared types for rugsearch.
// These types describe the multimodal search wire contract and are designed
// for external consumption.
package types

import "encoding/json"

// ToAny round-trips a typed value through JSON to produce an untyped any.
// Use this when a tool output field must be any to satisfy the MCP SDK's
// schema validation.
func ToAny(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 { return &v }
