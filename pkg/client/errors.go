package client

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError represents an error response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("rug search API error %d: %s", e.StatusCode, e.Message)
}

// errorResponse is the JSON structure for backend errors. Detail is a string
// for handler errors and a list of objects for request validation errors.
type errorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

func (r errorResponse) message() string {
	if len(r.Detail) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(r.Detail, &s) == nil {
		return s
	}
	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if json.Unmarshal(r.Detail, &items) == nil && len(items) > 0 {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if len(it.Loc) > 0 {
				msgs = append(msgs, fmt.Sprintf("%v: %s", it.Loc[len(it.Loc)-1], it.Msg))
			} else {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return string(r.Detail)
}
