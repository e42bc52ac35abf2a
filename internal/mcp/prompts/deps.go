// Package prompts contains MCP prompt implementations for rug search.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	BackendURL string
}
