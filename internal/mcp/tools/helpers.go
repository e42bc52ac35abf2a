// Package tools contains MCP tool implementations for rug search.
package tools

// MIME type constant.
const MimeJSON = "application/json"
