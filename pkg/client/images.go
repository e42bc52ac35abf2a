package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ImageURL resolves a result image path against the backend origin.
// Absolute URLs pass through and an empty path stays empty.
func (c *Client) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// FetchImage downloads a result image and returns its bytes and content type.
func (c *Client) FetchImage(ctx context.Context, path string) ([]byte, string, error) {
	if path == "" {
		return nil, "", errors.New("image path is empty")
	}
	data, contentType, err := c.get(ctx, c.ImageURL(path), path)
	if err != nil {
		return nil, "", fmt.Errorf("fetching image %q: %w", path, err)
	}
	return data, contentType, nil
}
