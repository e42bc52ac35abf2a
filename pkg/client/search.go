package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/usestring/rugsearch/pkg/types"
)

// SearchPath is the multimodal search endpoint.
const SearchPath = "/search/multimodal"

// Search sends one multipart search request and decodes the response.
// There are no retries.
func (c *Client) Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	if req == nil {
		return nil, errors.New("search request is nil")
	}

	body, contentType, err := encodeSearch(req)
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	respBody, err := c.post(ctx, SearchPath, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}

	if c.checker != nil {
		if problems := c.checker.Check(respBody); len(problems) > 0 {
			slog.Warn("search response does not match contract",
				slog.Int("problems", len(problems)),
				slog.String("first", problems[0]),
			)
		}
	}

	var resp types.SearchResponse
	if err := resp.UnmarshalJSON(respBody); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &resp, nil
}

// encodeSearch writes the multipart form. Optional fields are omitted, never
// sent empty.
func encodeSearch(req *types.SearchRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if req.Image != nil {
		if err := writeImagePart(w, req.Image); err != nil {
			return nil, "", err
		}
	}

	fields := [][2]string{
		{"text_query", req.TextQuery},
		{"top_k", strconv.Itoa(req.TopK)},
		{"model_type", string(req.ModelType)},
	}
	if req.MaxPrice != nil {
		fields = append(fields, [2]string{"max_price", formatNumber(*req.MaxPrice)})
	}
	if req.MinPrice != nil {
		fields = append(fields, [2]string{"min_price", formatNumber(*req.MinPrice)})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("writing %s: %w", f[0], err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeImagePart(w *multipart.Writer, img *types.ImagePart) error {
	filename := img.Filename
	if filename == "" {
		filename = "upload"
	}
	ct := img.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="image"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("creating image part: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return fmt.Errorf("writing image part: %w", err)
	}
	return nil
}

// formatNumber renders v in its shortest decimal form.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
