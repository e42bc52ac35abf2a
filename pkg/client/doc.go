// Package client provides a Go SDK for the rug search backend.
//
// The backend ranks rug catalogue items against a room photo, a free-text
// query, or a structured query whose facets it extracts itself. This SDK
// sends the multipart search request and decodes the ranked results.
//
// # Quick Start
//
// Create a client and run a text search:
//
//	c := client.New()
//	resp, err := c.Search(ctx, &types.SearchRequest{
//	    TextQuery: "beige traditional rug",
//	    TopK:      types.TopK,
//	    ModelType: types.ModeTextOnly,
//	})
//
// Use custom configuration:
//
//	c := client.New(
//	    client.WithBaseURL("http://localhost:9000"),
//	    client.WithHTTPClient(customHTTPClient),
//	)
//
// # Wire Format
//
// Search posts multipart/form-data to /search/multimodal with the fields
// image (optional file part), text_query, top_k, model_type, and the
// optional price bounds max_price and min_price. Optional fields are left
// out of the form rather than sent empty.
//
// # Errors
//
// A status of 400 or above is returned as *APIError. The backend reports
// failures as {"detail": ...}; the detail text becomes the error message.
//
// # Images
//
// Results carry image paths relative to the backend origin. ImageURL resolves
// them and FetchImage downloads them:
//
//	data, contentType, err := c.FetchImage(ctx, result.Image)
package client
