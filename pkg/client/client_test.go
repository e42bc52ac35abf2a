package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/rugsearch/pkg/types"
)

type capturedForm struct {
	values   map[string][]string
	hasImage bool
	filename string
	imageCT  string
	image    []byte
}

func captureForm(t *testing.T, r *http.Request) capturedForm {
	t.Helper()
	require.NoError(t, r.ParseMultipartForm(1<<20))
	got := capturedForm{values: r.MultipartForm.Value}
	if files := r.MultipartForm.File["image"]; len(files) > 0 {
		got.hasImage = true
		got.filename = files[0].Filename
		got.imageCT = files[0].Header.Get("Content-Type")
		f, err := files[0].Open()
		require.NoError(t, err)
		defer f.Close()
		got.image, err = io.ReadAll(f)
		require.NoError(t, err)
	}
	return got
}

func TestSearch_MultipartFields(t *testing.T) {
	var got capturedForm
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, SearchPath, r.URL.Path)
		got = captureForm(t, r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"title":"Beige Rug","price":4500,"score":0.91,"why":"matches tone","image":"/images/a.jpg"}]}`))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	resp, err := c.Search(context.Background(), &types.SearchRequest{
		Image:     &types.ImagePart{Filename: "room.png", ContentType: "image/png", Data: []byte("png-bytes")},
		TextQuery: "",
		TopK:      types.TopK,
		ModelType: types.ModeImageText,
		MaxPrice:  types.Float64Ptr(450),
	})
	require.NoError(t, err)

	assert.True(t, got.hasImage)
	assert.Equal(t, "room.png", got.filename)
	assert.Equal(t, "image/png", got.imageCT)
	assert.Equal(t, []byte("png-bytes"), got.image)
	assert.Equal(t, []string{""}, got.values["text_query"])
	assert.Equal(t, []string{"8"}, got.values["top_k"])
	assert.Equal(t, []string{"clip"}, got.values["model_type"])
	assert.Equal(t, []string{"450"}, got.values["max_price"])
	assert.NotContains(t, got.values, "min_price")

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Beige Rug", resp.Results[0].Title)
	assert.Equal(t, 0.91, *resp.Results[0].Score)
	assert.Nil(t, resp.ParsedQuery)
}

func TestSearch_OmitsAbsentOptionalFields(t *testing.T) {
	var got capturedForm
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = captureForm(t, r)
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL + "/"))
	_, err := c.Search(context.Background(), &types.SearchRequest{
		TextQuery: "blue rug",
		TopK:      types.TopK,
		ModelType: types.ModeTextOnly,
		MinPrice:  types.Float64Ptr(12.5),
	})
	require.NoError(t, err)

	assert.False(t, got.hasImage)
	assert.NotContains(t, got.values, "max_price")
	assert.Equal(t, []string{"12.5"}, got.values["min_price"])
	assert.Equal(t, []string{"sbert"}, got.values["model_type"])
}

func TestSearch_ParsedQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[],"parsed_query":{"size":"8x10","color":"beige"}}`))
	}))
	defer srv.Close()

	resp, err := New(WithBaseURL(srv.URL)).Search(context.Background(), &types.SearchRequest{
		TextQuery: "8x10 beige", TopK: types.TopK, ModelType: types.ModeStructuredText,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ParsedQuery)
	assert.Equal(t, []string{"size: 8x10", "color: beige"}, resp.ParsedQuery.Chips())
}

func TestSearch_APIErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"index not loaded"}`))
	}))
	defer srv.Close()

	_, err := New(WithBaseURL(srv.URL)).Search(context.Background(), &types.SearchRequest{TopK: types.TopK})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "index not loaded", apiErr.Message)
}

func TestSearch_APIErrorValidationDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","top_k"],"msg":"field required"}]}`))
	}))
	defer srv.Close()

	_, err := New(WithBaseURL(srv.URL)).Search(context.Background(), &types.SearchRequest{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "top_k: field required", apiErr.Message)
}

func TestSearch_APIErrorPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(WithBaseURL(srv.URL)).Search(context.Background(), &types.SearchRequest{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestSearch_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := New(WithBaseURL(srv.URL)).Search(context.Background(), &types.SearchRequest{})
	assert.ErrorContains(t, err, "decoding response")
}

func TestSearch_NullBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	resp, err := New(WithBaseURL(srv.URL)).Search(context.Background(), &types.SearchRequest{})
	assert.ErrorContains(t, err, "decoding response")
	assert.Nil(t, resp)
}

func TestSearch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(WithBaseURL(url)).Search(context.Background(), &types.SearchRequest{})
	assert.ErrorContains(t, err, "executing request")
}

func TestSearch_NilRequest(t *testing.T) {
	_, err := New().Search(context.Background(), nil)
	assert.Error(t, err)
}

type recordingChecker struct {
	bodies [][]byte
}

func (r *recordingChecker) Check(body []byte) []string {
	r.bodies = append(r.bodies, body)
	return []string{"results/0: missing property 'score'"}
}

func TestSearch_CheckerDoesNotFailSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"title":"No Score"}]}`))
	}))
	defer srv.Close()

	checker := &recordingChecker{}
	resp, err := New(WithBaseURL(srv.URL), WithResponseChecker(checker)).
		Search(context.Background(), &types.SearchRequest{TopK: types.TopK})
	require.NoError(t, err)
	require.Len(t, checker.bodies, 1)
	require.Len(t, resp.Results, 1)
	assert.Nil(t, resp.Results[0].Score)
}

func TestImageURL(t *testing.T) {
	c := New(WithBaseURL("http://backend:8000/"))
	assert.Equal(t, "", c.ImageURL(""))
	assert.Equal(t, "http://backend:8000/images/a.jpg", c.ImageURL("/images/a.jpg"))
	assert.Equal(t, "http://backend:8000/images/a.jpg", c.ImageURL("images/a.jpg"))
	assert.Equal(t, "https://cdn.example.com/a.jpg", c.ImageURL("https://cdn.example.com/a.jpg"))
}

func TestFetchImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/a.jpg" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xff, 0xd8, 0xff})
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL))
	data, ct, err := c.FetchImage(context.Background(), "/images/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", ct)
	assert.Equal(t, []byte{0xff, 0xd8, 0xff}, data)

	_, _, err = c.FetchImage(context.Background(), "/images/missing.jpg")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	_, _, err = c.FetchImage(context.Background(), "")
	assert.Error(t, err)
}
