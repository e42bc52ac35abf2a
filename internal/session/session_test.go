package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/rugsearch/internal/mode"
	"github.com/usestring/rugsearch/internal/upload"
	"github.com/usestring/rugsearch/pkg/client"
	"github.com/usestring/rugsearch/pkg/types"
)

type fakeSearcher struct {
	calls atomic.Int32
	last  atomic.Pointer[types.SearchRequest]
	fn    func(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error)
}

func (f *fakeSearcher) Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
	f.calls.Add(1)
	f.last.Store(req)
	return f.fn(ctx, req)
}

func respond(resp *types.SearchResponse) *fakeSearcher {
	return &fakeSearcher{fn: func(context.Context, *types.SearchRequest) (*types.SearchResponse, error) {
		return resp, nil
	}}
}

type noticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (l *noticeLog) Notify(n Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
}

func (l *noticeLog) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.notices))
	for i, n := range l.notices {
		out[i] = n.Message
	}
	return out
}

func roomImage(t *testing.T) *upload.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 30))))
	return upload.FromBytes("room.png", buf.Bytes())
}

func newSession(t *testing.T, s Searcher, opts ...Option) (*Controller, *noticeLog) {
	t.Helper()
	notices := &noticeLog{}
	opts = append([]Option{WithNotifier(notices)}, opts...)
	c := New(s, upload.NewManager(t.TempDir()), opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c, notices
}

var f = types.Float64Ptr

func threeResults() *types.SearchResponse {
	return &types.SearchResponse{Results: []types.SearchResult{
		{Title: "a", Price: f(500), Score: f(0.2)},
		{Title: "b", Price: f(100), Score: f(0.9)},
		{Title: "c", Price: f(300), Score: f(0.5)},
	}}
}

func TestNew_InitialState(t *testing.T) {
	c, _ := newSession(t, respond(threeResults()))
	s := c.Snapshot()
	assert.Equal(t, types.ModeImageText, s.Mode)
	assert.False(t, s.Loading)
	assert.NotNil(t, s.Results)
	assert.Empty(t, s.Results)
	assert.Nil(t, s.ParsedQuery)
	assert.Equal(t, OutcomeNone, s.LastOutcome)
}

func TestSubmit_ImageModeWithoutImageIsBlocked(t *testing.T) {
	searcher := respond(threeResults())
	c, notices := newSession(t, searcher)
	c.SetTextQuery("beige rug")

	err := c.Submit(context.Background())

	var verr *mode.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, mode.InputImage, verr.Missing)
	assert.Equal(t, int32(0), searcher.calls.Load())
	assert.Equal(t, []string{"Please upload a room image for CLIP search"}, notices.messages())
	assert.Equal(t, OutcomeBlocked, c.Snapshot().LastOutcome)
	assert.False(t, c.Loading())
}

func TestSubmit_TextModesWithoutTextAreBlocked(t *testing.T) {
	for _, m := range []types.SearchMode{types.ModeTextOnly, types.ModeStructuredText} {
		t.Run(string(m), func(t *testing.T) {
			searcher := respond(threeResults())
			c, notices := newSession(t, searcher, WithMode(m))
			require.NoError(t, c.SelectImage(roomImage(t)))

			err := c.Submit(context.Background())

			var verr *mode.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, int32(0), searcher.calls.Load())
			assert.Equal(t, []string{"Please enter a text query"}, notices.messages())
		})
	}
}

func TestSubmit_BlockedLeavesPreviousResults(t *testing.T) {
	c, _ := newSession(t, respond(threeResults()), WithMode(types.ModeTextOnly))
	c.SetTextQuery("rug")
	require.NoError(t, c.Submit(context.Background()))
	require.Len(t, c.Snapshot().Results, 3)

	c.SetTextQuery("")
	require.Error(t, c.Submit(context.Background()))
	assert.Len(t, c.Snapshot().Results, 3)
}

func TestSubmit_SortsByScoreByDefault(t *testing.T) {
	c, _ := newSession(t, respond(threeResults()), WithMode(types.ModeTextOnly))
	c.SetTextQuery("rug")
	require.NoError(t, c.Submit(context.Background()))

	s := c.Snapshot()
	require.Len(t, s.Results, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{s.Results[0].Title, s.Results[1].Title, s.Results[2].Title})
	assert.Equal(t, OutcomeSuccess, s.LastOutcome)
}

func TestSubmit_SortsByPrice(t *testing.T) {
	c, _ := newSession(t, respond(threeResults()), WithMode(types.ModeTextOnly), WithSortKey(types.SortByPrice))
	c.SetTextQuery("rug")
	require.NoError(t, c.Submit(context.Background()))

	s := c.Snapshot()
	assert.Equal(t, 100.0, *s.Results[0].Price)
	assert.Equal(t, 300.0, *s.Results[1].Price)
	assert.Equal(t, 500.0, *s.Results[2].Price)
}

func TestSubmit_SendsImageInTextModes(t *testing.T) {
	searcher := respond(threeResults())
	c, _ := newSession(t, searcher, WithMode(types.ModeStructuredText))
	require.NoError(t, c.SelectImage(roomImage(t)))
	c.SetTextQuery("8x10 beige traditional rug")
	c.SetMaxPrice("450abc")

	require.NoError(t, c.Submit(context.Background()))

	req := searcher.last.Load()
	require.NotNil(t, req)
	require.NotNil(t, req.Image)
	assert.Equal(t, "room.png", req.Image.Filename)
	assert.Equal(t, types.ModeStructuredText, req.ModelType)
	assert.Equal(t, 8, req.TopK)
	require.NotNil(t, req.MaxPrice)
	assert.Equal(t, 450.0, *req.MaxPrice)
	assert.Nil(t, req.MinPrice)
}

func TestSubmit_FailureRaisesBackendNotice(t *testing.T) {
	searcher := &fakeSearcher{fn: func(context.Context, *types.SearchRequest) (*types.SearchResponse, error) {
		return nil, &client.APIError{StatusCode: 500, Message: "boom"}
	}}
	c, notices := newSession(t, searcher, WithMode(types.ModeTextOnly))
	c.SetTextQuery("rug")

	err := c.Submit(context.Background())

	require.ErrorIs(t, err, ErrSearchFailed)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, []string{BackendErrorNotice}, notices.messages())

	s := c.Snapshot()
	assert.False(t, s.Loading)
	assert.Empty(t, s.Results)
	assert.Equal(t, OutcomeError, s.LastOutcome)
}

func TestSubmit_ClearsResultsAndParsedQueryAtStart(t *testing.T) {
	var c *Controller
	var during Snapshot
	searcher := &fakeSearcher{}
	c, _ = newSession(t, searcher, WithMode(types.ModeStructuredText))
	c.SetTextQuery("8x10")

	first := threeResults()
	first.ParsedQuery = &types.ParsedQuery{Size: "8x10"}
	searcher.fn = func(context.Context, *types.SearchRequest) (*types.SearchResponse, error) {
		return first, nil
	}
	require.NoError(t, c.Submit(context.Background()))
	require.NotNil(t, c.Snapshot().ParsedQuery)

	searcher.fn = func(context.Context, *types.SearchRequest) (*types.SearchResponse, error) {
		during = c.Snapshot()
		return &types.SearchResponse{Results: []types.SearchResult{{Title: "x"}}}, nil
	}
	require.NoError(t, c.Submit(context.Background()))

	assert.True(t, during.Loading)
	assert.Empty(t, during.Results)
	assert.Nil(t, during.ParsedQuery)

	// The second response carried no parsed query.
	assert.Nil(t, c.Snapshot().ParsedQuery)
	assert.Len(t, c.Snapshot().Results, 1)
}

func TestSubmit_LoadingTransitions(t *testing.T) {
	var loading []bool
	c, _ := newSession(t, respond(threeResults()),
		WithMode(types.ModeTextOnly),
		WithObserver(func(s Snapshot) { loading = append(loading, s.Loading) }),
	)
	c.SetTextQuery("rug")
	loading = nil

	require.NoError(t, c.Submit(context.Background()))
	assert.Equal(t, []bool{true, false}, loading)
}

func TestSubmit_ConcurrentSubmitIsBusy(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	searcher := &fakeSearcher{fn: func(context.Context, *types.SearchRequest) (*types.SearchResponse, error) {
		close(started)
		<-release
		return threeResults(), nil
	}}
	c, _ := newSession(t, searcher, WithMode(types.ModeTextOnly))
	c.SetTextQuery("rug")

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background()) }()
	<-started

	assert.ErrorIs(t, c.Submit(context.Background()), ErrBusy)
	assert.True(t, c.Loading())

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), searcher.calls.Load())
	assert.False(t, c.Loading())
}

func TestSubmit_PanicClearsLoading(t *testing.T) {
	searcher := &fakeSearcher{fn: func(context.Context, *types.SearchRequest) (*types.SearchResponse, error) {
		panic("backend exploded")
	}}
	c, _ := newSession(t, searcher, WithMode(types.ModeTextOnly))
	c.SetTextQuery("rug")

	assert.Panics(t, func() { _ = c.Submit(context.Background()) })
	assert.False(t, c.Loading())
}

func TestSubmit_SortKeyAtCompletionApplies(t *testing.T) {
	var c *Controller
	searcher := &fakeSearcher{fn: func(context.Context, *types.SearchRequest) (*types.SearchResponse, error) {
		c.SetSortKey(types.SortByPrice)
		return threeResults(), nil
	}}
	c, _ = newSession(t, searcher, WithMode(types.ModeTextOnly))
	c.SetTextQuery("rug")

	require.NoError(t, c.Submit(context.Background()))
	assert.Equal(t, 100.0, *c.Snapshot().Results[0].Price)
}

func TestSetSortKey_DoesNotReorderShownResults(t *testing.T) {
	c, _ := newSession(t, respond(threeResults()), WithMode(types.ModeTextOnly))
	c.SetTextQuery("rug")
	require.NoError(t, c.Submit(context.Background()))

	c.SetSortKey(types.SortByPrice)
	assert.Equal(t, "b", c.Snapshot().Results[0].Title)
}

func TestSetMode_KeepsInputs(t *testing.T) {
	c, _ := newSession(t, respond(threeResults()))
	require.NoError(t, c.SelectImage(roomImage(t)))
	c.SetTextQuery("beige")

	require.NoError(t, c.SetMode(types.ModeTextOnly))
	require.NoError(t, c.SetMode(types.ModeStructuredText))
	require.NoError(t, c.SetMode(types.ModeImageText))

	s := c.Snapshot()
	assert.Equal(t, "beige", s.TextQuery)
	assert.True(t, s.HasImage)
	assert.Equal(t, "room.png", s.ImageName)

	assert.Error(t, c.SetMode("bogus"))
	assert.Equal(t, types.ModeImageText, c.Mode())
}

func TestVisibleParsedQuery_OnlyInStructuredMode(t *testing.T) {
	resp := threeResults()
	resp.ParsedQuery = &types.ParsedQuery{Size: "8x10", Color: "beige", Style: "traditional"}
	c, _ := newSession(t, respond(resp), WithMode(types.ModeStructuredText))
	c.SetTextQuery("8x10 beige traditional rug")
	require.NoError(t, c.Submit(context.Background()))

	assert.Equal(t, []string{"size: 8x10", "color: beige", "style: traditional"}, c.Chips())

	require.NoError(t, c.SetMode(types.ModeTextOnly))
	assert.Nil(t, c.VisibleParsedQuery())
	assert.Empty(t, c.Chips())
	assert.NotNil(t, c.Snapshot().ParsedQuery)

	require.NoError(t, c.SetMode(types.ModeStructuredText))
	assert.NotNil(t, c.VisibleParsedQuery())
}

func TestSelectImage_ReplacesAndReleasesPreview(t *testing.T) {
	c, _ := newSession(t, respond(threeResults()))
	require.NoError(t, c.SelectImage(roomImage(t)))
	first := c.Snapshot().PreviewPath
	require.FileExists(t, first)

	require.NoError(t, c.SelectImage(roomImage(t)))
	second := c.Snapshot().PreviewPath
	assert.NotEqual(t, first, second)
	assert.NoFileExists(t, first)

	require.NoError(t, c.Close())
	_, err := os.Stat(second)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSelectImage_RejectsNonImage(t *testing.T) {
	c, _ := newSession(t, respond(threeResults()))
	require.NoError(t, c.SelectImage(roomImage(t)))

	err := c.SelectImage(upload.FromBytes("notes.txt", []byte("plain text")))
	assert.ErrorIs(t, err, upload.ErrNotImage)
	assert.Equal(t, "room.png", c.Snapshot().ImageName)
}

func TestEndToEnd_ImageSearchThenStructured(t *testing.T) {
	searcher := &fakeSearcher{}
	searcher.fn = func(_ context.Context, req *types.SearchRequest) (*types.SearchResponse, error) {
		resp := threeResults()
		if req.ModelType == types.ModeStructuredText {
			resp.ParsedQuery = &types.ParsedQuery{Size: "8x10", Color: "beige", Style: "traditional"}
		}
		return resp, nil
	}
	c, notices := newSession(t, searcher)

	require.NoError(t, c.SelectImage(roomImage(t)))
	require.NoError(t, c.Submit(context.Background()))
	assert.Len(t, c.Snapshot().Results, 3)
	assert.Empty(t, c.Chips())

	require.NoError(t, c.SetMode(types.ModeStructuredText))
	c.SetTextQuery("8x10 beige traditional rug")
	require.NoError(t, c.Submit(context.Background()))

	assert.Equal(t, []string{"size: 8x10", "color: beige", "style: traditional"}, c.Chips())
	assert.Empty(t, notices.messages())
	assert.Equal(t, int32(2), searcher.calls.Load())
}

func TestSubmit_ImageWithoutPreviewStillSearches(t *testing.T) {
	searcher := respond(threeResults())
	c, notices := newSession(t, searcher, WithMode(types.ModeImageText))

	heic := &upload.File{Name: "room.heic", ContentType: "image/heic", Data: []byte("heic bytes")}
	require.NoError(t, c.SelectImage(heic))
	s := c.Snapshot()
	assert.True(t, s.HasImage)
	assert.Empty(t, s.PreviewPath)

	require.NoError(t, c.Submit(context.Background()))
	assert.Empty(t, notices.messages())
	req := searcher.last.Load()
	require.NotNil(t, req)
	require.NotNil(t, req.Image)
	assert.Equal(t, "room.heic", req.Image.Filename)
	assert.Equal(t, []byte("heic bytes"), req.Image.Data)
}
