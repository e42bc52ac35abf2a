// Package session coordinates one search session: the input cells, the
// submit lifecycle, and the published results.
//
// A submit moves through validating, loading and displaying before settling
// back to idle. Only one submit may be in flight per session; a second one
// gets ErrBusy and sends nothing.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/usestring/rugsearch/internal/mode"
	"github.com/usestring/rugsearch/internal/rank"
	"github.com/usestring/rugsearch/internal/request"
	"github.com/usestring/rugsearch/internal/upload"
	"github.com/usestring/rugsearch/pkg/types"
)

// BackendErrorNotice is raised for every failed search call.
const BackendErrorNotice = "Error calling backend."

var (
	// ErrBusy is returned by Submit while another search is in flight.
	ErrBusy = errors.New("a search is already in progress")

	// ErrSearchFailed wraps every transport, status or decoding failure.
	ErrSearchFailed = errors.New("search failed")
)

// Searcher executes a search request.
type Searcher interface {
	Search(ctx context.Context, req *types.SearchRequest) (*types.SearchResponse, error)
}

// Outcome is the result of the most recent submit.
type Outcome string

const (
	OutcomeNone    Outcome = "none"
	OutcomeBlocked Outcome = "blocked"
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// NoticeLevel is the severity of a notice.
type NoticeLevel string

const (
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a blocking message for the user.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Notifier receives notices.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Observer receives a snapshot after every state transition.
type Observer func(Snapshot)

// Snapshot is a copy of the session state.
type Snapshot struct {
	Mode        types.SearchMode
	TextQuery   string
	MaxPriceRaw string
	MinPriceRaw string
	SortKey     types.SortKey
	HasImage    bool
	ImageName   string
	PreviewPath string
	Loading     bool
	Results     []types.SearchResult
	ParsedQuery *types.ParsedQuery
	LastOutcome Outcome
	LastError   string
}

// VisibleParsedQuery returns the parsed query when the structured mode is
// active, nil otherwise.
func (s Snapshot) VisibleParsedQuery() *types.ParsedQuery {
	if s.Mode != types.ModeStructuredText {
		return nil
	}
	return s.ParsedQuery
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets the notice sink. The default logs notices.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithObserver registers a state observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithMode sets the initial mode.
func WithMode(m types.SearchMode) Option {
	return func(c *Controller) {
		c.modes = mode.NewController(m)
	}
}

// WithSortKey sets the initial sort key.
func WithSortKey(k types.SortKey) Option {
	return func(c *Controller) {
		c.sortKey = k
	}
}

// Controller owns the session state.
type Controller struct {
	searcher  Searcher
	uploads   *upload.Manager
	modes     *mode.Controller
	notifier  Notifier
	observers []Observer

	mu          sync.Mutex
	textQuery   string
	maxPriceRaw string
	minPriceRaw string
	sortKey     types.SortKey
	loading     bool
	results     []types.SearchResult
	parsedQuery *types.ParsedQuery
	outcome     Outcome
	lastErr     string
}

// New creates a session that searches with s and keeps its image in uploads.
func New(s Searcher, uploads *upload.Manager, opts ...Option) *Controller {
	c := &Controller{
		searcher: s,
		uploads:  uploads,
		modes:    mode.NewController(types.ModeImageText),
		notifier: NotifierFunc(logNotice),
		sortKey:  types.SortByScore,
		results:  []types.SearchResult{},
		outcome:  OutcomeNone,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func logNotice(n Notice) {
	slog.Warn("notice", slog.String("level", string(n.Level)), slog.String("message", n.Message))
}

// Mode returns the active mode.
func (c *Controller) Mode() types.SearchMode {
	return c.modes.Active()
}

// Profile returns the active mode's presentation profile.
func (c *Controller) Profile() mode.Profile {
	return c.modes.Profile()
}

// SetMode switches the active mode. Text and image are kept.
func (c *Controller) SetMode(m types.SearchMode) error {
	if err := c.modes.Set(m); err != nil {
		return err
	}
	c.publish(c.Snapshot())
	return nil
}

// SetTextQuery replaces the text query.
func (c *Controller) SetTextQuery(q string) {
	c.update(func() { c.textQuery = q })
}

// SetMaxPrice replaces the raw price ceiling.
func (c *Controller) SetMaxPrice(raw string) {
	c.update(func() { c.maxPriceRaw = raw })
}

// SetMinPrice replaces the raw price floor.
func (c *Controller) SetMinPrice(raw string) {
	c.update(func() { c.minPriceRaw = raw })
}

// SetSortKey changes the key used to order the next completed search.
// Results already displayed keep their order.
func (c *Controller) SetSortKey(k types.SortKey) {
	c.update(func() { c.sortKey = k })
}

// SelectImage replaces the selected image. A rejected file keeps the
// previous selection.
func (c *Controller) SelectImage(f *upload.File) error {
	if err := c.uploads.Select(f); err != nil {
		return err
	}
	c.publish(c.Snapshot())
	return nil
}

// ClearImage drops the selected image.
func (c *Controller) ClearImage() error {
	err := c.uploads.Clear()
	c.publish(c.Snapshot())
	return err
}

// Close releases the upload preview.
func (c *Controller) Close() error {
	return c.uploads.Close()
}

// Loading reports whether a search is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// VisibleParsedQuery returns the stored parsed query while the structured
// mode is active.
func (c *Controller) VisibleParsedQuery() *types.ParsedQuery {
	return c.Snapshot().VisibleParsedQuery()
}

// Chips renders the visible parsed query facets.
func (c *Controller) Chips() []string {
	return c.VisibleParsedQuery().Chips()
}

// Submit runs one search with the current inputs.
//
// It returns ErrBusy while a search is in flight, a *mode.ValidationError
// when the active mode's required input is missing, and an error wrapping
// ErrSearchFailed when the call fails. Every failure raises a notice and
// leaves the session idle.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrBusy
	}

	m := c.modes.Active()
	file := c.uploads.File()
	if err := mode.Validate(m, file != nil, c.textQuery != ""); err != nil {
		c.outcome = OutcomeBlocked
		c.lastErr = err.Error()
		snap := c.snapshotLocked()
		c.mu.Unlock()

		var verr *mode.ValidationError
		if errors.As(err, &verr) {
			c.notifier.Notify(Notice{Level: NoticeWarning, Message: verr.Notice})
		}
		c.publish(snap)
		return err
	}

	req := request.Build(m, c.textQuery, c.maxPriceRaw, file, request.WithMinPrice(c.minPriceRaw))
	c.loading = true
	c.results = []types.SearchResult{}
	c.parsedQuery = nil
	c.lastErr = ""
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)

	defer func() {
		c.mu.Lock()
		c.loading = false
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.publish(snap)
	}()

	start := time.Now()
	resp, err := c.searcher.Search(ctx, req)
	if err != nil {
		c.mu.Lock()
		c.outcome = OutcomeError
		c.lastErr = err.Error()
		c.mu.Unlock()

		slog.Warn("search failed",
			slog.String("mode", string(m)),
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		c.notifier.Notify(Notice{Level: NoticeError, Message: BackendErrorNotice})
		return fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	if resp == nil {
		resp = &types.SearchResponse{}
	}

	c.mu.Lock()
	c.results = rank.Order(resp.Results, c.sortKey)
	if resp.ParsedQuery != nil {
		c.parsedQuery = resp.ParsedQuery
	}
	c.outcome = OutcomeSuccess
	n := len(c.results)
	c.mu.Unlock()

	slog.Debug("search completed",
		slog.String("mode", string(m)),
		slog.Int("results", n),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}

func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(snap)
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		Mode:        c.modes.Active(),
		TextQuery:   c.textQuery,
		MaxPriceRaw: c.maxPriceRaw,
		MinPriceRaw: c.minPriceRaw,
		SortKey:     c.sortKey,
		Loading:     c.loading,
		Results:     slices.Clone(c.results),
		LastOutcome: c.outcome,
		LastError:   c.lastErr,
	}
	if c.parsedQuery != nil {
		pq := *c.parsedQuery
		s.ParsedQuery = &pq
	}
	if f := c.uploads.File(); f != nil {
		s.HasImage = true
		s.ImageName = f.Name
	}
	if p := c.uploads.Preview(); p != nil {
		s.PreviewPath = p.Path
	}
	return s
}

func (c *Controller) publish(s Snapshot) {
	for _, o := range c.observers {
		o(s)
	}
}
