// Package upload owns the selected query image and its preview handle.
//
// A file picker and a drag-and-drop zone are both thin adapters that end in
// Manager.Select. Every replacement or discard of a selection releases the
// superseded preview synchronously.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/usestring/rugsearch/pkg/types"
)

// DefaultMaxEdge is the default longest preview side in pixels.
const DefaultMaxEdge = 320

// ErrNotImage is returned when selected content is not an image.
var ErrNotImage = errors.New("selected file is not an image")

var errUndecodable = errors.New("no decoder for image")

// File is a selected image.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadFile loads a file from disk, as a file picker would.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return FromBytes(filepath.Base(path), data), nil
}

// FromBytes wraps dropped content. The content type is sniffed from data.
func FromBytes(name string, data []byte) *File {
	return &File{
		Name:        name,
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}
}

// Part converts the file into the request's image part.
func (f *File) Part() *types.ImagePart {
	if f == nil {
		return nil
	}
	return &types.ImagePart{Filename: f.Name, ContentType: f.ContentType, Data: f.Data}
}

// Preview is a renderable thumbnail of the selected file, stored on disk.
type Preview struct {
	Path   string
	Width  int
	Height int

	once sync.Once
}

// Release removes the preview from disk. It is idempotent and safe on nil.
func (p *Preview) Release() error {
	if p == nil {
		return nil
	}
	var err error
	p.once.Do(func() {
		if rmErr := os.Remove(p.Path); rmErr != nil && !os.IsNotExist(rmErr) {
			err = fmt.Errorf("releasing preview: %w", rmErr)
		}
	})
	return err
}

// Manager holds at most one selected file and its preview.
type Manager struct {
	dir     string
	maxEdge int

	mu      sync.Mutex
	file    *File
	preview *Preview
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxEdge sets the longest preview side in pixels.
func WithMaxEdge(px int) Option {
	return func(m *Manager) {
		if px > 0 {
			m.maxEdge = px
		}
	}
}

// NewManager creates a manager that writes previews into dir.
// An empty dir uses a rugsearch directory under the system temp dir.
func NewManager(dir string, opts ...Option) *Manager {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "rugsearch-previews")
	}
	m := &Manager{dir: dir, maxEdge: DefaultMaxEdge}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Select stores f and derives its preview, then releases the preview of the
// file it replaces. A nil f is ignored. Content that is not an image is
// rejected and the previous selection is kept. An image in a format with no
// registered decoder (HEIC, say) is still selected, with a nil preview.
func (m *Manager) Select(f *File) error {
	if f == nil {
		return nil
	}
	if !strings.HasPrefix(f.ContentType, "image/") {
		return fmt.Errorf("%w: %s (%s)", ErrNotImage, f.Name, f.ContentType)
	}

	preview, err := m.renderPreview(f)
	if errors.Is(err, errUndecodable) {
		slog.Warn("image selected without preview",
			slog.String("name", f.Name),
			slog.String("content_type", f.ContentType),
			slog.String("error", err.Error()),
		)
		preview, err = nil, nil
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	old := m.preview
	m.file = f
	m.preview = preview
	m.mu.Unlock()

	if preview != nil {
		slog.Debug("image selected",
			slog.String("name", f.Name),
			slog.String("content_type", f.ContentType),
			slog.String("preview", preview.Path),
		)
	}
	return old.Release()
}

// Clear drops the selection and releases its preview.
func (m *Manager) Clear() error {
	m.mu.Lock()
	old := m.preview
	m.file = nil
	m.preview = nil
	m.mu.Unlock()
	return old.Release()
}

// Close releases the preview on teardown.
func (m *Manager) Close() error {
	return m.Clear()
}

// File returns the selected file, or nil.
func (m *Manager) File() *File {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.file
}

// Preview returns the current preview, or nil.
func (m *Manager) Preview() *Preview {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.preview
}

// HasFile reports whether a file is selected.
func (m *Manager) HasFile() bool {
	return m.File() != nil
}

func (m *Manager) renderPreview(f *File) (*Preview, error) {
	src, _, err := image.Decode(bytes.NewReader(f.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", errUndecodable, f.Name, err)
	}

	w, h := fit(src.Bounds().Dx(), src.Bounds().Dy(), m.maxEdge)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating preview dir: %w", err)
	}
	out, err := os.CreateTemp(m.dir, "preview-*.png")
	if err != nil {
		return nil, fmt.Errorf("creating preview: %w", err)
	}
	if err := png.Encode(out, dst); err != nil {
		out.Close()
		os.Remove(out.Name())
		return nil, fmt.Errorf("encoding preview: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return nil, fmt.Errorf("writing preview: %w", err)
	}
	return &Preview{Path: out.Name(), Width: w, Height: h}, nil
}

// fit scales w x h down so the longest side is at most maxEdge.
func fit(w, h, maxEdge int) (int, int) {
	if w <= maxEdge && h <= maxEdge {
		return max(w, 1), max(h, 1)
	}
	if w >= h {
		return maxEdge, max(h*maxEdge/w, 1)
	}
	return max(w*maxEdge/h, 1), maxEdge
}
