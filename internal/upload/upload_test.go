package upload

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 169, B: 110, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(w, h)))
	return buf.Bytes()
}

func TestSelect_CreatesPreview(t *testing.T) {
	m := NewManager(t.TempDir(), WithMaxEdge(100))
	f := FromBytes("room.png", pngBytes(t, 400, 200))
	assert.Equal(t, "image/png", f.ContentType)

	require.NoError(t, m.Select(f))
	assert.True(t, m.HasFile())

	p := m.Preview()
	require.NotNil(t, p)
	assert.FileExists(t, p.Path)
	assert.Equal(t, 100, p.Width)
	assert.Equal(t, 50, p.Height)
}

func TestSelect_ReleasesSupersededPreview(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.Select(FromBytes("a.png", pngBytes(t, 10, 10))))
	first := m.Preview()

	require.NoError(t, m.Select(FromBytes("b.png", pngBytes(t, 20, 20))))
	second := m.Preview()

	assert.NoFileExists(t, first.Path)
	assert.FileExists(t, second.Path)
	assert.Equal(t, "b.png", m.File().Name)
}

func TestSelect_NilIsIgnored(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.Select(FromBytes("a.png", pngBytes(t, 10, 10))))
	require.NoError(t, m.Select(nil))
	assert.Equal(t, "a.png", m.File().Name)
}

func TestSelect_RejectsNonImageAndKeepsPrevious(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.Select(FromBytes("a.png", pngBytes(t, 10, 10))))
	prev := m.Preview()

	err := m.Select(FromBytes("notes.txt", []byte("just some text")))
	assert.ErrorIs(t, err, ErrNotImage)
	assert.Equal(t, "a.png", m.File().Name)
	assert.FileExists(t, prev.Path)
}

func TestSelect_BMPAndTIFF(t *testing.T) {
	var bmpBuf, tiffBuf bytes.Buffer
	require.NoError(t, bmp.Encode(&bmpBuf, solid(10, 10)))
	require.NoError(t, tiff.Encode(&tiffBuf, solid(12, 6), nil))

	tests := []struct {
		name        string
		data        []byte
		contentType string
		width       int
	}{
		{"room.bmp", bmpBuf.Bytes(), "image/bmp", 10},
		{"room.tiff", tiffBuf.Bytes(), "image/tiff", 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(t.TempDir())
			f := FromBytes(tt.name, tt.data)
			assert.Equal(t, tt.contentType, f.ContentType)

			require.NoError(t, m.Select(f))
			assert.Equal(t, tt.name, m.File().Name)
			require.NotNil(t, m.Preview())
			assert.Equal(t, tt.width, m.Preview().Width)
		})
	}
}

func TestSelect_UndecodableImageKeptWithoutPreview(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.Select(FromBytes("a.png", pngBytes(t, 10, 10))))
	prev := m.Preview()

	f := &File{Name: "room.heic", ContentType: "image/heic", Data: []byte("not decodable here")}
	require.NoError(t, m.Select(f))
	assert.True(t, m.HasFile())
	assert.Equal(t, "room.heic", m.File().Name)
	assert.Nil(t, m.Preview())
	assert.NoFileExists(t, prev.Path)
	assert.Equal(t, f.Data, m.File().Part().Data)
}

func TestClear_ReleasesPreview(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.Select(FromBytes("a.png", pngBytes(t, 10, 10))))
	p := m.Preview()

	require.NoError(t, m.Clear())
	assert.False(t, m.HasFile())
	assert.Nil(t, m.Preview())
	assert.NoFileExists(t, p.Path)

	// Clearing again is a no-op.
	assert.NoError(t, m.Clear())
}

func TestClose_ReleasesPreview(t *testing.T) {
	m := NewManager(t.TempDir())
	require.NoError(t, m.Select(FromBytes("a.png", pngBytes(t, 10, 10))))
	p := m.Preview()
	require.NoError(t, m.Close())
	assert.NoFileExists(t, p.Path)
}

func TestPreviewRelease_Idempotent(t *testing.T) {
	var nilPreview *Preview
	assert.NoError(t, nilPreview.Release())

	m := NewManager(t.TempDir())
	require.NoError(t, m.Select(FromBytes("a.png", pngBytes(t, 10, 10))))
	p := m.Preview()
	assert.NoError(t, p.Release())
	assert.NoError(t, p.Release())
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "room.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 4, 4), 0644))

	f, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "room.png", f.Name)
	assert.Equal(t, "image/png", f.ContentType)

	part := f.Part()
	assert.Equal(t, "room.png", part.Filename)
	assert.Equal(t, f.Data, part.Data)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestFit(t *testing.T) {
	w, h := fit(50, 40, 100)
	assert.Equal(t, 50, w)
	assert.Equal(t, 40, h)

	w, h = fit(200, 800, 100)
	assert.Equal(t, 25, w)
	assert.Equal(t, 100, h)
}
