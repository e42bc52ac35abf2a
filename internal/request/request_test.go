package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/rugsearch/internal/mode"
	"github.com/usestring/rugsearch/internal/upload"
	"github.com/usestring/rugsearch/pkg/types"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"", 0, false},
		{"450", 450, true},
		{"abc", 0, false},
		{"-10", -10, true},
		{"2000", 2000, true},
		{"  12.5", 12.5, true},
		{"450abc", 450, true},
		{".5", 0.5, true},
		{"1e3", 1000, true},
		{"+7", 7, true},
		{"3.", 3, true},
		{"Infinity", 0, false},
		{"NaN", 0, false},
		{" ", 0, false},
		{"-", 0, false},
		{"1e999", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParsePrice(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestBuild_MaxPriceInclusion(t *testing.T) {
	assert.Nil(t, Build(types.ModeTextOnly, "rug", "", nil).MaxPrice)
	assert.Nil(t, Build(types.ModeTextOnly, "rug", "abc", nil).MaxPrice)

	req := Build(types.ModeTextOnly, "rug", "450", nil)
	require.NotNil(t, req.MaxPrice)
	assert.Equal(t, 450.0, *req.MaxPrice)

	req = Build(types.ModeTextOnly, "rug", "-10", nil)
	require.NotNil(t, req.MaxPrice)
	assert.Equal(t, -10.0, *req.MaxPrice)
}

func TestBuild_TopKIsConstant(t *testing.T) {
	img := &upload.File{Name: "a.png", ContentType: "image/png", Data: []byte{1}}
	for _, m := range mode.Modes() {
		for _, text := range []string{"", "beige rug"} {
			for _, price := range []string{"", "100", "x"} {
				assert.Equal(t, 8, Build(m, text, price, img).TopK)
				assert.Equal(t, 8, Build(m, text, price, nil).TopK)
			}
		}
	}
}

func TestBuild_AlwaysSendsSelectedImage(t *testing.T) {
	img := &upload.File{Name: "room.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}}

	req := Build(types.ModeStructuredText, "8x10 beige traditional rug", "", img)
	require.NotNil(t, req.Image)
	assert.Equal(t, "room.jpg", req.Image.Filename)
	assert.Equal(t, types.ModeStructuredText, req.ModelType)
	assert.Equal(t, "8x10 beige traditional rug", req.TextQuery)

	assert.Nil(t, Build(types.ModeImageText, "", "", nil).Image)
}

func TestBuild_TextDefaultsToEmpty(t *testing.T) {
	req := Build(types.ModeImageText, "", "", nil)
	assert.Equal(t, "", req.TextQuery)
}

func TestBuild_MinPrice(t *testing.T) {
	req := Build(types.ModeTextOnly, "rug", "2000", nil, WithMinPrice("500"))
	require.NotNil(t, req.MinPrice)
	assert.Equal(t, 500.0, *req.MinPrice)

	req = Build(types.ModeTextOnly, "rug", "2000", nil, WithMinPrice("cheap"))
	assert.Nil(t, req.MinPrice)
}
