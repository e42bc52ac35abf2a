// Package mode owns the active search mode and the per-mode input rules.
//
// Every mode-conditional behaviour (which inputs are shown, which are
// required, which labels and notices appear) reads the single profile table
// below rather than branching on the mode.
package mode

import (
	"fmt"
	"strings"
	"sync"

	"github.com/usestring/rugsearch/pkg/types"
)

// Input identifies a user input a mode can require.
type Input string

// Inputs a mode can require.
const (
	InputImage Input = "image"
	InputText  Input = "text"
)

// Profile describes how a mode presents and validates its inputs.
type Profile struct {
	Mode             types.SearchMode
	Label            string // Mode selector label
	Badge            string // Results header badge
	TextLabel        string
	TextPlaceholder  string
	ShowsUpload      bool
	Requires         Input
	ShowsParsedQuery bool
	MissingNotice    string // Blocking notice when Requires is absent
}

var profiles = map[types.SearchMode]Profile{
	types.ModeImageText: {
		Mode:            types.ModeImageText,
		Label:           "CLIP: Image + Text",
		Badge:           "CLIP",
		TextLabel:       "Refine with text (optional)",
		TextPlaceholder: "e.g. modern neutral, traditional persian...",
		ShowsUpload:     true,
		Requires:        InputImage,
		MissingNotice:   "Please upload a room image for CLIP search",
	},
	types.ModeTextOnly: {
		Mode:            types.ModeTextOnly,
		Label:           "SBERT: Text only",
		Badge:           "SBERT",
		TextLabel:       "Describe what you want",
		TextPlaceholder: "e.g. bohemian vintage persian, minimalist wool...",
		Requires:        InputText,
		MissingNotice:   "Please enter a text query",
	},
	types.ModeStructuredText: {
		Mode:             types.ModeStructuredText,
		Label:            "Structured: Parsed Query",
		Badge:            "STRUCTURED",
		TextLabel:        "Structured query (e.g. 8x10 beige traditional rug)",
		TextPlaceholder:  "e.g. round grey modern rug, runner 2x10 navy rug...",
		Requires:         InputText,
		ShowsParsedQuery: true,
		MissingNotice:    "Please enter a text query",
	},
}

// displayOrder is the order modes appear in the selector.
var displayOrder = []types.SearchMode{
	types.ModeImageText,
	types.ModeTextOnly,
	types.ModeStructuredText,
}

var aliases = map[string]types.SearchMode{
	"clip":       types.ModeImageText,
	"image":      types.ModeImageText,
	"image-text": types.ModeImageText,
	"sbert":      types.ModeTextOnly,
	"text":       types.ModeTextOnly,
	"text-only":  types.ModeTextOnly,
	"structured": types.ModeStructuredText,
}

// Modes returns the modes in display order.
func Modes() []types.SearchMode {
	out := make([]types.SearchMode, len(displayOrder))
	copy(out, displayOrder)
	return out
}

// Profiles returns the profile of every mode in display order.
func Profiles() []Profile {
	out := make([]Profile, 0, len(displayOrder))
	for _, m := range displayOrder {
		out = append(out, profiles[m])
	}
	return out
}

// ProfileFor returns the profile of m.
func ProfileFor(m types.SearchMode) (Profile, bool) {
	p, ok := profiles[m]
	return p, ok
}

// Parse resolves a mode from its wire name or an alias (case-insensitive).
func Parse(s string) (types.SearchMode, error) {
	if m, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return m, nil
	}
	return "", fmt.Errorf("unknown search mode %q (use clip, sbert, or structured)", s)
}

// ValidationError reports a missing required input.
type ValidationError struct {
	Mode    types.SearchMode
	Missing Input
	Notice  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s search requires %s input: %s", e.Mode, e.Missing, e.Notice)
}

// CanSubmit reports whether m's required input is present.
// Unknown modes can never submit.
func CanSubmit(m types.SearchMode, hasImage, hasText bool) bool {
	return Validate(m, hasImage, hasText) == nil
}

// Validate returns a *ValidationError when m's required input is absent.
func Validate(m types.SearchMode, hasImage, hasText bool) error {
	p, ok := profiles[m]
	if !ok {
		return fmt.Errorf("unknown search mode %q", m)
	}
	switch p.Requires {
	case InputImage:
		if !hasImage {
			return &ValidationError{Mode: m, Missing: InputImage, Notice: p.MissingNotice}
		}
	case InputText:
		if !hasText {
			return &ValidationError{Mode: m, Missing: InputText, Notice: p.MissingNotice}
		}
	}
	return nil
}

// Controller holds the active mode. Switching modes never touches other inputs.
type Controller struct {
	mu     sync.RWMutex
	active types.SearchMode
}

// NewController returns a controller with initial as the active mode,
// falling back to ModeImageText when initial is not a known mode.
func NewController(initial types.SearchMode) *Controller {
	if !initial.Valid() {
		initial = types.ModeImageText
	}
	return &Controller{active: initial}
}

// Active returns the active mode.
func (c *Controller) Active() types.SearchMode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Profile returns the active mode's profile.
func (c *Controller) Profile() Profile {
	return profiles[c.Active()]
}

// Set makes m the active mode. Unknown modes are rejected and leave the
// active mode unchanged.
func (c *Controller) Set(m types.SearchMode) error {
	if !m.Valid() {
		return fmt.Errorf("unknown search mode %q", m)
	}
	c.mu.Lock()
	c.active = m
	c.mu.Unlock()
	return nil
}
