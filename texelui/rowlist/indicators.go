// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texelui/rowlist/indicators.go
// Summary: Scroll indicator rendering for the row list.
// Draws ▲/▼ glyphs when content overflows above or below the viewport.

package rowlist

import (
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelscroll/rowrender"
)

// IndicatorPosition specifies where scroll indicators are rendered.
type IndicatorPosition int

const (
	// IndicatorRight places indicators at the right edge of the viewport (default).
	IndicatorRight IndicatorPosition = iota
	// IndicatorLeft places indicators at the left edge of the viewport.
	IndicatorLeft
)

// Default indicator glyphs.
const (
	DefaultUpGlyph   = '▲'
	DefaultDownGlyph = '▼'
)

// IndicatorConfig configures the appearance of scroll indicators.
type IndicatorConfig struct {
	Position  IndicatorPosition
	Style     tcell.Style
	UpGlyph   rune
	DownGlyph rune
}

// DefaultIndicatorConfig returns a configuration with the standard glyphs.
func DefaultIndicatorConfig(style tcell.Style) IndicatorConfig {
	return IndicatorConfig{
		Position:  IndicatorRight,
		Style:     style,
		UpGlyph:   DefaultUpGlyph,
		DownGlyph: DefaultDownGlyph,
	}
}

// ScrollState is the vertical scroll position of a viewport over content.
type ScrollState struct {
	Offset         int
	ContentHeight  int
	ViewportHeight int
}

// MaxOffset returns the largest offset that still fills the viewport.
func (s ScrollState) MaxOffset() int {
	return max(s.ContentHeight-s.ViewportHeight, 0)
}

// Clamp returns offset limited to [0, MaxOffset].
func (s ScrollState) Clamp(offset int) int {
	return min(max(offset, 0), s.MaxOffset())
}

// CanScrollUp reports whether content lies above the viewport.
func (s ScrollState) CanScrollUp() bool { return s.Offset > 0 }

// CanScrollDown reports whether content lies below the viewport.
func (s ScrollState) CanScrollDown() bool {
	return s.Offset+s.ViewportHeight < s.ContentHeight
}

// DrawIndicators renders scroll indicators on the painter's area.
func DrawIndicators(p rowrender.Painter, state ScrollState, config IndicatorConfig) {
	w, h := p.Width(), p.Height()
	if w <= 0 || h <= 0 {
		return
	}

	x := w - 1
	if config.Position == IndicatorLeft {
		x = 0
	}

	if state.CanScrollUp() {
		glyph := config.UpGlyph
		if glyph == 0 {
			glyph = DefaultUpGlyph
		}
		p.SetCell(x, 0, glyph, config.Style)
	}

	if state.CanScrollDown() {
		glyph := config.DownGlyph
		if glyph == 0 {
			glyph = DefaultDownGlyph
		}
		p.SetCell(x, h-1, glyph, config.Style)
	}
}
