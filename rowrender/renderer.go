// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: rowrender/renderer.go
// Summary: Row renderers for loaded rows and blank placeholders.

package rowrender

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelscroll/scroller"
)

// Renderer draws one loaded row into a painter sized to the row.
type Renderer[T any] interface {
	Render(p Painter, row scroller.Row[T])
}

// RendererFunc adapts a function to Renderer.
type RendererFunc[T any] func(p Painter, row scroller.Row[T])

// Render calls f.
func (f RendererFunc[T]) Render(p Painter, row scroller.Row[T]) { f(p, row) }

// TextRenderer draws the text of a row, one line per cell of height.
type TextRenderer[T any] struct {
	Text  func(T) string
	Style tcell.Style
}

// Render implements Renderer.
func (r TextRenderer[T]) Render(p Painter, row scroller.Row[T]) {
	p.Fill(' ', r.Style)
	if r.Text == nil {
		return
	}
	for y, line := range splitLines(r.Text(row.Data), p.Height()) {
		p.DrawText(0, y, expandTabs(line), r.Style)
	}
}

// BlankRenderer draws rows whose payload has not loaded yet.
type BlankRenderer struct {
	Style tcell.Style
	// Glyph fills the row. Zero draws '░'.
	Glyph rune
	// Height is the placeholder height per row, capped at the row's own
	// height. Unset fills the whole row.
	Height scroller.Height
}

// DefaultBlankGlyph is the placeholder fill.
const DefaultBlankGlyph = '░'

// RenderBlank draws the placeholder for row on the painter's area.
func (b BlankRenderer) RenderBlank(p Painter, row int) {
	glyph := b.Glyph
	if glyph == 0 {
		glyph = DefaultBlankGlyph
	}
	style := b.Style
	if style == tcell.StyleDefault {
		style = style.Dim(true)
	}
	p.Fill(' ', style)

	h := p.Height()
	if b.Height.IsSet() {
		h = min(max(b.Height.Resolve(row), 0), h)
	}
	// Leave a one-cell margin so adjacent blanks read as separate rows.
	for y := range h {
		for x := 1; x < p.Width()-1; x++ {
			p.SetCell(x, y, glyph, style)
		}
	}
}

func splitLines(s string, maxLines int) []string {
	if maxLines <= 0 {
		return nil
	}
	lines := strings.SplitN(s, "\n", maxLines+1)
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}

const tabWidth = 4

func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
