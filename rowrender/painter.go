// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: rowrender/painter.go
// Summary: Clipped, translated drawing surface over a tcell screen.

package rowrender

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Rect is a screen rectangle.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

func (r Rect) intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.W, o.X+o.W), min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Canvas is the cell sink a Painter draws into. tcell.Screen satisfies it.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
}

// Painter draws in coordinates relative to its origin and drops every cell
// outside its clip rectangle.
type Painter struct {
	canvas Canvas
	origin Rect // area the coordinates are relative to
	clip   Rect // screen area that may be written
}

// NewPainter returns a painter covering rect.
func NewPainter(canvas Canvas, rect Rect) Painter {
	return Painter{canvas: canvas, origin: rect, clip: rect}
}

// Sub returns a painter for the area at (x, y) of size w×h relative to p.
// The area may extend beyond p; cells outside p stay clipped.
func (p Painter) Sub(x, y, w, h int) Painter {
	origin := Rect{X: p.origin.X + x, Y: p.origin.Y + y, W: w, H: h}
	return Painter{canvas: p.canvas, origin: origin, clip: p.clip.intersect(origin)}
}

// Width returns the width of the painter's area.
func (p Painter) Width() int { return p.origin.W }

// Height returns the height of the painter's area.
func (p Painter) Height() int { return p.origin.H }

// SetCell writes one cell.
func (p Painter) SetCell(x, y int, ch rune, style tcell.Style) {
	sx, sy := p.origin.X+x, p.origin.Y+y
	if p.canvas == nil || !p.clip.Contains(sx, sy) {
		return
	}
	p.canvas.SetContent(sx, sy, ch, nil, style)
}

// Fill paints the whole area with ch.
func (p Painter) Fill(ch rune, style tcell.Style) {
	for y := range p.origin.H {
		for x := range p.origin.W {
			p.SetCell(x, y, ch, style)
		}
	}
}

// DrawText writes s on line y starting at column x and returns the column
// after the last cell written. Wide runes take two columns and are dropped
// when only one column is left.
func (p Painter) DrawText(x, y int, s string, style tcell.Style) int {
	for _, r := range s {
		if x >= p.origin.W {
			break
		}
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > p.origin.W {
			break
		}
		p.SetCell(x, y, r, style)
		x += w
	}
	return x
}
