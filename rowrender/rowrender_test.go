// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package rowrender

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelscroll/scroller"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(w, h)
	screen.Clear()
	return screen
}

func rowText(screen tcell.Screen, y, w int) string {
	var sb strings.Builder
	for x := range w {
		ch, _, _, _ := screen.GetContent(x, y)
		sb.WriteRune(ch)
	}
	return sb.String()
}

func TestPainter_ClipsToSub(t *testing.T) {
	screen := newScreen(t, 10, 4)
	p := NewPainter(screen, Rect{X: 0, Y: 0, W: 10, H: 4})
	sub := p.Sub(2, -1, 5, 3) // one line above the painter

	sub.Fill('#', tcell.StyleDefault)

	if got := rowText(screen, 0, 10); got != "  #####   " {
		t.Fatalf("line 0 = %q", got)
	}
	if got := rowText(screen, 1, 10); got != "  #####   " {
		t.Fatalf("line 1 = %q", got)
	}
	if got := rowText(screen, 2, 10); got != "          " {
		t.Fatalf("line 2 = %q", got)
	}
}

func TestPainter_DrawTextWideRunes(t *testing.T) {
	screen := newScreen(t, 5, 1)
	p := NewPainter(screen, Rect{W: 5, H: 1})
	end := p.DrawText(0, 0, "a世界b", tcell.StyleDefault)
	if end != 5 {
		t.Fatalf("end column = %d, want 5", end)
	}
	if ch, _, _, _ := screen.GetContent(1, 0); ch != '世' {
		t.Fatalf("cell 1 = %q", ch)
	}

	screen.Clear()
	end = p.DrawText(0, 0, "abcd世", tcell.StyleDefault)
	if end != 4 {
		t.Fatalf("wide rune at the edge: end = %d, want 4", end)
	}
}

func TestTextRenderer_MultiLineRow(t *testing.T) {
	screen := newScreen(t, 8, 3)
	p := NewPainter(screen, Rect{W: 8, H: 3})
	r := TextRenderer[string]{Text: func(s string) string { return s }}

	r.Render(p.Sub(0, 0, 8, 2), scroller.Row[string]{Index: 0, Height: 2, Data: "one\ntwo\nthree"})

	if got := rowText(screen, 0, 8); got != "one     " {
		t.Fatalf("line 0 = %q", got)
	}
	if got := rowText(screen, 1, 8); got != "two     " {
		t.Fatalf("line 1 = %q", got)
	}
	if got := rowText(screen, 2, 8); strings.Contains(got, "three") {
		t.Fatalf("row overflowed its height: %q", got)
	}
}

func TestBlankRenderer(t *testing.T) {
	screen := newScreen(t, 5, 1)
	p := NewPainter(screen, Rect{W: 5, H: 1})
	BlankRenderer{}.RenderBlank(p, 0)
	if got := rowText(screen, 0, 5); got != " ░░░ " {
		t.Fatalf("blank = %q", got)
	}
	_, _, style, _ := screen.GetContent(2, 0)
	if _, _, attr := style.Decompose(); attr&tcell.AttrDim == 0 {
		t.Fatal("blank row is not dimmed")
	}
}

func TestBlankRenderer_Height(t *testing.T) {
	screen := newScreen(t, 5, 4)
	p := NewPainter(screen, Rect{W: 5, H: 4})
	b := BlankRenderer{Height: scroller.ComputedHeight(func(row int) int { return row })}
	b.RenderBlank(p, 2)
	for y, want := range []string{" ░░░ ", " ░░░ ", "     ", "     "} {
		if got := rowText(screen, y, 5); got != want {
			t.Fatalf("line %d = %q, want %q", y, got, want)
		}
	}

	screen.Clear()
	b.RenderBlank(p, 9)
	if got := rowText(screen, 3, 5); got != " ░░░ " {
		t.Fatalf("height above the row was not capped: line 3 = %q", got)
	}
}

func TestHighlighter_LexerSelection(t *testing.T) {
	h := NewHighlighter("go", "", "")
	if h.LexerName() != "Go" {
		t.Fatalf("lexer = %q", h.LexerName())
	}
	h = NewHighlighter("no-such-lexer", "", "no-such-style")
	if h.LexerName() == "" {
		t.Fatal("fallback lexer has no name")
	}
}

func TestHighlighter_SpansCoverLine(t *testing.T) {
	h := NewHighlighter("go", "", "monokai")
	line := `func main() { fmt.Println("hi") }`

	spans := h.Spans(line)
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	if sb.String() != line {
		t.Fatalf("spans join to %q", sb.String())
	}

	distinct := map[tcell.Style]bool{}
	for _, s := range spans {
		distinct[s.Style] = true
	}
	if len(distinct) < 2 {
		t.Fatalf("expected several token styles, got %d", len(distinct))
	}

	again := h.Spans(line)
	if len(again) != len(spans) {
		t.Fatal("cached spans differ")
	}
	h.Reset()
}

func TestHighlightRenderer_DrawsText(t *testing.T) {
	screen := newScreen(t, 20, 1)
	p := NewPainter(screen, Rect{W: 20, H: 1})
	r := HighlightRenderer[string]{
		Text:        func(s string) string { return s },
		Highlighter: NewHighlighter("go", "", ""),
	}
	r.Render(p, scroller.Row[string]{Height: 1, Data: "x := 1"})
	if got := strings.TrimRight(rowText(screen, 0, 20), " "); got != "x := 1" {
		t.Fatalf("rendered %q", got)
	}
}
