// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: rowrender/highlight.go
// Summary: Chroma-based syntax highlighting for text rows.

package rowrender

import (
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelscroll/scroller"
)

const (
	defaultStyleName = "catppuccin-mocha"
	maxCachedLines   = 4096
)

// Span is a run of text drawn in one style.
type Span struct {
	Text  string
	Style tcell.Style
}

// Highlighter tokenises single lines with a fixed lexer and style.
// Rows are highlighted independently, so constructs spanning lines
// (block comments, heredocs) are only coloured on their first line.
type Highlighter struct {
	lexer chroma.Lexer
	style *chroma.Style
	base  tcell.Style

	mu    sync.Mutex
	cache map[string][]Span
}

// NewHighlighter picks the lexer by name, or by analysing sample when the name
// is empty or unknown. An unknown style name falls back to catppuccin-mocha.
func NewHighlighter(lexerName, sample, styleName string) *Highlighter {
	style := chromaStyle(styleName)
	return &Highlighter{
		lexer: chroma.Coalesce(getLexer(lexerName, sample)),
		style: style,
		base:  baseStyle(style),
		cache: make(map[string][]Span),
	}
}

// LexerName returns the name of the selected lexer.
func (h *Highlighter) LexerName() string {
	return h.lexer.Config().Name
}

// Base returns the style's default text style.
func (h *Highlighter) Base() tcell.Style { return h.base }

// Spans tokenises line. On a lexer error the whole line is one base span.
func (h *Highlighter) Spans(line string) []Span {
	h.mu.Lock()
	if spans, ok := h.cache[line]; ok {
		h.mu.Unlock()
		return spans
	}
	h.mu.Unlock()

	spans := h.tokenise(line)

	h.mu.Lock()
	if len(h.cache) >= maxCachedLines {
		clear(h.cache)
	}
	h.cache[line] = spans
	h.mu.Unlock()
	return spans
}

// Reset drops cached spans.
func (h *Highlighter) Reset() {
	h.mu.Lock()
	clear(h.cache)
	h.mu.Unlock()
}

func (h *Highlighter) tokenise(line string) []Span {
	tokens, err := chroma.Tokenise(h.lexer, nil, line+"\n")
	if err != nil {
		return []Span{{Text: line, Style: h.base}}
	}
	spans := make([]Span, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		text := trimNewline(tok.Value)
		if text == "" {
			continue
		}
		spans = append(spans, Span{Text: text, Style: tokenStyle(h.style.Get(tok.Type), h.base)})
	}
	return spans
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// tokenStyle maps a chroma entry onto the base style.
func tokenStyle(entry chroma.StyleEntry, base tcell.Style) tcell.Style {
	st := base
	if entry.Colour.IsSet() {
		st = st.Foreground(chromaColor(entry.Colour))
	}
	if entry.Bold == chroma.Yes {
		st = st.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		st = st.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		st = st.Underline(true)
	}
	return st
}

func baseStyle(style *chroma.Style) tcell.Style {
	st := tcell.StyleDefault
	if text := style.Get(chroma.Text); text.Colour.IsSet() {
		st = st.Foreground(chromaColor(text.Colour))
	}
	if bg := style.Get(chroma.Background); bg.Background.IsSet() {
		st = st.Background(chromaColor(bg.Background))
	}
	return st
}

func chromaColor(c chroma.Colour) tcell.Color {
	return tcell.NewRGBColor(int32(c.Red()), int32(c.Green()), int32(c.Blue()))
}

// chromaStyle resolves a style name to a Chroma style, falling back to the default.
func chromaStyle(name string) *chroma.Style {
	if name == "" {
		name = defaultStyleName
	}
	if s, ok := styles.Registry[name]; ok {
		return s
	}
	return styles.Get(defaultStyleName)
}

// getLexer returns a Chroma lexer by name, or auto-detects from content.
func getLexer(name, text string) chroma.Lexer {
	if name != "" {
		if l := lexers.Get(name); l != nil {
			return l
		}
	}
	if text != "" {
		if l := lexers.Analyse(text); l != nil {
			return l
		}
	}
	return lexers.Fallback
}

// HighlightRenderer draws a row's text through a Highlighter.
type HighlightRenderer[T any] struct {
	Text        func(T) string
	Highlighter *Highlighter
}

// Render implements Renderer.
func (r HighlightRenderer[T]) Render(p Painter, row scroller.Row[T]) {
	base := r.Highlighter.Base()
	p.Fill(' ', base)
	if r.Text == nil {
		return
	}
	for y, line := range splitLines(r.Text(row.Data), p.Height()) {
		x := 0
		for _, span := range r.Highlighter.Spans(expandTabs(line)) {
			x = p.DrawText(x, y, span.Text, span.Style)
		}
	}
}

// Reset drops the highlighter's cache.
func (r HighlightRenderer[T]) Reset() { r.Highlighter.Reset() }
