// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texelui/rowlist/rowlist.go
// Summary: Terminal widget hosting a Scroller over a tcell screen.
//
// Architecture:
//
//	RowList owns the scroll offset and acts as the Scroller's Viewport.
//	Input (keys, wheel, resize) changes the offset, which is clamped to the
//	content and reported to the Scroller. The Scroller answers with frames;
//	the widget keeps the latest one and signals the refresh channel so the
//	run loop redraws.
//
//	Draw paints the latest frame. Loaded rows go through the row renderer,
//	rows still waiting for data through the blank renderer.

package rowlist

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelscroll/rowrender"
	"github.com/framegrace/texelscroll/scroller"
)

const defaultWheelStep = 3

// Options configure a RowList.
type Options[T any] struct {
	Renderer rowrender.Renderer[T]
	Blank    rowrender.BlankRenderer
	Style    tcell.Style

	// Indicators overrides the ▲/▼ overflow glyphs. Nil uses the defaults.
	Indicators     *IndicatorConfig
	HideIndicators bool

	// WheelStep is the number of cells one wheel notch scrolls. Zero means 3.
	WheelStep int
}

// RowList is a scrollable list of rows backed by a Scroller.
type RowList[T any] struct {
	mu      sync.Mutex
	rect    rowrender.Rect
	offset  int
	frame   scroller.Frame[T]
	key     frameKey
	notify  chan<- bool
	onFrame func(scroller.Frame[T])

	opts       Options[T]
	indicators IndicatorConfig
	engine     *scroller.Scroller[T]
}

type frameKey struct {
	hash string
	age  int64
}

// New builds the widget and its Scroller. cfg.ViewportHeight sets the initial
// height; cfg.Viewport is replaced by the widget. The first frame is produced
// before New returns.
func New[T any](cfg scroller.Config[T], width int, opts Options[T]) (*RowList[T], error) {
	l := &RowList[T]{
		rect:    rowrender.Rect{W: width, H: cfg.ViewportHeight},
		opts:    opts,
		onFrame: cfg.OnFrame,
		key:     frameKey{hash: cfg.Hash, age: cfg.CacheAge},
	}
	if opts.WheelStep <= 0 {
		l.opts.WheelStep = defaultWheelStep
	}
	if opts.Indicators != nil {
		l.indicators = *opts.Indicators
	} else {
		l.indicators = DefaultIndicatorConfig(opts.Style.Dim(true))
	}

	cfg.Viewport = l
	cfg.OnFrame = l.handleFrame
	engine, err := scroller.New(cfg)
	if err != nil {
		return nil, err
	}
	l.engine = engine
	engine.Mount()
	return l, nil
}

// Engine returns the underlying Scroller.
func (l *RowList[T]) Engine() *scroller.Scroller[T] { return l.engine }

// SetRefreshNotifier registers a channel signalled after every new frame.
func (l *RowList[T]) SetRefreshNotifier(ch chan<- bool) {
	l.mu.Lock()
	l.notify = ch
	l.mu.Unlock()
}

func (l *RowList[T]) handleFrame(f scroller.Frame[T]) {
	l.mu.Lock()
	l.frame = f
	ch := l.notify
	next := l.onFrame
	l.mu.Unlock()

	if ch != nil {
		select {
		case ch <- true:
		default:
		}
	}
	if next != nil {
		next(f)
	}
}

// Frame returns the latest frame.
func (l *RowList[T]) Frame() scroller.Frame[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame
}

// Offset returns the current scroll offset.
func (l *RowList[T]) Offset() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.offset
}

// State returns the scroll state used for clamping and indicators.
func (l *RowList[T]) State() ScrollState {
	total := l.engine.Layout().TotalHeight()
	l.mu.Lock()
	defer l.mu.Unlock()
	return ScrollState{Offset: l.offset, ContentHeight: total, ViewportHeight: l.rect.H}
}

// SetScrollOffset moves the viewport. It implements scroller.Viewport.
func (l *RowList[T]) SetScrollOffset(offset int) {
	total := l.engine.Layout().TotalHeight()
	l.mu.Lock()
	state := ScrollState{ContentHeight: total, ViewportHeight: l.rect.H}
	l.offset = state.Clamp(offset)
	offset = l.offset
	l.mu.Unlock()
	l.engine.HandleScroll(offset)
}

// ScrollBy scrolls by delta cells (positive = down).
func (l *RowList[T]) ScrollBy(delta int) {
	l.SetScrollOffset(l.Offset() + delta)
}

// ScrollTo brings row to the top of the viewport.
func (l *RowList[T]) ScrollTo(row int) {
	l.engine.ScrollTo(row)
}

// Reclamp re-applies the offset after the content changed size.
func (l *RowList[T]) Reclamp() {
	l.SetScrollOffset(l.Offset())
}

// SetPosition moves the widget on screen.
func (l *RowList[T]) SetPosition(x, y int) {
	l.mu.Lock()
	l.rect.X, l.rect.Y = x, y
	l.mu.Unlock()
}

// Resize changes the widget size and the Scroller's viewport.
func (l *RowList[T]) Resize(w, h int) {
	if h <= 0 {
		return
	}
	l.mu.Lock()
	l.rect.W, l.rect.H = w, h
	l.mu.Unlock()
	if err := l.engine.SetViewportHeight(h); err != nil {
		return
	}
	l.Reclamp()
}

// HandleKey scrolls on navigation keys. It returns false for other keys.
func (l *RowList[T]) HandleKey(ev *tcell.EventKey) bool {
	layout := l.engine.Layout()
	offset := l.Offset()
	switch ev.Key() {
	case tcell.KeyDown:
		l.ScrollBy(max(layout.RowHeight(layout.RowAt(offset)), 1))
	case tcell.KeyUp:
		l.ScrollBy(-max(layout.RowHeight(layout.RowAt(offset-1)), 1))
	case tcell.KeyPgDn:
		l.ScrollBy(l.State().ViewportHeight)
	case tcell.KeyPgUp:
		l.ScrollBy(-l.State().ViewportHeight)
	case tcell.KeyHome:
		l.SetScrollOffset(0)
	case tcell.KeyEnd:
		l.SetScrollOffset(layout.TotalHeight())
	default:
		return false
	}
	return true
}

// HandleMouse scrolls on wheel events inside the widget.
func (l *RowList[T]) HandleMouse(ev *tcell.EventMouse) bool {
	x, y := ev.Position()
	l.mu.Lock()
	inside := l.rect.Contains(x, y)
	step := l.opts.WheelStep
	l.mu.Unlock()
	if !inside {
		return false
	}
	switch ev.Buttons() {
	case tcell.WheelUp:
		l.ScrollBy(-step)
		return true
	case tcell.WheelDown:
		l.ScrollBy(step)
		return true
	}
	return false
}

// resetter is implemented by renderers that cache per-row output.
type resetter interface {
	Reset()
}

// Draw paints the latest frame.
func (l *RowList[T]) Draw(canvas rowrender.Canvas) {
	total := l.engine.Layout().TotalHeight()

	l.mu.Lock()
	rect := l.rect
	frame := l.frame
	offset := l.offset
	key := frameKey{hash: frame.Hash, age: frame.CacheAge}
	changed := key != l.key
	l.key = key
	l.mu.Unlock()

	if r, ok := l.opts.Renderer.(resetter); ok && changed {
		r.Reset()
	}

	p := rowrender.NewPainter(canvas, rect)
	p.Fill(' ', l.opts.Style)

	y := 0
	if frame.Positioning == scroller.PositionTranslate {
		y = frame.FirstRowStart - frame.Offset
	}
	for _, row := range frame.Rows {
		if y >= rect.H {
			break
		}
		sub := p.Sub(0, y, rect.W, row.Height)
		if row.Blank || l.opts.Renderer == nil {
			l.opts.Blank.RenderBlank(sub, row.Index)
		} else {
			l.opts.Renderer.Render(sub, row)
		}
		y += row.Height
	}

	if !l.opts.HideIndicators {
		DrawIndicators(p, ScrollState{Offset: offset, ContentHeight: total, ViewportHeight: rect.H}, l.indicators)
	}
}

// Close stops the Scroller.
func (l *RowList[T]) Close() {
	l.engine.Close()
}
