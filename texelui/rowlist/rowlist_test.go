// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package rowlist

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelscroll/rowrender"
	"github.com/framegrace/texelscroll/scroller"
)

// manualTimers collects settle timers until the test fires them.
type manualTimers struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (m *manualTimers) AfterFunc(d time.Duration, f func()) scroller.Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{f: f}
	m.pending = append(m.pending, t)
	return t
}

func (m *manualTimers) fire() {
	m.mu.Lock()
	due := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, t := range due {
		if !t.stopped {
			t.stopped = true
			t.f()
		}
	}
}

func labelSource() scroller.Source[string] {
	return scroller.SourceFunc[string](func(ctx context.Context, start, count int) scroller.Fetch[string] {
		rows := make([]string, count)
		for i := range rows {
			rows[i] = fmt.Sprintf("row %d", start+i)
		}
		return scroller.Ready(rows)
	})
}

func newList(t *testing.T, edit func(*scroller.Config[string])) (*RowList[string], *manualTimers) {
	t.Helper()
	timers := &manualTimers{}
	cfg := scroller.Config[string]{
		Source:         labelSource(),
		RowCount:       scroller.FixedCount(100),
		RowHeight:      scroller.FixedHeight(1),
		ViewportHeight: 5,
		AfterFunc:      timers.AfterFunc,
		Logger:         t.Logf,
	}
	if edit != nil {
		edit(&cfg)
	}
	l, err := New(cfg, 10, Options[string]{
		Renderer: rowrender.TextRenderer[string]{Text: func(s string) string { return s }},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(l.Close)
	return l, timers
}

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

func line(screen tcell.Screen, y, w int) string {
	var sb strings.Builder
	for x := range w {
		ch, _, _, _ := screen.GetContent(x, y)
		sb.WriteRune(ch)
	}
	return sb.String()
}

func TestRowList_DrawsFirstRows(t *testing.T) {
	l, _ := newList(t, nil)
	screen := newScreen(t, 10, 5)
	l.Draw(screen)

	for y := range 4 {
		want := fmt.Sprintf("row %d", y)
		if got := strings.TrimRight(line(screen, y, 9), " "); got != want {
			t.Fatalf("line %d = %q, want %q", y, got, want)
		}
	}
	if ch, _, _, _ := screen.GetContent(9, 4); ch != DefaultDownGlyph {
		t.Fatalf("down indicator = %q", ch)
	}
	if ch, _, _, _ := screen.GetContent(9, 0); ch == DefaultUpGlyph {
		t.Fatal("up indicator drawn at the top of the content")
	}
}

func TestRowList_KeyScrollSettles(t *testing.T) {
	l, timers := newList(t, nil)
	screen := newScreen(t, 10, 5)

	if !l.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)) {
		t.Fatal("KeyDown not handled")
	}
	if l.Offset() != 1 {
		t.Fatalf("offset = %d", l.Offset())
	}
	f := l.Frame()
	if !f.Tracking || !f.Rows[4].Blank {
		t.Fatalf("expected a tracking frame with an unloaded last row: %+v", f.Rows)
	}

	timers.fire()
	f = l.Frame()
	if f.Tracking || f.Range.RowOffset != 1 {
		t.Fatalf("settled frame = %+v", f.Range)
	}
	for _, r := range f.Rows {
		if r.Blank {
			t.Fatalf("row %d still blank after settle", r.Index)
		}
	}

	l.Draw(screen)
	if got := strings.TrimRight(line(screen, 0, 9), " "); got != "row 1" {
		t.Fatalf("line 0 = %q", got)
	}
	if ch, _, _, _ := screen.GetContent(9, 0); ch != DefaultUpGlyph {
		t.Fatalf("up indicator = %q", ch)
	}
}

func TestRowList_EndClampsToLastPage(t *testing.T) {
	l, timers := newList(t, nil)
	l.HandleKey(tcell.NewEventKey(tcell.KeyEnd, 0, tcell.ModNone))
	timers.fire()
	if l.Offset() != 95 {
		t.Fatalf("offset = %d, want 95", l.Offset())
	}
	if got := l.Frame().Range; got.RowOffset != 95 || got.ViewRowCount != 5 {
		t.Fatalf("range = %+v", got)
	}

	l.HandleKey(tcell.NewEventKey(tcell.KeyPgDn, 0, tcell.ModNone))
	if l.Offset() != 95 {
		t.Fatalf("PgDn past the end moved to %d", l.Offset())
	}
	l.HandleKey(tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone))
	if l.Offset() != 0 {
		t.Fatalf("Home moved to %d", l.Offset())
	}
	if l.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)) {
		t.Fatal("rune key reported as handled")
	}
}

func TestRowList_WheelScroll(t *testing.T) {
	l, _ := newList(t, nil)
	if !l.HandleMouse(tcell.NewEventMouse(2, 2, tcell.WheelDown, tcell.ModNone)) {
		t.Fatal("wheel not handled")
	}
	if l.Offset() != defaultWheelStep {
		t.Fatalf("offset = %d", l.Offset())
	}
	if l.HandleMouse(tcell.NewEventMouse(50, 50, tcell.WheelDown, tcell.ModNone)) {
		t.Fatal("wheel outside the widget handled")
	}
}

func TestRowList_RefreshNotifier(t *testing.T) {
	l, _ := newList(t, nil)
	ch := make(chan bool, 1)
	l.SetRefreshNotifier(ch)
	l.ScrollBy(2)
	select {
	case <-ch:
	default:
		t.Fatal("no refresh signal after scrolling")
	}
}

func TestRowList_ScrollToEchoesThroughWidget(t *testing.T) {
	l, timers := newList(t, nil)
	l.ScrollTo(50)
	if l.Offset() != 50 {
		t.Fatalf("offset = %d", l.Offset())
	}
	if got := l.Frame().Range.RowOffset; got != 50 {
		t.Fatalf("RowOffset = %d", got)
	}
	if len(timers.pending) != 0 {
		t.Fatal("echo from ScrollTo armed a settle timer")
	}
}

func TestRowList_TranslatePositioning(t *testing.T) {
	l, timers := newList(t, func(c *scroller.Config[string]) {
		c.RowHeight = scroller.FixedHeight(2)
		c.Positioning = scroller.PositionTranslate
	})
	screen := newScreen(t, 10, 5)
	l.ScrollBy(1)
	timers.fire()
	l.Draw(screen)

	if got := strings.TrimSpace(line(screen, 0, 9)); got != "" {
		t.Fatalf("line 0 = %q, want the gap of the scrolled-off row", got)
	}
	if got := strings.TrimRight(line(screen, 1, 9), " "); got != "row 1" {
		t.Fatalf("line 1 = %q", got)
	}
}

func TestRowList_BlankRowsWhileLoading(t *testing.T) {
	never := scroller.SourceFunc[string](func(ctx context.Context, start, count int) scroller.Fetch[string] {
		return scroller.Async(make(chan scroller.Resolution[string]))
	})
	l, _ := newList(t, func(c *scroller.Config[string]) { c.Source = never })
	screen := newScreen(t, 10, 5)
	l.Draw(screen)
	if ch, _, _, _ := screen.GetContent(3, 0); ch != rowrender.DefaultBlankGlyph {
		t.Fatalf("cell = %q, want blank glyph", ch)
	}
}

func TestRowList_BlankHeight(t *testing.T) {
	never := scroller.SourceFunc[string](func(ctx context.Context, start, count int) scroller.Fetch[string] {
		return scroller.Async(make(chan scroller.Resolution[string]))
	})
	timers := &manualTimers{}
	l, err := New(scroller.Config[string]{
		Source:         never,
		RowCount:       scroller.FixedCount(10),
		RowHeight:      scroller.FixedHeight(3),
		ViewportHeight: 5,
		AfterFunc:      timers.AfterFunc,
		Logger:         t.Logf,
	}, 10, Options[string]{
		Blank:          rowrender.BlankRenderer{Height: scroller.FixedHeight(1)},
		HideIndicators: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(l.Close)

	screen := newScreen(t, 10, 5)
	l.Draw(screen)
	for y, want := range []rune{rowrender.DefaultBlankGlyph, ' ', ' ', rowrender.DefaultBlankGlyph, ' '} {
		if ch, _, _, _ := screen.GetContent(3, y); ch != want {
			t.Fatalf("line %d = %q, want %q", y, ch, want)
		}
	}
}

func TestRowList_Resize(t *testing.T) {
	l, _ := newList(t, nil)
	l.SetScrollOffset(95)
	l.Resize(10, 20)
	if l.Offset() != 80 {
		t.Fatalf("offset after grow = %d, want 80", l.Offset())
	}
	if got := l.Frame().Range.ViewRowCount; got != 20 {
		t.Fatalf("visible rows = %d", got)
	}
}
