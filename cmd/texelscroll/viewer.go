// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelscroll/viewer.go
// Summary: Full-screen devshell app: a row list above a one-line status bar.

package main

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelscroll/rowrender"
	"github.com/framegrace/texelscroll/scroller"
	"github.com/framegrace/texelscroll/texelui/rowlist"
)

const statusHeight = 1

var statusStyle = tcell.StyleDefault.Reverse(true)

type viewer[T any] struct {
	title string
	list  *rowlist.RowList[T]

	mu     sync.Mutex
	width  int
	height int
}

func newViewer[T any](title string, cfg scroller.Config[T], width, height int, opts rowlist.Options[T]) (*viewer[T], error) {
	cfg.ViewportHeight = max(height-statusHeight, 1)
	list, err := rowlist.New(cfg, width, opts)
	if err != nil {
		return nil, err
	}
	return &viewer[T]{title: title, list: list, width: width, height: height}, nil
}

func (v *viewer[T]) Resize(cols, rows int) {
	v.mu.Lock()
	v.width, v.height = cols, rows
	v.mu.Unlock()
	v.list.SetPosition(0, 0)
	v.list.Resize(cols, max(rows-statusHeight, 1))
}

func (v *viewer[T]) Draw(screen tcell.Screen) {
	v.list.Draw(screen)

	v.mu.Lock()
	w, h := v.width, v.height
	v.mu.Unlock()
	if h <= statusHeight {
		return
	}
	p := rowrender.NewPainter(screen, rowrender.Rect{Y: h - statusHeight, W: w, H: statusHeight})
	p.Fill(' ', statusStyle)
	p.DrawText(0, 0, v.status(), statusStyle)
}

func (v *viewer[T]) status() string {
	engine := v.list.Engine()
	frame := v.list.Frame()
	stats := engine.Stats()
	rows := engine.Layout().RowCount()
	first := 0
	if rows > 0 {
		first = frame.Range.RowOffset + 1
	}
	return fmt.Sprintf(" %s  row %d/%d  %s  fetches %d/%d",
		v.title, first, rows, engine.TrackerState(), stats.Applied, stats.Issued)
}

func (v *viewer[T]) HandleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyRune && ev.Rune() == 'r' {
		v.list.Engine().Invalidate()
		return true
	}
	return v.list.HandleKey(ev)
}

func (v *viewer[T]) HandleMouse(ev *tcell.EventMouse) bool {
	return v.list.HandleMouse(ev)
}

func (v *viewer[T]) SetRefreshNotifier(ch chan<- bool) {
	v.list.SetRefreshNotifier(ch)
}

// follower is a viewer over a growing source. New rows extend the layout,
// and the view sticks to the bottom while it was already there.
type follower[T any] struct {
	*viewer[T]
	updates <-chan struct{}
	done    <-chan struct{}
	stop    chan struct{}
	once    sync.Once
}

func newFollower[T any](v *viewer[T], updates, done <-chan struct{}) *follower[T] {
	return &follower[T]{viewer: v, updates: updates, done: done, stop: make(chan struct{})}
}

func (f *follower[T]) Run() error {
	for {
		select {
		case <-f.stop:
			return nil
		case <-f.updates:
			f.grow()
		case <-f.done:
			f.grow()
			// Keep the final output on screen until the user quits.
			<-f.stop
			return nil
		}
	}
}

func (f *follower[T]) grow() {
	atBottom := !f.list.State().CanScrollDown()
	if err := f.list.Engine().Relayout(); err != nil {
		return
	}
	if atBottom {
		f.list.SetScrollOffset(f.list.Engine().Layout().TotalHeight())
		return
	}
	f.list.Reclamp()
}

func (f *follower[T]) Stop() {
	f.once.Do(func() { close(f.stop) })
	f.list.Close()
}
