// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: scroller/scroller.go
// Summary: Scroller engine rendering only the visible slice of a huge row list.
//
// Architecture:
//
//	Scroller composes the focused components of this package:
//	  - Layout: offset -> visible range
//	  - Tracker: debounces scroll offsets into tracking and settle passes
//	  - BuildRenderList: range -> render list with prefix reuse
//	  - PageManager: range -> fetch plan, single live page
//
//	Host events (HandleScroll, ScrollTo, Reconfigure), the settle timer and
//	fetch resolutions all take the same mutex, compute the next state, and
//	record what must happen next in an effects value. The effects run after
//	the mutex is released, so callbacks may call back into the Scroller.
//
// Thread-safety:
//
//	All public methods are safe for concurrent use.

package scroller

import (
	"context"
	"log"
	"sync"
)

// Positioning selects how a host places the visible rows.
type Positioning int

const (
	// PositionTop draws the first visible row at the top of the viewport.
	PositionTop Positioning = iota
	// PositionTranslate draws the first visible row at its true offset,
	// leaving the gap of a partially scrolled-off row.
	PositionTranslate
)

func (p Positioning) String() string {
	if p == PositionTranslate {
		return "translate"
	}
	return "top"
}

// ParsePositioning maps "top" and "translate" to a Positioning.
func ParsePositioning(s string) (Positioning, bool) {
	switch s {
	case "top", "":
		return PositionTop, true
	case "translate":
		return PositionTranslate, true
	}
	return PositionTop, false
}

// Viewport is the host that owns the real scroll position.
type Viewport interface {
	// SetScrollOffset moves the host. The host reports the resulting offset
	// back through HandleScroll.
	SetScrollOffset(offset int)
}

// Config configures a Scroller.
type Config[T any] struct {
	// Source supplies row payloads. Required.
	Source Source[T]
	// RowCount is the number of rows. Required.
	RowCount Count
	// RowHeight is the height of each row. Required.
	RowHeight Height
	// ViewportHeight is the visible extent. Must be positive.
	ViewportHeight int
	// ScrollTo is the row to show first.
	ScrollTo int
	// Buffer is the number of extra rows fetched around the visible range.
	Buffer Buffer
	// ScrollDelay overrides the default settle delay.
	ScrollDelay Delay

	// CacheAge and Hash are change keys passed through to every Frame.
	CacheAge int64
	Hash     string

	// Positioning is passed through to every Frame.
	Positioning Positioning

	// Viewport receives programmatic scroll requests. Optional.
	Viewport Viewport

	// OnFrame is called after every pass and every applied fetch.
	OnFrame func(Frame[T])
	// OnScrollToChanged is called when a settle pass lands on a different
	// first row than the one last requested.
	OnScrollToChanged func(row int)
	// OnError receives fetch failures.
	OnError func(error)
	// OnScrollContainer filters raw scroll events; returning false drops it.
	OnScrollContainer func(offset int) bool

	// Logger defaults to log.Printf.
	Logger func(format string, args ...any)

	// AfterFunc schedules settle timers. Defaults to time.AfterFunc.
	AfterFunc AfterFunc
}

func (c Config[T]) validate() error {
	if c.Source == nil {
		return &ConfigError{Field: "Source", Reason: "a row source is required"}
	}
	if !c.RowCount.IsSet() {
		return &ConfigError{Field: "RowCount", Reason: "a row count is required"}
	}
	if !c.RowHeight.IsSet() {
		return &ConfigError{Field: "RowHeight", Reason: "a row height is required"}
	}
	if c.RowHeight.IsFixed() && c.RowHeight.Resolve(0) < 0 {
		return &ConfigError{Field: "RowHeight", Reason: "must not be negative"}
	}
	if c.ViewportHeight <= 0 {
		return &ConfigError{Field: "ViewportHeight", Reason: "must be positive"}
	}
	return nil
}

// Frame is everything a renderer needs for one pass.
type Frame[T any] struct {
	Rows  []Row[T]
	Range Range
	// Reused is the number of leading rows whose slot is unchanged.
	Reused int
	// Offset is the scroll offset the frame was computed for.
	Offset int
	// FirstRowStart is the offset where Range.RowOffset begins.
	FirstRowStart  int
	ViewportHeight int
	Positioning    Positioning
	// Tracking is set for frames produced while scrolling, before data loads.
	Tracking bool
	CacheAge int64
	Hash     string
}

// Stats counts engine activity.
type Stats struct {
	PageStats
	TrackingPasses int64
	SettlePasses   int64
}

// Scroller is the windowing engine.
type Scroller[T any] struct {
	mu sync.Mutex

	cfg     Config[T]
	layout  Layout
	tracker *Tracker
	pages   *PageManager[T]
	list    RenderList
	frame   Frame[T]

	// frameSeq increases with every frame built; stale frames are not emitted.
	frameSeq uint64
	// requested is the row last asked for through ScrollTo.
	requested int
	// cfgGen increases with every Reconfigure.
	cfgGen uint64

	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	trackingPasses int64
	settlePasses   int64
}

// New validates cfg and builds the initial layout. Call Mount to run the
// first pass once the host is wired up.
func New[T any](cfg Config[T]) (*Scroller[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	layout, err := NewLayout(cfg.RowCount, cfg.RowHeight)
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Printf
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scroller[T]{
		cfg:       cfg,
		layout:    layout,
		pages:     NewPageManager[T](cfg.Buffer),
		requested: cfg.ScrollTo,
		ctx:       ctx,
		cancel:    cancel,
	}
	s.tracker = NewTracker(cfg.ScrollDelay, cfg.AfterFunc, s.onSettleTimer)
	return s, nil
}

// Mount scrolls to the configured start row.
func (s *Scroller[T]) Mount() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	var eff effects[T]
	s.scrollToLocked(s.cfg.ScrollTo, &eff)
	s.mu.Unlock()
	s.run(eff)
}

// HandleScroll reports the host's current scroll offset.
func (s *Scroller[T]) HandleScroll(offset int) {
	s.mu.Lock()
	filter := s.cfg.OnScrollContainer
	s.mu.Unlock()
	if filter != nil && !filter(offset) {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	var eff effects[T]
	p := s.tracker.Observe(s.clampOffset(offset))
	s.passLocked(p, &eff)
	if p.Kind == PassTracking {
		s.tracker.Arm()
	}
	s.mu.Unlock()
	s.run(eff)
}

// Settle forces a settle pass at the last committed offset. Hosts that do not
// echo a scroll event after SetScrollOffset call this instead.
func (s *Scroller[T]) Settle() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	var eff effects[T]
	s.passLocked(s.tracker.Settle(), &eff)
	s.mu.Unlock()
	s.run(eff)
}

func (s *Scroller[T]) onSettleTimer(gen uint64, offset int) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	p, ok := s.tracker.Fire(gen, offset)
	if !ok {
		s.mu.Unlock()
		return
	}
	var eff effects[T]
	s.passLocked(p, &eff)
	s.mu.Unlock()
	s.run(eff)
}

// SetViewportHeight resizes the viewport and re-settles at the current offset.
func (s *Scroller[T]) SetViewportHeight(h int) error {
	if h <= 0 {
		return &ConfigError{Field: "ViewportHeight", Reason: "must be positive"}
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if h == s.cfg.ViewportHeight {
		s.mu.Unlock()
		return nil
	}
	s.cfg.ViewportHeight = h
	var eff effects[T]
	s.passLocked(s.tracker.Settle(), &eff)
	s.mu.Unlock()
	s.run(eff)
	return nil
}

// Reconfigure applies a property change. The layout is rebuilt, the live page
// is dropped, in-flight fetches are orphaned and the engine scrolls to
// cfg.ScrollTo as if newly mounted. Nil callbacks and a nil Viewport keep the
// current ones.
func (s *Scroller[T]) Reconfigure(cfg Config[T]) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	layout, err := NewLayout(cfg.RowCount, cfg.RowHeight)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mergeCallbacksLocked(&cfg)
	s.cfg = cfg
	s.cfgGen++
	s.layout = layout
	s.pages.Reset()
	s.pages.SetBuffer(cfg.Buffer)
	s.tracker.SetDelay(cfg.ScrollDelay)
	s.list = RenderList{}
	var eff effects[T]
	s.scrollToLocked(cfg.ScrollTo, &eff)
	s.mu.Unlock()
	s.run(eff)
	return nil
}

func (s *Scroller[T]) mergeCallbacksLocked(cfg *Config[T]) {
	if cfg.Viewport == nil {
		cfg.Viewport = s.cfg.Viewport
	}
	if cfg.OnFrame == nil {
		cfg.OnFrame = s.cfg.OnFrame
	}
	if cfg.OnScrollToChanged == nil {
		cfg.OnScrollToChanged = s.cfg.OnScrollToChanged
	}
	if cfg.OnError == nil {
		cfg.OnError = s.cfg.OnError
	}
	if cfg.OnScrollContainer == nil {
		cfg.OnScrollContainer = s.cfg.OnScrollContainer
	}
	if cfg.Logger == nil {
		cfg.Logger = s.cfg.Logger
	}
}

// Relayout re-resolves the row count and heights without dropping the live
// page. Use it when rows were appended to the source. A Reconfigure that lands
// while the layout is being built supersedes it.
func (s *Scroller[T]) Relayout() error {
	s.mu.Lock()
	count, height, gen := s.cfg.RowCount, s.cfg.RowHeight, s.cfgGen
	s.mu.Unlock()

	layout, err := NewLayout(count, height)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if gen != s.cfgGen {
		s.mu.Unlock()
		return nil
	}
	s.layout = layout
	var eff effects[T]
	s.passLocked(s.tracker.Settle(), &eff)
	s.mu.Unlock()
	s.run(eff)
	return nil
}

// Invalidate drops the live page and reloads the visible rows. Use it when
// the source's data changed but its shape did not.
func (s *Scroller[T]) Invalidate() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.pages.Reset()
	var eff effects[T]
	s.passLocked(s.tracker.Settle(), &eff)
	s.mu.Unlock()
	s.run(eff)
}

// Frame returns the most recent frame.
func (s *Scroller[T]) Frame() Frame[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Layout returns the current layout.
func (s *Scroller[T]) Layout() Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// OffsetTop returns the last committed scroll offset.
func (s *Scroller[T]) OffsetTop() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.OffsetTop()
}

// TrackerState returns the scroll tracker's state.
func (s *Scroller[T]) TrackerState() TrackerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.State()
}

// Page returns the live page.
func (s *Scroller[T]) Page() Page[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages.Page()
}

// Stats returns activity counters.
func (s *Scroller[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		PageStats:      s.pages.Stats(),
		TrackingPasses: s.trackingPasses,
		SettlePasses:   s.settlePasses,
	}
}

// Close stops the settle timer and cancels in-flight fetches. Later calls
// are no-ops.
func (s *Scroller[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.tracker.Stop()
	s.cancel()
}

// clampOffset keeps offsets inside the content. Hosts may briefly report
// offsets for a previous, taller layout.
func (s *Scroller[T]) clampOffset(offset int) int {
	return min(max(offset, 0), s.layout.TotalHeight())
}

// passLocked computes the range and render list for p. A settle pass also
// plans a fetch and checks the scroll-to position.
func (s *Scroller[T]) passLocked(p Pass, eff *effects[T]) {
	offset := s.clampOffset(p.Offset)
	rng := s.layout.VisibleRange(offset, s.cfg.ViewportHeight)
	s.list = BuildRenderList(s.list, rng, s.layout)
	tracking := p.Kind == PassTracking
	s.buildFrameLocked(rng, offset, tracking, eff)

	if tracking {
		s.trackingPasses++
		return
	}
	s.settlePasses++
	if req, ok := s.pages.Ensure(rng.RowOffset, rng.ViewRowCount); ok {
		eff.fetch = &req
		eff.source = s.cfg.Source
	}
	s.checkScrollToLocked(rng, eff)
}

func (s *Scroller[T]) buildFrameLocked(rng Range, offset int, tracking bool, eff *effects[T]) {
	s.frameSeq++
	s.frame = Frame[T]{
		Rows:           ResolveRows(s.list, s.pages.Page()),
		Range:          rng,
		Reused:         s.list.Reused,
		Offset:         offset,
		FirstRowStart:  s.layout.RowStart(rng.RowOffset),
		ViewportHeight: s.cfg.ViewportHeight,
		Positioning:    s.cfg.Positioning,
		Tracking:       tracking,
		CacheAge:       s.cfg.CacheAge,
		Hash:           s.cfg.Hash,
	}
	eff.frame = &s.frame
	eff.frameSeq = s.frameSeq
	eff.onFrame = s.cfg.OnFrame
}

// effects is the pending work produced under the lock.
type effects[T any] struct {
	frame    *Frame[T]
	frameSeq uint64
	onFrame  func(Frame[T])

	scrollToChanged   *int
	onScrollToChanged func(int)

	setScroll *int
	viewport  Viewport

	fetch  *Request
	source Source[T]

	errs    []error
	onError func(error)
	logf    func(string, ...any)
}

// run executes effects with the lock released, in order: errors, frame,
// scroll-to notification, host scroll, fetch. A fetch whose rows are in hand
// is applied first so the frame already carries them.
func (s *Scroller[T]) run(eff effects[T]) {
	var pending *Fetch[T]
	if eff.fetch != nil {
		f := eff.source.Fetch(s.ctx, eff.fetch.Start, eff.fetch.Count)
		if f.Pending() {
			pending = &f
		} else {
			rows, err := f.Wait(s.ctx)
			s.applyReady(*eff.fetch, rows, err, &eff)
		}
	}

	for _, err := range eff.errs {
		if eff.logf != nil {
			eff.logf("Scroller: %v", err)
		}
		if eff.onError != nil {
			eff.onError(err)
		}
	}

	if eff.frame != nil && eff.onFrame != nil {
		s.mu.Lock()
		current := eff.frameSeq == s.frameSeq
		frame := *eff.frame
		s.mu.Unlock()
		// Another goroutine may already have emitted a newer frame.
		if current {
			eff.onFrame(frame)
		}
	}

	if eff.scrollToChanged != nil && eff.onScrollToChanged != nil {
		eff.onScrollToChanged(*eff.scrollToChanged)
	}

	if eff.setScroll != nil && eff.viewport != nil {
		eff.viewport.SetScrollOffset(*eff.setScroll)
	}

	if pending != nil {
		req, f := *eff.fetch, *pending
		go func() {
			rows, err := f.Wait(s.ctx)
			s.resolve(req, rows, err)
		}()
	}
}

// applyReady installs a synchronous result into eff before it runs. A
// successful apply rebuilds the frame that eff will emit.
func (s *Scroller[T]) applyReady(req Request, rows []T, err error, eff *effects[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.settleLocked(req, rows, err, eff)
}

func (s *Scroller[T]) settleLocked(req Request, rows []T, err error, eff *effects[T]) {
	if err != nil {
		eff.errs = append(eff.errs, s.pages.Fail(req, err))
		eff.onError = s.cfg.OnError
		eff.logf = s.cfg.Logger
		return
	}
	if s.pages.Apply(req, rows) {
		s.buildFrameLocked(s.frame.Range, s.frame.Offset, s.frame.Tracking, eff)
	}
}

func (s *Scroller[T]) resolve(req Request, rows []T, err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	var eff effects[T]
	s.settleLocked(req, rows, err, &eff)
	s.mu.Unlock()
	s.run(eff)
}
