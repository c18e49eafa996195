// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: scroller/tracker.go
// Summary: Scroll tracker state machine debouncing fetches during fast scrolls.
//
// Architecture:
//
//	        offset != offsetTop                 timer fires
//	Idle ───────────────────────▶ Tracking ──▶ Settling ──────────────▶ Idle
//	  ▲                              ▲            │  (settle pass + fetch)
//	  │ offset == offsetTop          └────────────┘
//	  └── settle pass at once          new offset cancels the timer
//
//	A tracking pass recomputes the window without fetching, so scrolling
//	stays responsive without flooding the data source. The settle pass runs
//	once the scroll has paused for Delay.Resolve(from, to).
//
//	Each armed timer carries a generation. A timer that fires after a newer
//	event re-armed or cancelled it finds a stale generation and does nothing,
//	so at most one settle is ever pending even when Stop loses the race.
//
//	Tracker is not synchronized; the Scroller calls it with its lock held.

package scroller

import (
	"fmt"
	"time"
)

// TrackerState is the scroll tracker's state.
type TrackerState int

const (
	// TrackerIdle means no scroll is in progress.
	TrackerIdle TrackerState = iota
	// TrackerTracking means a tracking pass is running for a new offset.
	TrackerTracking
	// TrackerSettling means the settle timer is armed.
	TrackerSettling
)

func (s TrackerState) String() string {
	switch s {
	case TrackerIdle:
		return "idle"
	case TrackerTracking:
		return "tracking"
	case TrackerSettling:
		return "settling"
	}
	return fmt.Sprintf("TrackerState(%d)", int(s))
}

// PassKind selects how much work a pass does.
type PassKind int

const (
	// PassTracking recomputes the window only.
	PassTracking PassKind = iota
	// PassSettle recomputes the window and loads data.
	PassSettle
)

// Pass is a unit of work the tracker asks its owner to run.
type Pass struct {
	Kind   PassKind
	Offset int
}

// Timer is the part of *time.Timer the tracker needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it through a wrapper.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Tracker debounces scroll offsets into tracking and settle passes.
type Tracker struct {
	offsetTop int
	state     TrackerState
	delay     Delay
	afterFunc AfterFunc

	timer Timer
	gen   uint64
	from  int

	// fire is invoked from the timer goroutine with the generation and offset
	// the timer was armed for.
	fire func(gen uint64, offset int)
}

// NewTracker creates an idle tracker. afterFunc may be nil to use real timers.
func NewTracker(delay Delay, afterFunc AfterFunc, fire func(gen uint64, offset int)) *Tracker {
	if afterFunc == nil {
		afterFunc = realAfterFunc
	}
	return &Tracker{delay: delay, afterFunc: afterFunc, fire: fire}
}

// OffsetTop returns the last committed scroll offset.
func (t *Tracker) OffsetTop() int { return t.offsetTop }

// SetOffsetTop commits offset without running a pass. The next scroll event
// at the same offset settles directly.
func (t *Tracker) SetOffsetTop(offset int) { t.offsetTop = offset }

// State returns the current state.
func (t *Tracker) State() TrackerState { return t.state }

// SetDelay replaces the settle delay for later arms.
func (t *Tracker) SetDelay(d Delay) { t.delay = d }

// Observe takes a new scroll offset and returns the pass to run now.
// For a tracking pass the caller must call Arm once the pass is done.
func (t *Tracker) Observe(offset int) Pass {
	t.cancel()
	if offset == t.offsetTop {
		t.state = TrackerIdle
		return Pass{Kind: PassSettle, Offset: offset}
	}
	t.from = t.offsetTop
	t.offsetTop = offset
	t.state = TrackerTracking
	return Pass{Kind: PassTracking, Offset: offset}
}

// Arm starts the settle timer after a tracking pass.
func (t *Tracker) Arm() {
	if t.state != TrackerTracking {
		return
	}
	t.gen++
	gen, offset := t.gen, t.offsetTop
	d := t.delay.Resolve(t.from, offset)
	t.state = TrackerSettling
	t.timer = t.afterFunc(d, func() {
		if t.fire != nil {
			t.fire(gen, offset)
		}
	})
}

// Fire resolves a timer callback. ok is false for stale timers.
func (t *Tracker) Fire(gen uint64, offset int) (Pass, bool) {
	if gen != t.gen || t.state != TrackerSettling {
		return Pass{}, false
	}
	t.timer = nil
	t.state = TrackerIdle
	return Pass{Kind: PassSettle, Offset: offset}, true
}

// Settle cancels any pending timer and returns a settle pass at offsetTop.
func (t *Tracker) Settle() Pass {
	t.cancel()
	t.state = TrackerIdle
	return Pass{Kind: PassSettle, Offset: t.offsetTop}
}

// Stop cancels any pending timer.
func (t *Tracker) Stop() {
	t.cancel()
	t.state = TrackerIdle
}

func (t *Tracker) cancel() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	// Invalidate a timer whose callback is already waiting for the lock.
	t.gen++
}
