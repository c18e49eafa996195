// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: scroller/page.go
// Summary: Page manager holding the single live block of row payloads.
//
// Architecture:
//
//	Exactly one Page is live. A visible range that the page already covers
//	needs no fetch. Otherwise the manager plans a buffered request: half the
//	buffer before the range, the rest after it.
//
//	A Source answers with rows in hand (applied at once) or with a channel
//	that resolves later. Requests carry a sequence number; a resolution for
//	anything but the newest request is discarded, so a slow response can
//	never overwrite the data of a faster, newer one.
//
//	PageManager itself is not synchronized. The Scroller owns it and calls
//	it with its lock held.

package scroller

import (
	"context"
)

// Page is a contiguous block of payloads starting at row Start.
type Page[T any] struct {
	Start int
	Rows  []T
}

// End returns one past the last row in the page.
func (p Page[T]) End() int { return p.Start + len(p.Rows) }

// Covers reports whether rows [rowOffset, rowOffset+count) are all loaded.
func (p Page[T]) Covers(rowOffset, count int) bool {
	return rowOffset >= p.Start && rowOffset+count <= p.End()
}

// Lookup returns the payload for row.
func (p Page[T]) Lookup(row int) (T, bool) {
	var zero T
	i := row - p.Start
	if i < 0 || i >= len(p.Rows) {
		return zero, false
	}
	return p.Rows[i], true
}

// Resolution is the eventual outcome of an asynchronous fetch.
type Resolution[T any] struct {
	Rows []T
	Err  error
}

// Fetch is what a Source hands back for one request: rows already in hand,
// an immediate error, or a channel that delivers a Resolution later.
type Fetch[T any] struct {
	rows    []T
	err     error
	pending <-chan Resolution[T]
}

// Ready returns a fetch that is already complete.
func Ready[T any](rows []T) Fetch[T] {
	return Fetch[T]{rows: rows}
}

// Failed returns a fetch that failed synchronously.
func Failed[T any](err error) Fetch[T] {
	return Fetch[T]{err: err}
}

// Async returns a fetch resolved by the first value received on ch.
// A channel closed without a value resolves as context.Canceled.
func Async[T any](ch <-chan Resolution[T]) Fetch[T] {
	return Fetch[T]{pending: ch}
}

// Deferred runs fn on its own goroutine and resolves with its result.
func Deferred[T any](ctx context.Context, fn func(ctx context.Context) ([]T, error)) Fetch[T] {
	ch := make(chan Resolution[T], 1)
	go func() {
		rows, err := fn(ctx)
		ch <- Resolution[T]{Rows: rows, Err: err}
	}()
	return Async(ch)
}

// Pending reports whether the result is not yet in hand.
func (f Fetch[T]) Pending() bool { return f.pending != nil }

// Wait blocks until the fetch resolves or ctx is done.
func (f Fetch[T]) Wait(ctx context.Context) ([]T, error) {
	if f.pending == nil {
		return f.rows, f.err
	}
	select {
	case res, ok := <-f.pending:
		if !ok {
			return nil, context.Canceled
		}
		return res.Rows, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Source supplies row payloads. It must return at most count rows; fewer
// near the end of the row set.
type Source[T any] interface {
	Fetch(ctx context.Context, start, count int) Fetch[T]
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any] func(ctx context.Context, start, count int) Fetch[T]

// Fetch calls f.
func (f SourceFunc[T]) Fetch(ctx context.Context, start, count int) Fetch[T] {
	return f(ctx, start, count)
}

// Request is a planned fetch.
type Request struct {
	Seq   uint64
	Start int
	Count int
}

// PageStats counts page manager activity.
type PageStats struct {
	Issued    int64 // requests planned
	Applied   int64 // resolutions that replaced the page
	Discarded int64 // resolutions dropped because a newer request exists
	Failed    int64 // resolutions that carried an error
}

// PageManager owns the live Page and plans fetches for visible ranges.
type PageManager[T any] struct {
	page   Page[T]
	buffer Buffer
	seq    uint64
	stats  PageStats
}

// NewPageManager creates a manager with an empty page.
func NewPageManager[T any](buffer Buffer) *PageManager[T] {
	return &PageManager[T]{buffer: buffer}
}

// Page returns the live page.
func (pm *PageManager[T]) Page() Page[T] { return pm.page }

// SetBuffer changes the prefetch buffer for later requests.
func (pm *PageManager[T]) SetBuffer(b Buffer) { pm.buffer = b }

// Ensure plans a fetch for [rowOffset, rowOffset+viewRowCount) unless the
// live page already covers it. ok is false when no fetch is needed.
func (pm *PageManager[T]) Ensure(rowOffset, viewRowCount int) (req Request, ok bool) {
	if viewRowCount <= 0 || pm.page.Covers(rowOffset, viewRowCount) {
		return Request{}, false
	}
	buffer := pm.buffer.Resolve(rowOffset, viewRowCount)
	start := max(rowOffset-buffer/2, 0)
	pm.seq++
	pm.stats.Issued++
	return Request{Seq: pm.seq, Start: start, Count: viewRowCount + buffer}, true
}

// Apply installs rows for req. It returns false, and leaves the page alone,
// when a newer request has been issued since req.
func (pm *PageManager[T]) Apply(req Request, rows []T) bool {
	if req.Seq != pm.seq {
		pm.stats.Discarded++
		return false
	}
	if len(rows) > req.Count {
		rows = rows[:req.Count]
	}
	pm.page = Page[T]{Start: req.Start, Rows: rows}
	pm.stats.Applied++
	return true
}

// Fail records a failed request. The page is left untouched.
func (pm *PageManager[T]) Fail(req Request, err error) *FetchError {
	pm.stats.Failed++
	return &FetchError{Start: req.Start, Count: req.Count, Err: err}
}

// Reset drops the live page and orphans any in-flight request.
func (pm *PageManager[T]) Reset() {
	pm.page = Page[T]{}
	pm.seq++
}

// Stats returns activity counters.
func (pm *PageManager[T]) Stats() PageStats { return pm.stats }
