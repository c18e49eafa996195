// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: scroller/values.go
// Summary: Constant-or-computed configuration values.
//
// Row heights, row counts, buffer sizes and scroll delays can each be given
// either as a plain value or as a function. Each kind is a small tagged union
// resolved through a single Resolve method so call sites never type-switch.

package scroller

import "time"

// Height yields the height of a row. The zero value is unset.
type Height struct {
	fixed int
	fn    func(row int) int
	set   bool
}

// FixedHeight returns a Height where every row is h tall.
func FixedHeight(h int) Height {
	return Height{fixed: h, set: true}
}

// ComputedHeight returns a Height that asks fn for each row.
// fn must be pure and cheap; it is called once per row on every layout build.
func ComputedHeight(fn func(row int) int) Height {
	if fn == nil {
		return Height{}
	}
	return Height{fn: fn, set: true}
}

// IsSet reports whether the height was configured.
func (h Height) IsSet() bool { return h.set }

// IsFixed reports whether every row has the same height.
func (h Height) IsFixed() bool { return h.set && h.fn == nil }

// Resolve returns the height of row.
func (h Height) Resolve(row int) int {
	if h.fn != nil {
		return h.fn(row)
	}
	return h.fixed
}

// Count yields the number of rows.
type Count struct {
	fixed int
	fn    func() int
	set   bool
}

// FixedCount returns a Count of n rows.
func FixedCount(n int) Count {
	return Count{fixed: n, set: true}
}

// ComputedCount returns a Count that is re-evaluated on every layout build.
func ComputedCount(fn func() int) Count {
	if fn == nil {
		return Count{}
	}
	return Count{fn: fn, set: true}
}

// IsSet reports whether the count was configured.
func (c Count) IsSet() bool { return c.set }

// Resolve returns the current row count.
func (c Count) Resolve() int {
	if c.fn != nil {
		return c.fn()
	}
	return c.fixed
}

// Buffer yields how many extra rows to fetch around a visible range.
// The zero value means no buffer.
type Buffer struct {
	fixed int
	fn    func(rowOffset, count int) int
}

// FixedBuffer returns a Buffer of n rows.
func FixedBuffer(n int) Buffer {
	return Buffer{fixed: n}
}

// ComputedBuffer returns a Buffer sized per request.
func ComputedBuffer(fn func(rowOffset, count int) int) Buffer {
	return Buffer{fn: fn}
}

// Resolve returns the buffer for a request starting at rowOffset.
// Negative results are treated as zero.
func (b Buffer) Resolve(rowOffset, count int) int {
	n := b.fixed
	if b.fn != nil {
		n = b.fn(rowOffset, count)
	}
	return max(n, 0)
}

// Delay yields the settle delay after a scroll from one offset to another.
// The zero value uses DefaultScrollDelay.
type Delay struct {
	fixed time.Duration
	fn    func(from, to int) time.Duration
	set   bool
}

// DelayUnit is the time unit of the default scroll delay.
const DelayUnit = time.Millisecond

// maxDefaultDelayUnits caps the default delay: small jumps settle almost at
// once, larger jumps wait slightly longer.
const maxDefaultDelayUnits = 2

// FixedDelay returns a Delay that always waits d.
func FixedDelay(d time.Duration) Delay {
	return Delay{fixed: d, set: true}
}

// ComputedDelay returns a Delay computed from the scroll distance.
func ComputedDelay(fn func(from, to int) time.Duration) Delay {
	if fn == nil {
		return Delay{}
	}
	return Delay{fn: fn, set: true}
}

// Resolve returns the settle delay for a scroll from one offset to another.
func (d Delay) Resolve(from, to int) time.Duration {
	switch {
	case d.fn != nil:
		return max(d.fn(from, to), 0)
	case d.set:
		return max(d.fixed, 0)
	}
	return DefaultScrollDelay(from, to)
}

// DefaultScrollDelay waits min(|from-to|, 2) units.
func DefaultScrollDelay(from, to int) time.Duration {
	dist := from - to
	if dist < 0 {
		dist = -dist
	}
	return time.Duration(min(dist, maxDefaultDelayUnits)) * DelayUnit
}
