// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: scroller/layout.go
// Summary: Layout maps scroll offsets to visible row ranges.
//
// Architecture:
//
//	Layout walks every row once at build time and keeps a prefix sum of row
//	heights: prefix[i] is the offset where row i starts and prefix[n] is the
//	total height. Offset-to-range queries are then two binary searches.
//
//	A row is visible when its start lies inside [offset, offset+viewport).
//	A row that starts above the offset is not visible even if its lower part
//	reaches into the viewport, so the range always begins on a row boundary.
//
//	Layout is rebuilt, never patched, when the row count or the height source
//	changes. Scroll ticks only query it.

package scroller

import "sort"

// Range is a contiguous run of visible rows.
type Range struct {
	// RowOffset is the first visible row.
	RowOffset int
	// ViewRowCount is the number of visible rows.
	ViewRowCount int
	// TotalHeight is the height of all rows, used to size scrollbars.
	TotalHeight int
}

// End returns one past the last visible row.
func (r Range) End() int { return r.RowOffset + r.ViewRowCount }

// Empty reports whether no row is visible.
func (r Range) Empty() bool { return r.ViewRowCount <= 0 }

// Contains reports whether row is inside the range.
func (r Range) Contains(row int) bool { return row >= r.RowOffset && row < r.End() }

// Layout holds the cumulative row offsets for one row count and height source.
// The zero value is an empty layout.
type Layout struct {
	prefix []int
}

// NewLayout resolves count and walks every row through height.
// A panic inside a height function is not recovered.
func NewLayout(count Count, height Height) (Layout, error) {
	return buildLayout(count.Resolve(), height)
}

func buildLayout(n int, height Height) (Layout, error) {
	if n <= 0 {
		return Layout{prefix: []int{0}}, nil
	}
	prefix := make([]int, n+1)
	total := 0
	for row := range n {
		h := height.Resolve(row)
		if h < 0 {
			return Layout{}, &HeightError{Row: row, Height: h}
		}
		prefix[row] = total
		total += h
	}
	prefix[n] = total
	return Layout{prefix: prefix}, nil
}

// RowCount returns the number of rows in the layout.
func (l Layout) RowCount() int {
	if len(l.prefix) == 0 {
		return 0
	}
	return len(l.prefix) - 1
}

// TotalHeight returns the sum of all row heights.
func (l Layout) TotalHeight() int {
	if len(l.prefix) == 0 {
		return 0
	}
	return l.prefix[len(l.prefix)-1]
}

// RowStart returns the offset where row begins.
// Rows outside the layout are clamped.
func (l Layout) RowStart(row int) int {
	n := l.RowCount()
	if n == 0 || row <= 0 {
		return 0
	}
	if row > n {
		row = n
	}
	return l.prefix[row]
}

// RowHeight returns the height of row, or 0 outside the layout.
func (l Layout) RowHeight(row int) int {
	if row < 0 || row >= l.RowCount() {
		return 0
	}
	return l.prefix[row+1] - l.prefix[row]
}

// VisibleRange returns the rows whose start lies in [offset, offset+viewportHeight).
func (l Layout) VisibleRange(offset, viewportHeight int) Range {
	n := l.RowCount()
	total := l.TotalHeight()
	if n == 0 {
		return Range{TotalHeight: total}
	}
	bottom := offset + viewportHeight
	first := sort.Search(n, func(i int) bool { return l.prefix[i] >= offset })
	end := first
	if viewportHeight > 0 {
		end = first + sort.Search(n-first, func(i int) bool { return l.prefix[first+i] >= bottom })
	}
	if first >= n {
		// Scrolled past the last row start; nothing begins inside the viewport.
		first = n - 1
		end = first
	}
	return Range{RowOffset: first, ViewRowCount: end - first, TotalHeight: total}
}

// OffsetOf returns the scroll offset that puts row at the top of the viewport.
// Rows past the end clamp to the last row; negative rows clamp to 0.
func (l Layout) OffsetOf(row int) int {
	n := l.RowCount()
	if n == 0 || row <= 0 {
		return 0
	}
	if row >= n {
		row = n - 1
	}
	return l.prefix[row]
}

// RowAt returns the row covering offset, clamped to the layout.
func (l Layout) RowAt(offset int) int {
	n := l.RowCount()
	if n == 0 || offset <= 0 {
		return 0
	}
	// Last row whose start is <= offset.
	i := sort.Search(n, func(i int) bool { return l.prefix[i] > offset })
	return max(i-1, 0)
}

// VisibleRange computes the visible rows with a single walk and no Layout.
// It calls height once per row and is meant for one-off queries; repeated
// queries should build a Layout.
func VisibleRange(offset, viewportHeight, rowCount int, height Height) Range {
	bottom := offset + viewportHeight
	rng := Range{RowOffset: -1}
	firstBelowTop := -1
	total := 0
	for row := range rowCount {
		withinTop := total >= offset
		withinBottom := total < bottom
		if withinTop && firstBelowTop == -1 {
			firstBelowTop = row
		}
		if withinTop && withinBottom {
			if rng.RowOffset == -1 {
				rng.RowOffset = row
			}
			rng.ViewRowCount++
		}
		total += height.Resolve(row)
	}
	if rng.RowOffset == -1 {
		switch {
		case firstBelowTop != -1:
			rng.RowOffset = firstBelowTop
		case rowCount > 0:
			rng.RowOffset = rowCount - 1
		default:
			rng.RowOffset = 0
		}
	}
	rng.TotalHeight = total
	return rng
}
