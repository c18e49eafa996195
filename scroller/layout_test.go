// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package scroller

import (
	"errors"
	"testing"
)

func mustLayout(t *testing.T, n int, h Height) Layout {
	t.Helper()
	l, err := NewLayout(FixedCount(n), h)
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	return l
}

// variableHeight cycles through 3..15 so rows are uneven.
func variableHeight(row int) int { return (row%5 + 1) * 3 }

func TestLayout_ConstantHeightTotal(t *testing.T) {
	for _, tc := range []struct{ n, h int }{{0, 10}, {1, 7}, {1000, 50}, {37, 1}} {
		l := mustLayout(t, tc.n, FixedHeight(tc.h))
		if got := l.TotalHeight(); got != tc.n*tc.h {
			t.Errorf("n=%d h=%d: total = %d, want %d", tc.n, tc.h, got, tc.n*tc.h)
		}
		if got := l.RowCount(); got != tc.n {
			t.Errorf("n=%d: row count = %d", tc.n, got)
		}
	}
}

func TestLayout_ThousandRowsOfFifty(t *testing.T) {
	l := mustLayout(t, 1000, FixedHeight(50))
	rng := l.VisibleRange(0, 600)
	want := Range{RowOffset: 0, ViewRowCount: 12, TotalHeight: 50000}
	if rng != want {
		t.Fatalf("range = %+v, want %+v", rng, want)
	}
}

func TestLayout_VisibleRangePredicates(t *testing.T) {
	const n, viewport = 200, 40
	l := mustLayout(t, n, ComputedHeight(variableHeight))
	total := l.TotalHeight()

	for offset := 0; offset <= total; offset++ {
		rng := l.VisibleRange(offset, viewport)
		bottom := offset + viewport
		for row := rng.RowOffset; row < rng.End(); row++ {
			s := l.RowStart(row)
			if s < offset || s >= bottom {
				t.Fatalf("offset %d: row %d starts at %d, outside [%d,%d)", offset, row, s, offset, bottom)
			}
		}
		if rng.Empty() {
			continue
		}
		if rng.RowOffset > 0 && l.RowStart(rng.RowOffset-1) >= offset {
			t.Fatalf("offset %d: row %d before the range also qualifies", offset, rng.RowOffset-1)
		}
		if rng.End() < n && l.RowStart(rng.End()) < bottom {
			t.Fatalf("offset %d: row %d after the range also qualifies", offset, rng.End())
		}
	}
}

func TestLayout_WalkMatchesPrefixSearch(t *testing.T) {
	const n = 60
	h := ComputedHeight(variableHeight)
	l := mustLayout(t, n, h)
	for _, viewport := range []int{1, 5, 16, 100, 10000} {
		for offset := 0; offset <= l.TotalHeight()+3; offset++ {
			got := VisibleRange(offset, viewport, n, h)
			want := l.VisibleRange(offset, viewport)
			if got != want {
				t.Fatalf("offset %d viewport %d: walk %+v, layout %+v", offset, viewport, got, want)
			}
		}
	}
}

func TestLayout_EmptyRowSet(t *testing.T) {
	l := mustLayout(t, 0, FixedHeight(10))
	rng := l.VisibleRange(0, 100)
	if !rng.Empty() || rng.TotalHeight != 0 {
		t.Fatalf("range = %+v, want empty with zero total", rng)
	}
	if got := l.OffsetOf(5); got != 0 {
		t.Errorf("OffsetOf on empty layout = %d", got)
	}
}

func TestLayout_OffsetOfClamps(t *testing.T) {
	l := mustLayout(t, 10, FixedHeight(4))
	cases := []struct{ row, want int }{
		{-3, 0},
		{0, 0},
		{3, 12},
		{9, 36},
		{10, 36},
		{500, 36},
	}
	for _, tc := range cases {
		if got := l.OffsetOf(tc.row); got != tc.want {
			t.Errorf("OffsetOf(%d) = %d, want %d", tc.row, got, tc.want)
		}
	}
}

func TestLayout_OffsetOfRoundTrip(t *testing.T) {
	l := mustLayout(t, 100, ComputedHeight(variableHeight))
	for row := range 100 {
		rng := l.VisibleRange(l.OffsetOf(row), 30)
		if rng.RowOffset != row {
			t.Fatalf("row %d: RowOffset = %d", row, rng.RowOffset)
		}
	}
}

func TestLayout_RowAt(t *testing.T) {
	l := mustLayout(t, 4, ComputedHeight(func(row int) int { return []int{5, 1, 10, 2}[row] }))
	cases := []struct{ offset, want int }{
		{-1, 0}, {0, 0}, {4, 0}, {5, 1}, {6, 2}, {15, 2}, {16, 3}, {17, 3}, {99, 3},
	}
	for _, tc := range cases {
		if got := l.RowAt(tc.offset); got != tc.want {
			t.Errorf("RowAt(%d) = %d, want %d", tc.offset, got, tc.want)
		}
	}
}

func TestLayout_TallRowHidesRange(t *testing.T) {
	// Row 1 starts at 20 and is taller than the viewport; scrolling inside
	// row 0 leaves nothing starting within [1,6).
	l := mustLayout(t, 3, ComputedHeight(func(row int) int { return []int{20, 50, 5}[row] }))
	rng := l.VisibleRange(1, 5)
	if !rng.Empty() || rng.RowOffset != 1 {
		t.Fatalf("range = %+v, want empty at row 1", rng)
	}
}

func TestLayout_NegativeHeight(t *testing.T) {
	_, err := NewLayout(FixedCount(5), ComputedHeight(func(row int) int {
		if row == 3 {
			return -1
		}
		return 1
	}))
	var he *HeightError
	if !errors.As(err, &he) {
		t.Fatalf("err = %v, want *HeightError", err)
	}
	if he.Row != 3 || he.Height != -1 {
		t.Errorf("HeightError = %+v", he)
	}
}

func TestLayout_ComputedCount(t *testing.T) {
	n := 3
	count := ComputedCount(func() int { return n })
	l, err := NewLayout(count, FixedHeight(2))
	if err != nil {
		t.Fatal(err)
	}
	n = 8
	if l.RowCount() != 3 {
		t.Fatalf("layout changed after build: %d rows", l.RowCount())
	}
	l, _ = NewLayout(count, FixedHeight(2))
	if l.RowCount() != 8 || l.TotalHeight() != 16 {
		t.Fatalf("rebuilt layout = %d rows, %d total", l.RowCount(), l.TotalHeight())
	}
}
