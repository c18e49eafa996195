// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: scroller/window.go
// Summary: Window builder producing the ordered list of rows to render.
//
// Architecture:
//
//	A RenderList is the (row, height) sequence for one visible range. Each
//	build compares slot i with slot i of the previous list. The first slot
//	whose row or height differs ends the reusable prefix and every later slot
//	is rebuilt, because one inserted or removed row shifts all slots after it.
//
//	This is a prefix diff, not a minimal diff. It is O(n) and keeps most slots
//	on small scroll deltas, which is the common case. Reused tells a renderer
//	how many leading slots it may skip.
//
//	Payloads are not stored in the list. ResolveRows looks each row up in the
//	live Page at render time, so a page replacement never forces a rebuild.

package scroller

// Slot is one rendered position: which row sits there and how tall it is.
type Slot struct {
	Row    int
	Height int
}

// RenderList is the ordered set of slots for the visible range.
// Lists are never mutated after they are built.
type RenderList struct {
	Slots []Slot
	// Reused is the number of leading slots identical to the previous list.
	Reused int
}

// Len returns the number of slots.
func (rl RenderList) Len() int { return len(rl.Slots) }

// BuildRenderList builds the list for rng, reusing the unchanged prefix of prev.
// The range is clamped to the layout so stale counts never index past the end.
func BuildRenderList(prev RenderList, rng Range, layout Layout) RenderList {
	start, end := clampRange(rng, layout.RowCount())
	n := end - start

	diverge := n
	for i := range n {
		row := start + i
		if i >= len(prev.Slots) || prev.Slots[i].Row != row || prev.Slots[i].Height != layout.RowHeight(row) {
			diverge = i
			break
		}
	}

	if diverge == n && n == len(prev.Slots) {
		return RenderList{Slots: prev.Slots, Reused: n}
	}

	slots := make([]Slot, n)
	copy(slots, prev.Slots[:diverge])
	for i := diverge; i < n; i++ {
		row := start + i
		slots[i] = Slot{Row: row, Height: layout.RowHeight(row)}
	}
	return RenderList{Slots: slots, Reused: diverge}
}

func clampRange(rng Range, rowCount int) (start, end int) {
	start = max(rng.RowOffset, 0)
	end = min(rng.End(), rowCount)
	if end < start {
		end = start
	}
	return start, end
}

// Row is a slot joined with its payload.
type Row[T any] struct {
	Index  int
	Height int
	Data   T
	// Blank is set when the live page does not cover the row; Data is the zero value.
	Blank bool
}

// ResolveRows joins every slot with its payload from page.
func ResolveRows[T any](list RenderList, page Page[T]) []Row[T] {
	rows := make([]Row[T], len(list.Slots))
	for i, s := range list.Slots {
		data, ok := page.Lookup(s.Row)
		rows[i] = Row[T]{Index: s.Row, Height: s.Height, Data: data, Blank: !ok}
	}
	return rows
}
