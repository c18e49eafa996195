// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package scroller

import "testing"

func TestBuildRenderList_Idempotent(t *testing.T) {
	l := mustLayout(t, 100, ComputedHeight(variableHeight))
	rng := l.VisibleRange(40, 60)

	first := BuildRenderList(RenderList{}, rng, l)
	if first.Reused != 0 {
		t.Fatalf("first build reused %d slots", first.Reused)
	}
	second := BuildRenderList(first, rng, l)
	if second.Reused != second.Len() || second.Len() != rng.ViewRowCount {
		t.Fatalf("second build: reused %d of %d, range %d", second.Reused, second.Len(), rng.ViewRowCount)
	}
	if &second.Slots[0] != &first.Slots[0] {
		t.Error("identical build allocated a new slice")
	}
}

func TestBuildRenderList_PrefixReuse(t *testing.T) {
	l := mustLayout(t, 100, FixedHeight(10))
	prev := BuildRenderList(RenderList{}, Range{RowOffset: 0, ViewRowCount: 12}, l)
	snapshot := append([]Slot(nil), prev.Slots...)

	grown := BuildRenderList(prev, Range{RowOffset: 0, ViewRowCount: 14}, l)
	if grown.Reused != 12 || grown.Len() != 14 {
		t.Fatalf("grown: reused %d, len %d", grown.Reused, grown.Len())
	}

	shifted := BuildRenderList(prev, Range{RowOffset: 1, ViewRowCount: 12}, l)
	if shifted.Reused != 0 {
		t.Fatalf("shifted: reused %d, want 0", shifted.Reused)
	}
	for i, s := range shifted.Slots {
		if s.Row != i+1 || s.Height != 10 {
			t.Fatalf("shifted slot %d = %+v", i, s)
		}
	}

	for i := range snapshot {
		if prev.Slots[i] != snapshot[i] {
			t.Fatalf("previous list mutated at %d: %+v", i, prev.Slots[i])
		}
	}
}

func TestBuildRenderList_HeightChangeEndsPrefix(t *testing.T) {
	tall := 5
	h := ComputedHeight(func(row int) int {
		if row == 3 {
			return tall
		}
		return 5
	})
	l := mustLayout(t, 10, h)
	prev := BuildRenderList(RenderList{}, Range{RowOffset: 0, ViewRowCount: 6}, l)

	tall = 9
	l = mustLayout(t, 10, h)
	next := BuildRenderList(prev, Range{RowOffset: 0, ViewRowCount: 6}, l)
	if next.Reused != 3 {
		t.Fatalf("reused %d, want 3", next.Reused)
	}
	if next.Slots[3].Height != 9 {
		t.Fatalf("slot 3 = %+v", next.Slots[3])
	}
}

func TestBuildRenderList_ClampsToLayout(t *testing.T) {
	l := mustLayout(t, 5, FixedHeight(1))
	list := BuildRenderList(RenderList{}, Range{RowOffset: 3, ViewRowCount: 10}, l)
	if list.Len() != 2 || list.Slots[1].Row != 4 {
		t.Fatalf("list = %+v", list.Slots)
	}
	empty := BuildRenderList(list, Range{RowOffset: 9, ViewRowCount: 4}, l)
	if empty.Len() != 0 {
		t.Fatalf("out of range list = %+v", empty.Slots)
	}
}

func TestResolveRows_BlanksOutsidePage(t *testing.T) {
	l := mustLayout(t, 10, FixedHeight(2))
	list := BuildRenderList(RenderList{}, Range{RowOffset: 2, ViewRowCount: 4}, l)
	page := Page[string]{Start: 3, Rows: []string{"c", "d"}}

	rows := ResolveRows(list, page)
	want := []Row[string]{
		{Index: 2, Height: 2, Blank: true},
		{Index: 3, Height: 2, Data: "c"},
		{Index: 4, Height: 2, Data: "d"},
		{Index: 5, Height: 2, Blank: true},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows", len(rows))
	}
	for i := range want {
		if rows[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, rows[i], want[i])
		}
	}
}
