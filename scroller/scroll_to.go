// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: scroller/scroll_to.go
// Summary: ScrollTo coordinator translating row requests into host scrolls.
//
// Architecture:
//
//	ScrollTo(row) looks up the row's offset. When the content overflows the
//	viewport and the offset differs from the committed one, the offset is
//	committed and the host is told to scroll. The host's echoing scroll event
//	then matches the committed offset and settles without tracking.
//	Otherwise no scroll event would follow, so a settle pass runs directly.
//
//	After every settle pass the first visible row is compared with the last
//	requested row. A mismatch (user scrolling, clamping at the end) is
//	reported once through OnScrollToChanged and the realized row becomes the
//	new requested row, so an external slider stays in sync without loops.

package scroller

// ScrollTo brings row to the top of the viewport.
func (s *Scroller[T]) ScrollTo(row int) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	var eff effects[T]
	s.scrollToLocked(row, &eff)
	s.mu.Unlock()
	s.run(eff)
}

// RequestedRow returns the row last asked for or last reported.
func (s *Scroller[T]) RequestedRow() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requested
}

func (s *Scroller[T]) scrollToLocked(row int, eff *effects[T]) {
	s.requested = row
	target := s.layout.OffsetOf(row)
	overflow := s.layout.TotalHeight() > s.cfg.ViewportHeight

	if overflow && target != s.tracker.OffsetTop() && s.cfg.Viewport != nil {
		s.tracker.Stop()
		s.tracker.SetOffsetTop(target)
		eff.setScroll = &target
		eff.viewport = s.cfg.Viewport
		return
	}

	if !overflow {
		target = 0
	}
	s.tracker.Stop()
	s.tracker.SetOffsetTop(target)
	s.passLocked(Pass{Kind: PassSettle, Offset: target}, eff)
}

func (s *Scroller[T]) checkScrollToLocked(rng Range, eff *effects[T]) {
	if rng.Empty() || rng.RowOffset == s.requested {
		return
	}
	row := rng.RowOffset
	s.requested = row
	eff.scrollToChanged = &row
	eff.onScrollToChanged = s.cfg.OnScrollToChanged
}
