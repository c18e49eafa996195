// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/settings.go
// Summary: Typed views of the config sections used by texelscroll.

package config

import (
	"log"
	"time"

	"github.com/framegrace/texelscroll/scroller"
)

// ScrollerSettings are the engine knobs from the "scroller" section.
type ScrollerSettings struct {
	RowHeight  int
	BufferSize int
	// ScrollDelay is a fixed settle delay. Negative selects the
	// distance-based delay capped at MaxScrollDelay.
	ScrollDelay    time.Duration
	MaxScrollDelay time.Duration
	Positioning    scroller.Positioning
}

// Scroller reads the "scroller" section.
func (c Config) Scroller() ScrollerSettings {
	s := ScrollerSettings{
		RowHeight:      c.GetInt(SectionScroller, "row_height", 1),
		BufferSize:     c.GetInt(SectionScroller, "buffer_size", 40),
		ScrollDelay:    c.GetMillis(SectionScroller, "scroll_delay_ms", -time.Millisecond),
		MaxScrollDelay: c.GetMillis(SectionScroller, "max_scroll_delay_ms", 2*time.Millisecond),
	}
	if s.RowHeight < 1 {
		log.Printf("Config: scroller.row_height %d is invalid, using 1", s.RowHeight)
		s.RowHeight = 1
	}
	if s.BufferSize < 0 {
		s.BufferSize = 0
	}
	name := c.GetString(SectionScroller, "positioning", "top")
	pos, ok := scroller.ParsePositioning(name)
	if !ok {
		log.Printf("Config: unknown scroller.positioning %q, using top", name)
	}
	s.Positioning = pos
	return s
}

// Delay returns the settle delay these settings describe.
func (s ScrollerSettings) Delay() scroller.Delay {
	if s.ScrollDelay >= 0 {
		return scroller.FixedDelay(s.ScrollDelay)
	}
	maxUnits := int(s.MaxScrollDelay / scroller.DelayUnit)
	return scroller.ComputedDelay(func(from, to int) time.Duration {
		dist := from - to
		if dist < 0 {
			dist = -dist
		}
		return time.Duration(min(dist, maxUnits)) * scroller.DelayUnit
	})
}

// Buffer returns the prefetch buffer these settings describe.
func (s ScrollerSettings) Buffer() scroller.Buffer {
	return scroller.FixedBuffer(s.BufferSize)
}

// PutScroller writes s back into the "scroller" section.
func (c Config) PutScroller(s ScrollerSettings) {
	c.put(SectionScroller, Section{
		"row_height":          s.RowHeight,
		"buffer_size":         s.BufferSize,
		"scroll_delay_ms":     millis(s.ScrollDelay),
		"max_scroll_delay_ms": millis(s.MaxScrollDelay),
		"positioning":         s.Positioning.String(),
	})
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// HighlightSettings select the syntax highlighting of text rows.
type HighlightSettings struct {
	Enabled bool
	Style   string
}

// Highlight reads the "highlight" section.
func (c Config) Highlight() HighlightSettings {
	return HighlightSettings{
		Enabled: c.GetBool(SectionHighlight, "enabled", true),
		Style:   c.GetString(SectionHighlight, "style", "catppuccin-mocha"),
	}
}

// PutHighlight writes h back into the "highlight" section.
func (c Config) PutHighlight(h HighlightSettings) {
	c.put(SectionHighlight, Section{"enabled": h.Enabled, "style": h.Style})
}

// SQLiteSettings name the table and column a database source reads.
type SQLiteSettings struct {
	Table  string
	Column string
}

// SQLite reads the "sqlite" section.
func (c Config) SQLite() SQLiteSettings {
	return SQLiteSettings{
		Table:  c.GetString(SectionSQLite, "table", "rows"),
		Column: c.GetString(SectionSQLite, "column", "line"),
	}
}

// PutSQLite writes s back into the "sqlite" section.
func (c Config) PutSQLite(s SQLiteSettings) {
	c.put(SectionSQLite, Section{"table": s.Table, "column": s.Column})
}

// CommandSettings configure the command row source.
type CommandSettings struct {
	Shell string
}

// Command reads the "command" section.
func (c Config) Command() CommandSettings {
	return CommandSettings{Shell: c.GetString(SectionCommand, "shell", "/bin/sh")}
}

func (c Config) put(sectionName string, values Section) {
	section := c.Section(sectionName)
	if section == nil {
		section = make(Section)
		c[sectionName] = section
	}
	for k, v := range values {
		section[k] = v
	}
}
