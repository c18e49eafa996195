// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Default values registered for every configuration section.

package config

const (
	SectionScroller  = "scroller"
	SectionHighlight = "highlight"
	SectionSQLite    = "sqlite"
	SectionCommand   = "command"
)

func applyDefaults(cfg Config) {
	if cfg == nil {
		return
	}
	cfg.RegisterDefaults(SectionScroller, Section{
		"row_height":          1,
		"buffer_size":         40,
		"scroll_delay_ms":     -1,
		"max_scroll_delay_ms": 2,
		"positioning":         "top",
	})
	cfg.RegisterDefaults(SectionHighlight, Section{
		"enabled": true,
		"style":   "catppuccin-mocha",
	})
	cfg.RegisterDefaults(SectionSQLite, Section{
		"table":  "rows",
		"column": "line",
	})
	cfg.RegisterDefaults(SectionCommand, Section{
		"shell": "/bin/sh",
	})
}
