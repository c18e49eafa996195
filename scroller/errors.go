// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: scroller/errors.go
// Summary: Error types surfaced by the scroller engine.

package scroller

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every *ConfigError.
	ErrInvalidConfig = errors.New("scroller: invalid configuration")

	// ErrFetch is wrapped by every *FetchError.
	ErrFetch = errors.New("scroller: fetch failed")

	// ErrClosed is returned by operations on a closed Scroller.
	ErrClosed = errors.New("scroller: closed")
)

// ConfigError reports a missing or malformed configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("scroller: config %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// HeightError reports a row height the layout cannot use.
type HeightError struct {
	Row    int
	Height int
}

func (e *HeightError) Error() string {
	return fmt.Sprintf("scroller: row %d has invalid height %d", e.Row, e.Height)
}

// FetchError reports a failed page fetch. The previous page stays live.
type FetchError struct {
	Start int
	Count int
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("scroller: fetch rows [%d,+%d): %v", e.Start, e.Count, e.Err)
}

// Unwrap exposes both ErrFetch and the source's own error to errors.Is.
func (e *FetchError) Unwrap() []error { return []error{ErrFetch, e.Err} }
