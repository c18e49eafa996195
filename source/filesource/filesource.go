// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: source/filesource/filesource.go
// Summary: Row source serving the lines of a text file.

package filesource

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	enry "github.com/go-enry/go-enry/v2"

	"github.com/framegrace/texelscroll/scroller"
)

// ErrBinary is returned for files that do not look like text.
var ErrBinary = errors.New("filesource: binary content")

// maxLineBytes bounds a single line; longer lines fail the load.
const maxLineBytes = 1 << 20

// Line is one row of a file.
type Line struct {
	Number int // 1-based
	Text   string
}

// Source holds a file's lines in memory.
type Source struct {
	name     string
	lines    []Line
	language string
	latency  time.Duration
}

// Option configures a Source.
type Option func(*Source)

// WithLatency delays every fetch by d and resolves it asynchronously.
func WithLatency(d time.Duration) Option {
	return func(s *Source) { s.latency = d }
}

// Open reads the file at path.
func Open(path string, opts ...Option) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("filesource: %w", err)
	}
	defer f.Close()
	return Read(filepath.Base(path), f, opts...)
}

// Read loads all lines from r. name is used for language detection.
func Read(name string, r io.Reader, opts ...Option) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("filesource: read %s: %w", name, err)
	}
	if enry.IsBinary(data) {
		return nil, fmt.Errorf("%w: %s", ErrBinary, name)
	}

	s := &Source{name: name, language: enry.GetLanguage(name, data)}
	for _, opt := range opts {
		opt(s)
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		s.lines = append(s.lines, Line{Number: len(s.lines) + 1, Text: sc.Text()})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("filesource: scan %s: %w", name, err)
	}
	return s, nil
}

// Name returns the file name.
func (s *Source) Name() string { return s.name }

// Language returns the detected language, or "" when unknown.
func (s *Source) Language() string { return s.language }

// Len returns the number of lines.
func (s *Source) Len() int { return len(s.lines) }

// Count returns the row count for a Scroller.
func (s *Source) Count() scroller.Count { return scroller.FixedCount(len(s.lines)) }

// Sample returns up to n leading lines joined by newlines.
func (s *Source) Sample(n int) string {
	var b bytes.Buffer
	for i := range min(n, len(s.lines)) {
		b.WriteString(s.lines[i].Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// Fetch implements scroller.Source.
func (s *Source) Fetch(ctx context.Context, start, count int) scroller.Fetch[Line] {
	rows := s.slice(start, count)
	if s.latency <= 0 {
		return scroller.Ready(rows)
	}
	latency := s.latency
	return scroller.Deferred(ctx, func(ctx context.Context) ([]Line, error) {
		timer := time.NewTimer(latency)
		defer timer.Stop()
		select {
		case <-timer.C:
			return rows, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
}

func (s *Source) slice(start, count int) []Line {
	start = min(max(start, 0), len(s.lines))
	end := min(start+max(count, 0), len(s.lines))
	return s.lines[start:end]
}
