// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelscroll/dump.go
// Summary: Headless mode printing the first settled frame as plain text.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texelscroll/scroller"
)

var errLoadTimeout = errors.New("rows did not load in time")

// dump mounts a Scroller without a host, waits until every visible row has
// loaded and writes the rows, clipped to width, to w.
func dump[T any](cfg scroller.Config[T], text func(T) string, w io.Writer, width int, timeout time.Duration) error {
	changed := make(chan struct{}, 1)
	failed := make(chan error, 1)
	cfg.Viewport = nil
	cfg.OnFrame = func(scroller.Frame[T]) {
		select {
		case changed <- struct{}{}:
		default:
		}
	}
	cfg.OnError = func(err error) {
		select {
		case failed <- err:
		default:
		}
	}

	s, err := scroller.New(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	s.Mount()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		frame := s.Frame()
		if loaded(frame) {
			return writeFrame(w, frame, text, width)
		}
		select {
		case <-changed:
		case err := <-failed:
			return err
		case <-deadline.C:
			return errLoadTimeout
		}
	}
}

func loaded[T any](f scroller.Frame[T]) bool {
	for _, r := range f.Rows {
		if r.Blank {
			return false
		}
	}
	return true
}

func writeFrame[T any](w io.Writer, f scroller.Frame[T], text func(T) string, width int) error {
	bw := bufio.NewWriter(w)
	written := 0
	for _, row := range f.Rows {
		lines := strings.Split(text(row.Data), "\n")
		for i := range row.Height {
			if written == f.ViewportHeight {
				return bw.Flush()
			}
			line := ""
			if i < len(lines) {
				line = strings.ReplaceAll(strings.TrimRight(lines[i], "\r"), "\t", "    ")
			}
			fmt.Fprintln(bw, strings.TrimRight(runewidth.Truncate(line, width, ""), " "))
			written++
		}
	}
	return bw.Flush()
}
