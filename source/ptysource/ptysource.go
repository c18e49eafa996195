// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: source/ptysource/ptysource.go
// Summary: Row source collecting the output lines of a command run under a pty.
//
// Architecture:
//
//	The command runs attached to a pseudo terminal so it behaves as it would
//	interactively (line buffering, colour detection). A reader goroutine splits
//	the output into lines, strips control sequences and appends them. The row
//	count grows while the command runs; Updates() tells the host when to
//	re-read it.

package ptysource

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"

	"github.com/creack/pty"

	"github.com/framegrace/texelscroll/scroller"
)

// ansiRe matches CSI and OSC sequences.
var ansiRe = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)

// Source runs a command and serves its output as rows.
type Source struct {
	cmd  *exec.Cmd
	ptmx *os.File

	mu      sync.Mutex
	lines   []string
	waitErr error

	updates chan struct{}
	done    chan struct{}
}

// Start runs command through shell -c on a pty of the given size.
func Start(ctx context.Context, shell, command string, cols, rows int) (*Source, error) {
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Env = append(os.Environ(), "TERM=dumb")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(max(rows, 1)),
		Cols: uint16(max(cols, 1)),
	})
	if err != nil {
		return nil, fmt.Errorf("ptysource: start %q: %w", command, err)
	}

	s := &Source{
		cmd:     cmd,
		ptmx:    ptmx,
		updates: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

func (s *Source) readLoop() {
	defer close(s.done)

	r := bufio.NewReaderSize(s.ptmx, 64*1024)
	for {
		line, err := r.ReadString('\n')
		if line != "" && (err == nil || strings.TrimSpace(line) != "") {
			s.append(clean(line))
		}
		if err != nil {
			// Linux reports EIO once the child side closes.
			break
		}
	}

	werr := s.cmd.Wait()
	if werr != nil {
		log.Printf("ptysource: %s: %v", s.cmd.Path, werr)
	}
	s.mu.Lock()
	s.waitErr = werr
	s.mu.Unlock()
	s.ptmx.Close()
	s.signal()
}

func (s *Source) append(line string) {
	s.mu.Lock()
	s.lines = append(s.lines, line)
	s.mu.Unlock()
	s.signal()
}

func (s *Source) signal() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func clean(line string) string {
	line = strings.TrimRight(line, "\r\n")
	line = ansiRe.ReplaceAllString(line, "")
	return strings.Map(func(r rune) rune {
		if r == '\t' || r >= 0x20 && r != 0x7f {
			return r
		}
		return -1
	}, line)
}

// Len returns the number of lines collected so far.
func (s *Source) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Count returns a live row count for a Scroller.
func (s *Source) Count() scroller.Count {
	return scroller.ComputedCount(s.Len)
}

// Updates is signalled (coalesced) whenever lines arrive or the command ends.
func (s *Source) Updates() <-chan struct{} { return s.updates }

// Done is closed once the command has exited and all output is read.
func (s *Source) Done() <-chan struct{} { return s.done }

// Fetch implements scroller.Source.
func (s *Source) Fetch(ctx context.Context, start, count int) scroller.Fetch[string] {
	s.mu.Lock()
	defer s.mu.Unlock()
	start = min(max(start, 0), len(s.lines))
	end := min(start+max(count, 0), len(s.lines))
	rows := make([]string, end-start)
	copy(rows, s.lines[start:end])
	return scroller.Ready(rows)
}

// Resize changes the pty window size.
func (s *Source) Resize(cols, rows int) error {
	return pty.Setsize(s.ptmx, &pty.Winsize{Rows: uint16(max(rows, 1)), Cols: uint16(max(cols, 1))})
}

// Wait blocks until the command exits or ctx is done.
func (s *Source) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.waitErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close kills the command and waits for the reader to finish.
func (s *Source) Close() error {
	select {
	case <-s.done:
		return nil
	default:
	}
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.ptmx.Close()
	<-s.done
	return nil
}
