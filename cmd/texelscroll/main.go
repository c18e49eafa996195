// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelscroll/main.go
// Summary: texelscroll command: scroll through a file, a SQLite table or a
// command's output in a virtualized row list.
// Usage: texelscroll -file main.go | -db rows.db [-import file] | -cmd "make test"

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/framegrace/texelscroll/config"
	"github.com/framegrace/texelscroll/internal/devshell"
	"github.com/framegrace/texelscroll/rowrender"
	"github.com/framegrace/texelscroll/scroller"
	"github.com/framegrace/texelscroll/source/filesource"
	"github.com/framegrace/texelscroll/source/ptysource"
	"github.com/framegrace/texelscroll/source/sqlitesource"
	"github.com/framegrace/texelscroll/texelui/rowlist"
)

const dumpTimeout = 10 * time.Second

type options struct {
	file        string
	db          string
	table       string
	column      string
	importPath  string
	command     string
	rowHeight   int
	buffer      int
	scrollTo    int
	delayMs     int
	latencyMs   int
	positioning string
	style       string
	logPath     string
	dump        bool
	noHighlight bool
	saveConfig  bool
	configPath  bool
}

// settings is the merged view of the config file and the flags.
type settings struct {
	scroller  config.ScrollerSettings
	highlight config.HighlightSettings
	sqlite    config.SQLiteSettings
	command   config.CommandSettings
	scrollTo  int
	latency   time.Duration
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("texelscroll: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("texelscroll", flag.ContinueOnError)
	var opts options

	// Sources
	fs.StringVar(&opts.file, "file", "", "Text file to view")
	fs.StringVar(&opts.db, "db", "", "SQLite database to view")
	fs.StringVar(&opts.table, "table", "", "Table to read from -db (default from config)")
	fs.StringVar(&opts.column, "column", "", "Text column to read from -db (default from config)")
	fs.StringVar(&opts.importPath, "import", "", "Append the lines of this file to the -db table first")
	fs.StringVar(&opts.command, "cmd", "", "Command whose output to follow")

	// Engine
	fs.IntVar(&opts.rowHeight, "row-height", 1, "Height of every row in cells")
	fs.IntVar(&opts.buffer, "buffer", 40, "Rows fetched around the visible range")
	fs.IntVar(&opts.scrollTo, "scroll-to", 0, "Row to show first")
	fs.IntVar(&opts.delayMs, "delay-ms", -1, "Fixed settle delay in ms (-1: distance based)")
	fs.IntVar(&opts.latencyMs, "latency-ms", 0, "Artificial fetch latency for -file, in ms")
	fs.StringVar(&opts.positioning, "positioning", "top", "Row placement: top or translate")

	// Output
	fs.StringVar(&opts.style, "style", "", "Chroma style for highlighting (default from config)")
	fs.BoolVar(&opts.noHighlight, "no-highlight", false, "Disable syntax highlighting")
	fs.StringVar(&opts.logPath, "log", "", "Append logs to this file")
	fs.BoolVar(&opts.dump, "dump", false, "Print the first screen and exit")

	// Config
	fs.BoolVar(&opts.saveConfig, "save-config", false, "Write the effective settings to the config file")
	fs.BoolVar(&opts.configPath, "config-path", false, "Print the config file path and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if opts.configPath {
		path, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, path)
		return nil
	}

	interactive := !opts.dump && term.IsTerminal(int(os.Stdout.Fd()))
	closeLog, err := setupLogging(opts.logPath, interactive)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg := config.Get()
	if err := config.Err(); err != nil {
		log.Printf("Config: %v (using defaults)", err)
	}
	set, err := resolveSettings(cfg, fs, opts)
	if err != nil {
		return err
	}
	if opts.saveConfig {
		if err := saveSettings(cfg, set); err != nil {
			return err
		}
	}

	width, height := terminalSize()
	m := mode{opts: opts, set: set, interactive: interactive, width: width, height: height, out: os.Stdout}

	switch {
	case opts.file != "":
		return m.runFile(opts.file)
	case opts.db != "":
		return m.runDB(context.Background())
	case opts.command != "":
		return m.runCommand(context.Background())
	case !term.IsTerminal(int(os.Stdin.Fd())):
		src, err := filesource.Read("stdin", os.Stdin, filesource.WithLatency(set.latency))
		if err != nil {
			return err
		}
		return m.runText("stdin", src)
	default:
		fs.Usage()
		return errors.New("one of -file, -db or -cmd is required")
	}
}

// resolveSettings applies explicitly set flags over the config file.
func resolveSettings(cfg config.Config, fs *flag.FlagSet, opts options) (settings, error) {
	set := settings{
		scroller:  cfg.Scroller(),
		highlight: cfg.Highlight(),
		sqlite:    cfg.SQLite(),
		command:   cfg.Command(),
		scrollTo:  opts.scrollTo,
		latency:   time.Duration(opts.latencyMs) * time.Millisecond,
	}
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "row-height":
			if opts.rowHeight < 1 {
				err = fmt.Errorf("-row-height must be positive, got %d", opts.rowHeight)
			}
			set.scroller.RowHeight = opts.rowHeight
		case "buffer":
			set.scroller.BufferSize = max(opts.buffer, 0)
		case "delay-ms":
			set.scroller.ScrollDelay = time.Duration(opts.delayMs) * time.Millisecond
		case "positioning":
			pos, ok := scroller.ParsePositioning(opts.positioning)
			if !ok {
				err = fmt.Errorf("unknown -positioning %q", opts.positioning)
			}
			set.scroller.Positioning = pos
		case "style":
			set.highlight.Style = opts.style
		case "no-highlight":
			set.highlight.Enabled = !opts.noHighlight
		case "table":
			set.sqlite.Table = opts.table
		case "column":
			set.sqlite.Column = opts.column
		}
	})
	if opts.scrollTo < 0 {
		return set, fmt.Errorf("-scroll-to must not be negative, got %d", opts.scrollTo)
	}
	return set, err
}

// saveSettings persists the merged settings so later runs start from them.
func saveSettings(cfg config.Config, set settings) error {
	next := config.Clone(cfg)
	next.PutScroller(set.scroller)
	next.PutHighlight(set.highlight)
	next.PutSQLite(set.sqlite)
	config.Set(next)
	if err := config.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if path, err := config.Path(); err == nil {
		log.Printf("Config: saved %s", path)
	}
	return nil
}

func setupLogging(path string, interactive bool) (func(), error) {
	if path == "" {
		if interactive {
			// The screen belongs to tcell.
			log.SetOutput(io.Discard)
		}
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return func() { f.Close() }, nil
}

func terminalSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

// mode runs one source either interactively or as a dump.
type mode struct {
	opts        options
	set         settings
	interactive bool
	width       int
	height      int
	out         io.Writer
}

func baseConfig[T any](set settings, src scroller.Source[T], count scroller.Count, height int) scroller.Config[T] {
	return scroller.Config[T]{
		Source:         src,
		RowCount:       count,
		RowHeight:      scroller.FixedHeight(set.scroller.RowHeight),
		ViewportHeight: height,
		ScrollTo:       set.scrollTo,
		Buffer:         set.scroller.Buffer(),
		ScrollDelay:    set.scroller.Delay(),
		Positioning:    set.scroller.Positioning,
		OnError: func(err error) {
			log.Printf("Scroller: %v", err)
		},
	}
}

func textRenderer[T any](set settings, text func(T) string, language, sample string) rowrender.Renderer[T] {
	if !set.highlight.Enabled {
		return rowrender.TextRenderer[T]{Text: text}
	}
	return rowrender.HighlightRenderer[T]{
		Text:        text,
		Highlighter: rowrender.NewHighlighter(language, sample, set.highlight.Style),
	}
}

// show runs cfg full screen under name, or dumps its first frame.
func show[T any](m mode, name string, cfg scroller.Config[T], text func(T) string, renderer rowrender.Renderer[T], wrap func(*viewer[T]) devshell.App) error {
	if !m.interactive {
		return dump(cfg, text, m.out, m.width, dumpTimeout)
	}
	var v *viewer[T]
	devshell.Register(name, func([]string) (devshell.App, error) {
		var err error
		v, err = newViewer(name, cfg, m.width, m.height, rowlist.Options[T]{Renderer: renderer})
		if err != nil {
			return nil, err
		}
		if wrap != nil {
			return wrap(v), nil
		}
		return v, nil
	})
	err := devshell.RunApp(name, nil)
	if v != nil {
		v.list.Close()
	}
	return err
}

func (m mode) runFile(path string) error {
	src, err := filesource.Open(path, filesource.WithLatency(m.set.latency))
	if err != nil {
		return err
	}
	return m.runText(src.Name(), src)
}

func (m mode) runText(name string, src *filesource.Source) error {
	log.Printf("Loaded %s: %d lines, language %q", name, src.Len(), src.Language())
	text := func(l filesource.Line) string { return l.Text }
	cfg := baseConfig[filesource.Line](m.set, src, src.Count(), m.height)
	cfg.Hash = name
	return show(m, name, cfg, text, textRenderer(m.set, text, src.Language(), src.Sample(50)), nil)
}

func (m mode) runDB(ctx context.Context) error {
	src, err := sqlitesource.Open(m.opts.db, m.set.sqlite.Table, m.set.sqlite.Column)
	if err != nil {
		return err
	}
	defer src.Close()

	if m.opts.importPath != "" {
		data, err := os.ReadFile(m.opts.importPath)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		if err := src.Import(ctx, lines); err != nil {
			return err
		}
		log.Printf("Imported %d lines into %s.%s", len(lines), m.set.sqlite.Table, m.set.sqlite.Column)
	}

	count, err := src.RowCount(ctx)
	if err != nil {
		return err
	}
	text := func(r sqlitesource.Row) string { return r.Text }
	cfg := baseConfig[sqlitesource.Row](m.set, src, count, m.height)
	cfg.Hash = m.opts.db
	renderer := rowrender.TextRenderer[sqlitesource.Row]{Text: text}
	return show[sqlitesource.Row](m, "db", cfg, text, renderer, nil)
}

func (m mode) runCommand(ctx context.Context) error {
	src, err := ptysource.Start(ctx, m.set.command.Shell, m.opts.command, m.width, m.height)
	if err != nil {
		return err
	}
	defer src.Close()

	text := func(s string) string { return s }
	if !m.interactive {
		if err := src.Wait(ctx); err != nil {
			log.Printf("Command: %v", err)
		}
	}
	cfg := baseConfig[string](m.set, src, src.Count(), m.height)
	cfg.Hash = m.opts.command
	renderer := rowrender.TextRenderer[string]{Text: text}
	return show(m, "cmd", cfg, text, renderer, func(v *viewer[string]) devshell.App {
		return newFollower(v, src.Updates(), src.Done())
	})
}
