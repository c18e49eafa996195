// Copyright 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/devshell/runner.go
// Summary: Standalone tcell harness that runs one scrolling app full screen.

package devshell

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// App is a full-screen widget driven by the runner.
type App interface {
	Resize(cols, rows int)
	Draw(screen tcell.Screen)
	// HandleKey returns true when the key was consumed.
	HandleKey(ev *tcell.EventKey) bool
	SetRefreshNotifier(ch chan<- bool)
}

// MouseHandler is implemented by apps that accept mouse input.
type MouseHandler interface {
	HandleMouse(ev *tcell.EventMouse) bool
}

// Runner is implemented by apps with background work. Run is started in its
// own goroutine after the first draw; Stop is called when the runner exits.
type Runner interface {
	Run() error
	Stop()
}

// Builder constructs an App, optionally using CLI args.
type Builder func(args []string) (App, error)

var (
	registryMu sync.Mutex
	registry   = map[string]Builder{}
)

// Register makes a builder available to RunApp under name.
func Register(name string, b Builder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = b
}

// Names lists the registered builders.
func Names() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var screenFactory = tcell.NewScreen

// SetScreenFactory overrides the screen factory used by Run. Passing nil restores the default.
func SetScreenFactory(factory func() (tcell.Screen, error)) {
	if factory == nil {
		screenFactory = tcell.NewScreen
		return
	}
	screenFactory = factory
}

// Run executes the provided builder inside a local tcell screen. It returns
// when the user presses Ctrl-C, when an unhandled 'q' is typed, or when the
// app's Run returns.
func Run(builder Builder, args []string) error {
	app, err := builder(args)
	if err != nil {
		return err
	}

	screen, err := screenFactory()
	if err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("screen init: %w", err)
	}
	defer screen.Fini()
	screen.Clear()
	screen.EnableMouse()
	defer screen.DisableMouse()

	width, height := screen.Size()
	app.Resize(width, height)
	refreshCh := make(chan bool, 1)
	app.SetRefreshNotifier(refreshCh)

	draw := func() {
		screen.Clear()
		app.Draw(screen)
		screen.Show()
	}

	draw()

	runErr := make(chan error, 1)
	if r, ok := app.(Runner); ok {
		go func() {
			runErr <- r.Run()
			screen.PostEvent(tcell.NewEventInterrupt(nil))
		}()
		defer r.Stop()
	}

	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			select {
			case <-refreshCh:
				screen.PostEvent(tcell.NewEventInterrupt(nil))
			case <-quit:
				return
			}
		}
	}()

	for {
		select {
		case err := <-runErr:
			return err
		default:
		}

		ev := screen.PollEvent()
		switch tev := ev.(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			draw()
		case *tcell.EventResize:
			w, h := tev.Size()
			app.Resize(w, h)
			screen.Sync()
			draw()
		case *tcell.EventKey:
			if tev.Key() == tcell.KeyCtrlC {
				return nil
			}
			if app.HandleKey(tev) {
				draw()
				continue
			}
			if tev.Key() == tcell.KeyRune && tev.Rune() == 'q' {
				return nil
			}
		case *tcell.EventMouse:
			if mh, ok := app.(MouseHandler); ok && mh.HandleMouse(tev) {
				draw()
			}
		}
	}
}

// RunApp finds a registered builder by name and runs it.
func RunApp(name string, args []string) error {
	registryMu.Lock()
	buildApp, ok := registry[name]
	registryMu.Unlock()
	if !ok {
		return fmt.Errorf("unknown app %q", name)
	}
	return Run(buildApp, args)
}
