// Package console is the interactive foreground loop: it reads one key at a
// time and dispatches flash, build, clean, menuconfig, monitor reload and
// quit while the monitor streams device output in the background.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/idfrun/idfrun/internal/errors"
	"github.com/idfrun/idfrun/internal/logger"
	"github.com/idfrun/idfrun/internal/ui"
)

// Monitor is the supervisor surface the console needs.
type Monitor interface {
	Start() error
	Stop() error
}

// Runner runs a toolchain subcommand with exclusive port access.
type Runner interface {
	RunExclusive(ctx context.Context, args []string) (int, error)
}

// Loop dispatches operator commands. Run it from a single goroutine.
type Loop struct {
	monitor    Monitor
	runner     Runner
	keys       KeyReader
	interrupts <-chan struct{}
	display    *ui.PhaseDisplay
	log        logger.Logger
	describe   func(args []string) string
	now        func() time.Time
}

// Option configures a Loop.
type Option func(*Loop)

// WithInterrupts delivers operator interrupts (SIGINT, Ctrl+C) to the loop.
func WithInterrupts(ch <-chan struct{}) Option {
	return func(l *Loop) { l.interrupts = ch }
}

// WithOutput sets where phase lines are written.
func WithOutput(w io.Writer) Option {
	return func(l *Loop) { l.display = ui.NewPhaseDisplay(w) }
}

// WithLogger sets the logger for interrupts and failed actions.
func WithLogger(log logger.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// WithDescribe sets how a toolchain invocation is named in phase lines.
func WithDescribe(fn func(args []string) string) Option {
	return func(l *Loop) { l.describe = fn }
}

// WithClock replaces time.Now when timing console actions.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

// New creates a Loop.
func New(monitor Monitor, runner Runner, keys KeyReader, opts ...Option) *Loop {
	l := &Loop{
		monitor:  monitor,
		runner:   runner,
		keys:     keys,
		display:  ui.NewPhaseDisplay(os.Stdout),
		log:      logger.Noop(),
		describe: func(args []string) string { return strings.Join(args, " ") },
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type keyResult struct {
	cmd Command
	ok  bool
}

// Run reads and dispatches commands until quit or ctx is cancelled. The
// monitor is stopped on the way out.
func (l *Loop) Run(ctx context.Context) error {
	requests := make(chan struct{}, 1)
	results := make(chan keyResult)
	done := make(chan struct{})
	defer close(done)

	// Key reads happen only on request, so nothing reads stdin while the
	// toolchain owns the terminal.
	go func() {
		for {
			select {
			case <-requests:
			case <-done:
				return
			}
			cmd, ok := l.keys.ReadCommand()
			select {
			case results <- keyResult{cmd: cmd, ok: ok}:
			case <-done:
				return
			}
		}
	}()

	pending := false
	for {
		if !pending {
			requests <- struct{}{}
			pending = true
		}

		select {
		case <-ctx.Done():
			l.stopMonitor()
			return nil
		case <-l.interrupts:
			l.log.Info("interrupted, stopping monitor")
			l.stopMonitor()
			l.display.RenderSkipped("monitor stopped", "interrupt")
		case res := <-results:
			pending = false
			if !res.ok {
				continue
			}
			quit, err := l.Dispatch(ctx, res.cmd)
			if err != nil {
				l.log.Error("%s: %s", res.cmd, errors.OneLine(err))
			}
			if quit {
				return nil
			}
		}
	}
}

// Dispatch performs one command. quit reports whether the loop should end.
func (l *Loop) Dispatch(ctx context.Context, cmd Command) (quit bool, err error) {
	switch cmd {
	case CommandFlash, CommandBuild, CommandClean, CommandMenu:
		return false, l.runToolchain(ctx, cmd.ToolchainArgs())
	case CommandReload:
		start := l.now()
		l.stopMonitor()
		if err := l.monitor.Start(); err != nil {
			l.display.RenderFailed("monitor reload", "", l.now().Sub(start))
			return false, err
		}
		l.display.RenderSuccess("monitor reload", l.now().Sub(start))
		return false, nil
	case CommandQuit:
		l.stopMonitor()
		return true, nil
	}
	return false, nil
}

func (l *Loop) runToolchain(ctx context.Context, args []string) error {
	name := l.describe(args)
	l.display.CommandPrompt(name)

	start := l.now()
	code, err := l.runner.RunExclusive(ctx, args)
	elapsed := l.now().Sub(start)

	switch {
	case err != nil:
		l.display.RenderFailed(name, "failed", elapsed)
		return err
	case code != 0:
		l.display.RenderFailed(name, fmt.Sprintf("exited %d", code), elapsed)
	default:
		l.display.RenderSuccess(name, elapsed)
	}
	return nil
}

func (l *Loop) stopMonitor() {
	if err := l.monitor.Stop(); err != nil {
		l.log.Warn("stopping monitor: %s", errors.OneLine(err))
	}
}
