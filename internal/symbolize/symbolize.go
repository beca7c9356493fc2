// Package symbolize resolves firmware backtrace addresses to source
// locations by running an external addr2line-style tool against the
// application's ELF file.
package symbolize

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/idfrun/idfrun/internal/errors"
	"github.com/idfrun/idfrun/internal/logger"
	"github.com/sony/gobreaker/v2"
)

// Defaults for the ESP32 toolchain.
const (
	DefaultCommand     = "xtensa-esp32-elf-addr2line"
	DefaultMaxFailures = 3
	DefaultCooldown    = 30 * time.Second
)

// DefaultFlags asks addr2line for function names (-f) from an ELF (-e).
var DefaultFlags = []string{"-fe"}

// Config controls which resolver runs and when it is given up on.
type Config struct {
	// Command is the resolver executable.
	Command string
	// Flags go between the command and the symbol file.
	Flags []string
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// Cooldown is how long the breaker stays open before one probe is allowed.
	Cooldown time.Duration
}

// RunFunc executes name with args and returns its standard output.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Symbolizer runs the resolver behind a circuit breaker so a missing or
// broken tool is not spawned again for every backtrace the device prints.
type Symbolizer struct {
	cfg     Config
	run     RunFunc
	breaker *gobreaker.CircuitBreaker[string]
	log     logger.Logger
}

// Option configures a Symbolizer.
type Option func(*Symbolizer)

// WithRunner replaces process execution, for tests.
func WithRunner(run RunFunc) Option {
	return func(s *Symbolizer) { s.run = run }
}

// New creates a Symbolizer. Zero config fields take the ESP32 defaults.
func New(cfg Config, log logger.Logger, opts ...Option) *Symbolizer {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	if cfg.Flags == nil {
		cfg.Flags = DefaultFlags
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = DefaultMaxFailures
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if log == nil {
		log = logger.Noop()
	}

	s := &Symbolizer{
		cfg: cfg,
		run: runCommand,
		log: log,
	}
	for _, opt := range opts {
		opt(s)
	}

	maxFailures := cfg.MaxFailures
	s.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "symbolize:" + cfg.Command,
		MaxRequests: 1,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("resolver %s: %s -> %s", name, from.String(), to.String())
		},
		IsSuccessful: func(err error) bool {
			return err == nil || stderrors.Is(err, context.Canceled)
		},
	})
	return s
}

// Resolve runs "<command> <flags...> <symbolFile> <addresses...>" and
// returns its complete standard output.
func (s *Symbolizer) Resolve(ctx context.Context, addresses []string, symbolFile string) (string, error) {
	if len(addresses) == 0 {
		return "", errors.New(errors.ErrSymbolize, "No addresses to resolve", "")
	}

	args := make([]string, 0, len(s.cfg.Flags)+1+len(addresses))
	args = append(args, s.cfg.Flags...)
	args = append(args, symbolFile)
	args = append(args, addresses...)

	out, err := s.breaker.Execute(func() (string, error) {
		s.log.Debug("running %s %s", s.cfg.Command, strings.Join(args, " "))
		stdout, err := s.run(ctx, s.cfg.Command, args...)
		if err != nil {
			// A cancelled run reports as "signal: killed", not as a resolver fault.
			if ctx.Err() != nil {
				return "", fmt.Errorf("%w: %v", context.Canceled, err)
			}
			return "", err
		}
		return string(stdout), nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return "", errors.WrapWithCode(err, errors.ErrSymbolize,
				fmt.Sprintf("Skipped %s after repeated failures", s.cfg.Command),
				fmt.Sprintf("Resolution resumes after %s", s.cfg.Cooldown))
		}
		return "", errors.WrapWithCode(err, errors.ErrSymbolize,
			fmt.Sprintf("Couldn't resolve backtrace with %s", s.cfg.Command),
			"Make sure the toolchain's addr2line is on PATH and the ELF file exists.")
	}
	return out, nil
}

// State reports the breaker state, for diagnostics and tests.
func (s *Symbolizer) State() gobreaker.State {
	return s.breaker.State()
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
