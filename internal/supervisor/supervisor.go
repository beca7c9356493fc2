// Package supervisor owns the lifecycle of the background serial monitor
// process: at most one instance alive, killed before every respawn, and
// stopped with a graceful signal that is never waited on.
package supervisor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/idfrun/idfrun/internal/errors"
	"github.com/idfrun/idfrun/internal/logger"
)

// MonitorSpec is everything the monitor process needs to run.
type MonitorSpec struct {
	Port          string
	Baud          int
	SymbolFile    string
	Backoff       time.Duration
	Color         string
	Resolver      string
	ResolverFlags []string
	// MaxFailures and Cooldown tune the resolver circuit breaker.
	MaxFailures int
	Cooldown    time.Duration
}

// MonitorArgs renders spec as arguments for the hidden "monitor" command.
func MonitorArgs(spec MonitorSpec) []string {
	args := []string{"monitor", spec.Port}
	if spec.Baud > 0 {
		args = append(args, "--baud", strconv.Itoa(spec.Baud))
	}
	if spec.SymbolFile != "" {
		args = append(args, "--elf", spec.SymbolFile)
	}
	if spec.Backoff > 0 {
		args = append(args, "--backoff", spec.Backoff.String())
	}
	if spec.Color != "" {
		args = append(args, "--color", spec.Color)
	}
	if spec.Resolver != "" {
		args = append(args, "--resolver", spec.Resolver)
	}
	if spec.ResolverFlags != nil {
		// "=" form: values such as "-fe" must not parse as flags.
		args = append(args, "--resolver-flags="+strings.Join(spec.ResolverFlags, ","))
	}
	if spec.MaxFailures > 0 {
		args = append(args, "--resolver-max-failures", strconv.Itoa(spec.MaxFailures))
	}
	if spec.Cooldown > 0 {
		args = append(args, "--resolver-cooldown", spec.Cooldown.String())
	}
	return args
}

// Process is a handle on one spawned monitor.
type Process interface {
	// Terminate asks the process to exit and returns without waiting.
	Terminate() error
	// Kill ends the process immediately.
	Kill() error
	Pid() int
}

// Spawner starts monitor processes.
type Spawner interface {
	Spawn(spec MonitorSpec) (Process, error)
}

// Supervisor tracks the current monitor process. It is owned by the
// console goroutine and is not safe for concurrent use.
type Supervisor struct {
	spec    MonitorSpec
	spawner Spawner
	log     logger.Logger

	proc    Process
	running bool
}

// New creates a stopped Supervisor.
func New(spec MonitorSpec, spawner Spawner, log logger.Logger) *Supervisor {
	if log == nil {
		log = logger.Noop()
	}
	return &Supervisor{spec: spec, spawner: spawner, log: log}
}

// Port is the device the monitor reads from.
func (s *Supervisor) Port() string {
	return s.spec.Port
}

// Start kills any tracked process outright, then spawns a fresh one.
// A graceful stop may not have taken effect yet, and the old process
// must not keep the port open.
func (s *Supervisor) Start() error {
	if s.proc != nil {
		if err := s.proc.Kill(); err != nil {
			s.log.Debug("kill monitor pid %d: %v", s.proc.Pid(), err)
		}
		s.proc = nil
		s.running = false
	}

	proc, err := s.spawner.Spawn(s.spec)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrMonitor,
			fmt.Sprintf("Couldn't start the serial monitor on %s", s.spec.Port),
			"Press R to retry once the problem is fixed.")
	}
	s.proc = proc
	s.running = true
	s.log.Debug("monitor started on %s (pid %d)", s.spec.Port, proc.Pid())
	return nil
}

// Stop requests a graceful exit from the tracked process without waiting.
// Stopping an already stopped supervisor does nothing.
func (s *Supervisor) Stop() error {
	if s.proc == nil || !s.running {
		return nil
	}
	s.running = false
	if err := s.proc.Terminate(); err != nil {
		return errors.WrapWithCode(err, errors.ErrMonitor,
			fmt.Sprintf("Couldn't stop the serial monitor (pid %d)", s.proc.Pid()),
			"")
	}
	s.log.Debug("monitor stop requested (pid %d)", s.proc.Pid())
	return nil
}
