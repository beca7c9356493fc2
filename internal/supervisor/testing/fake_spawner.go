// Package testing provides test doubles for the supervisor package.
package testing

import (
	"sync"

	"github.com/idfrun/idfrun/internal/errors"
	"github.com/idfrun/idfrun/internal/supervisor"
)

// FakeProcess records the signals a supervisor sends it.
type FakeProcess struct {
	mu         sync.Mutex
	pid        int
	Terminates int
	Kills      int
}

// Pid implements supervisor.Process.
func (p *FakeProcess) Pid() int {
	return p.pid
}

// Terminate implements supervisor.Process.
func (p *FakeProcess) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Terminates++
	return nil
}

// Kill implements supervisor.Process.
func (p *FakeProcess) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Kills++
	return nil
}

// Counts returns how many times the process was terminated and killed.
func (p *FakeProcess) Counts() (terminates, kills int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Terminates, p.Kills
}

// FakeSpawner hands out FakeProcesses and remembers every spawn.
type FakeSpawner struct {
	mu sync.Mutex

	ShouldFail bool
	FailError  error

	Specs     []supervisor.MonitorSpec
	Processes []*FakeProcess
	nextPid   int
}

// NewFakeSpawner creates a spawner that succeeds by default.
func NewFakeSpawner() *FakeSpawner {
	return &FakeSpawner{nextPid: 1000}
}

// Spawn implements supervisor.Spawner.
func (s *FakeSpawner) Spawn(spec supervisor.MonitorSpec) (supervisor.Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Specs = append(s.Specs, spec)
	if s.ShouldFail {
		if s.FailError != nil {
			return nil, s.FailError
		}
		return nil, errors.New(errors.ErrMonitor, "Spawn failed", "Configured to fail in test")
	}

	s.nextPid++
	p := &FakeProcess{pid: s.nextPid}
	s.Processes = append(s.Processes, p)
	return p, nil
}

// SetFail makes subsequent spawns fail with err (or a default error).
func (s *FakeSpawner) SetFail(err error) *FakeSpawner {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ShouldFail = true
	s.FailError = err
	return s
}

// SpawnCount returns the number of Spawn calls, failed ones included.
func (s *FakeSpawner) SpawnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Specs)
}

// Last returns the most recently spawned process, or nil.
func (s *FakeSpawner) Last() *FakeProcess {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Processes) == 0 {
		return nil
	}
	return s.Processes[len(s.Processes)-1]
}
