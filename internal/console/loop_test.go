package console

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/idfrun/idfrun/internal/logger"
	"github.com/idfrun/idfrun/internal/supervisor"
	supervisortesting "github.com/idfrun/idfrun/internal/supervisor/testing"
	"github.com/idfrun/idfrun/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMonitor struct {
	starts, stops int
	startErr      error
}

func (m *countingMonitor) Start() error {
	m.starts++
	return m.startErr
}

func (m *countingMonitor) Stop() error {
	m.stops++
	return nil
}

type fakeRunner struct {
	calls [][]string
	codes map[string]int
	err   error
}

func (r *fakeRunner) RunExclusive(_ context.Context, args []string) (int, error) {
	r.calls = append(r.calls, args)
	return r.codes[strings.Join(args, " ")], r.err
}

// scriptedKeys replays results in order; once exhausted it reads quit.
type scriptedKeys struct {
	results chan keyResult
}

func script(results ...keyResult) *scriptedKeys {
	ch := make(chan keyResult, len(results))
	for _, r := range results {
		ch <- r
	}
	close(ch)
	return &scriptedKeys{results: ch}
}

func (s *scriptedKeys) ReadCommand() (Command, bool) {
	r, ok := <-s.results
	if !ok {
		return CommandQuit, true
	}
	return r.cmd, r.ok
}

func key(cmd Command) keyResult { return keyResult{cmd: cmd, ok: true} }

func newTestLoop(t *testing.T, m Monitor, r Runner, keys KeyReader, opts ...Option) (*Loop, *bytes.Buffer, *logger.BufferLogger) {
	t.Helper()
	ui.DisableColors()
	var out bytes.Buffer
	log := logger.NewBufferLogger()
	base := []Option{
		WithOutput(&out),
		WithLogger(log),
		WithDescribe(func(args []string) string { return "idf.py " + strings.Join(args, " ") }),
	}
	return New(m, r, keys, append(base, opts...)...), &out, log
}

func TestDispatch_ReloadStopsAndStartsOnce(t *testing.T) {
	m := &countingMonitor{}
	l, out, _ := newTestLoop(t, m, &fakeRunner{}, script())

	quit, err := l.Dispatch(context.Background(), CommandReload)

	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, 1, m.stops)
	assert.Equal(t, 1, m.starts)
	assert.Contains(t, out.String(), "● monitor reload")
}

func TestDispatch_ReloadWithSupervisor(t *testing.T) {
	spawner := supervisortesting.NewFakeSpawner()
	sup := supervisor.New(supervisor.MonitorSpec{Port: "/dev/ttyUSB0"}, spawner, nil)
	require.NoError(t, sup.Start())
	first := spawner.Last()

	l, _, _ := newTestLoop(t, sup, &fakeRunner{}, script())
	_, err := l.Dispatch(context.Background(), CommandReload)

	require.NoError(t, err)
	terminates, _ := first.Counts()
	assert.Equal(t, 1, terminates)
	assert.Equal(t, 2, spawner.SpawnCount())
}

func TestDispatch_ReloadStartFailure(t *testing.T) {
	m := &countingMonitor{startErr: stderrors.New("spawn failed")}
	l, out, _ := newTestLoop(t, m, &fakeRunner{}, script())

	quit, err := l.Dispatch(context.Background(), CommandReload)

	assert.Error(t, err)
	assert.False(t, quit)
	assert.Contains(t, out.String(), "✗ monitor reload")
}

func TestDispatch_None(t *testing.T) {
	m := &countingMonitor{}
	r := &fakeRunner{}
	l, out, _ := newTestLoop(t, m, r, script())

	quit, err := l.Dispatch(context.Background(), CommandNone)

	require.NoError(t, err)
	assert.False(t, quit)
	assert.Zero(t, m.starts+m.stops)
	assert.Empty(t, r.calls)
	assert.Empty(t, out.String())
}

func TestRun_DispatchesToolchainCommands(t *testing.T) {
	m := &countingMonitor{}
	r := &fakeRunner{codes: map[string]int{"build": 2}}
	keys := script(
		key(CommandFlash),
		key(CommandBuild),
		keyResult{ok: false},
		key(CommandClean),
		key(CommandMenu),
	)
	l, out, _ := newTestLoop(t, m, r, keys)

	require.NoError(t, l.Run(context.Background()))

	assert.Equal(t, [][]string{{"flash"}, {"build"}, {"clean"}, {"menuconfig"}}, r.calls)
	assert.Contains(t, out.String(), "$ idf.py flash")
	assert.Contains(t, out.String(), "● idf.py flash")
	assert.Contains(t, out.String(), "✗ idf.py build exited 2")
	assert.Equal(t, 1, m.stops, "quit stops the monitor")
}

func TestRun_ErrorsAreLoggedAndLoopContinues(t *testing.T) {
	m := &countingMonitor{}
	r := &fakeRunner{err: stderrors.New("exec: \"idf.py\": not found")}
	l, out, log := newTestLoop(t, m, r, script(key(CommandFlash), key(CommandBuild)))

	require.NoError(t, l.Run(context.Background()))

	assert.Len(t, r.calls, 2)
	assert.True(t, log.HasLevel("error"))
	assert.Contains(t, out.String(), "✗ idf.py flash failed")
}

func TestRun_QuitEndsLoop(t *testing.T) {
	m := &countingMonitor{}
	r := &fakeRunner{}
	l, _, _ := newTestLoop(t, m, r, script(key(CommandQuit), key(CommandFlash)))

	require.NoError(t, l.Run(context.Background()))

	assert.Empty(t, r.calls)
	assert.Equal(t, 1, m.stops)
}

// gatedKeys blocks the first read until released.
type gatedKeys struct {
	gate chan struct{}
}

func (g *gatedKeys) ReadCommand() (Command, bool) {
	<-g.gate
	return CommandQuit, true
}

func TestRun_InterruptStopsMonitorAndContinues(t *testing.T) {
	m := &countingMonitor{}
	interrupts := make(chan struct{})
	keys := &gatedKeys{gate: make(chan struct{})}
	l, out, log := newTestLoop(t, m, &fakeRunner{}, keys, WithInterrupts(interrupts))

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(context.Background()) }()

	interrupts <- struct{}{}
	close(keys.gate)

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not exit")
	}

	assert.Equal(t, 2, m.stops, "one for the interrupt, one for quit")
	assert.Zero(t, m.starts)
	assert.True(t, log.HasLevel("info"))
	assert.Contains(t, out.String(), "monitor stopped")
}

func TestRun_ContextCancel(t *testing.T) {
	m := &countingMonitor{}
	keys := &gatedKeys{gate: make(chan struct{})}
	t.Cleanup(func() { close(keys.gate) })
	l, _, _ := newTestLoop(t, m, &fakeRunner{}, keys)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not exit")
	}
	assert.Equal(t, 1, m.stops)
}
