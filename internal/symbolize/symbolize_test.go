package symbolize

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/idfrun/idfrun/internal/errors"
	"github.com/idfrun/idfrun/internal/logger"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	out   string
	err   error
	calls []string
	args  [][]string
}

func (r *recordingRunner) run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, name)
	r.args = append(r.args, args)
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.out), nil
}

func TestResolve_BuildsCommandLine(t *testing.T) {
	r := &recordingRunner{out: "main at foo.c:10\n"}
	s := New(Config{}, logger.Noop(), WithRunner(r.run))

	out, err := s.Resolve(context.Background(), []string{"0x400", "0x420"}, "build/app.elf")

	require.NoError(t, err)
	assert.Equal(t, "main at foo.c:10\n", out)
	require.Len(t, r.calls, 1)
	assert.Equal(t, DefaultCommand, r.calls[0])
	assert.Equal(t, []string{"-fe", "build/app.elf", "0x400", "0x420"}, r.args[0])
}

func TestResolve_CustomFlags(t *testing.T) {
	r := &recordingRunner{out: "x"}
	s := New(Config{Command: "riscv32-esp-elf-addr2line", Flags: []string{"-pfiaC", "-e"}}, nil, WithRunner(r.run))

	_, err := s.Resolve(context.Background(), []string{"0x1"}, "app.elf")

	require.NoError(t, err)
	assert.Equal(t, "riscv32-esp-elf-addr2line", r.calls[0])
	assert.Equal(t, []string{"-pfiaC", "-e", "app.elf", "0x1"}, r.args[0])
}

func TestResolve_NoAddresses(t *testing.T) {
	r := &recordingRunner{}
	s := New(Config{}, nil, WithRunner(r.run))

	_, err := s.Resolve(context.Background(), nil, "app.elf")

	assert.True(t, errors.IsCode(err, errors.ErrSymbolize))
	assert.Empty(t, r.calls)
}

func TestResolve_FailureIsStructured(t *testing.T) {
	r := &recordingRunner{err: fmt.Errorf("exit status 1")}
	s := New(Config{}, nil, WithRunner(r.run))

	_, err := s.Resolve(context.Background(), []string{"0x400"}, "app.elf")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSymbolize))
}

func TestResolve_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	r := &recordingRunner{err: fmt.Errorf("exec: not found")}
	log := logger.NewBufferLogger()
	s := New(Config{MaxFailures: 3, Cooldown: time.Hour}, log, WithRunner(r.run))

	for i := 0; i < 3; i++ {
		_, err := s.Resolve(context.Background(), []string{"0x400"}, "app.elf")
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, s.State())
	assert.True(t, log.HasLevel("warn"))

	_, err := s.Resolve(context.Background(), []string{"0x400"}, "app.elf")
	require.Error(t, err)
	assert.Len(t, r.calls, 3, "open breaker must not spawn the resolver")
}

func TestResolve_SuccessResetsFailureCount(t *testing.T) {
	r := &recordingRunner{err: fmt.Errorf("boom")}
	s := New(Config{MaxFailures: 2, Cooldown: time.Hour}, nil, WithRunner(r.run))

	_, _ = s.Resolve(context.Background(), []string{"0x1"}, "app.elf")
	r.err = nil
	_, err := s.Resolve(context.Background(), []string{"0x1"}, "app.elf")
	require.NoError(t, err)
	r.err = fmt.Errorf("boom")
	_, _ = s.Resolve(context.Background(), []string{"0x1"}, "app.elf")

	assert.Equal(t, gobreaker.StateClosed, s.State())
}

func TestResolve_CancelledRunDoesNotTripBreaker(t *testing.T) {
	r := &recordingRunner{err: fmt.Errorf("signal: killed")}
	s := New(Config{MaxFailures: 2, Cooldown: time.Hour}, nil, WithRunner(r.run))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		_, err := s.Resolve(ctx, []string{"0x1"}, "app.elf")
		require.Error(t, err)
	}

	assert.Equal(t, gobreaker.StateClosed, s.State())
	assert.Len(t, r.calls, 3, "every resolve still reaches the resolver")
}

func TestResolve_RealProcess(t *testing.T) {
	s := New(Config{Command: "echo", Flags: []string{}}, nil)

	out, err := s.Resolve(context.Background(), []string{"0x400", "0x420"}, "app.elf")

	require.NoError(t, err)
	assert.Equal(t, "app.elf 0x400 0x420\n", out)
}

func TestResolve_MissingExecutable(t *testing.T) {
	s := New(Config{Command: "idfrun-no-such-resolver"}, nil)

	_, err := s.Resolve(context.Background(), []string{"0x400"}, "app.elf")

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSymbolize))
}
