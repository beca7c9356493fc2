package exclusive

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/idfrun/idfrun/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures the interleaving of monitor and toolchain calls.
type recorder struct {
	port     string
	calls    []string
	exit     int
	runErr   error
	startErr error
	runArgs  []string
	runPort  string
}

func (r *recorder) Port() string { return r.port }

func (r *recorder) Start() error {
	r.calls = append(r.calls, "start")
	return r.startErr
}

func (r *recorder) Stop() error {
	r.calls = append(r.calls, "stop")
	return nil
}

func (r *recorder) Run(_ context.Context, port string, args []string) (int, error) {
	r.calls = append(r.calls, "run")
	r.runPort = port
	r.runArgs = args
	return r.exit, r.runErr
}

func (r *recorder) count(name string) int {
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

func TestRunExclusive_SamePort(t *testing.T) {
	r := &recorder{port: "/dev/ttyUSB0"}
	c := New(r, r, "", nil)

	code, err := c.RunExclusive(context.Background(), []string{"flash"})

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"stop", "run", "start"}, r.calls)
	assert.Equal(t, "/dev/ttyUSB0", r.runPort)
	assert.Equal(t, []string{"flash"}, r.runArgs)
}

func TestRunExclusive_RestartsAfterFailure(t *testing.T) {
	tests := []struct {
		name     string
		exit     int
		runErr   error
		wantCode int
	}{
		{name: "non-zero exit", exit: 2, wantCode: 2},
		{name: "toolchain not runnable", exit: -1, runErr: stderrors.New("exec: not found"), wantCode: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{port: "/dev/ttyUSB0", exit: tt.exit, runErr: tt.runErr}
			c := New(r, r, "/dev/ttyUSB0", nil)

			code, err := c.RunExclusive(context.Background(), []string{"build"})

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.runErr, err)
			assert.Equal(t, 1, r.count("stop"))
			assert.Equal(t, 1, r.count("start"))
		})
	}
}

func TestRunExclusive_DifferentPort(t *testing.T) {
	r := &recorder{port: "/dev/ttyUSB0", exit: 1}
	c := New(r, r, "/dev/ttyUSB1", nil)

	code, err := c.RunExclusive(context.Background(), []string{"flash"})

	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Equal(t, []string{"run"}, r.calls)
	assert.Equal(t, "/dev/ttyUSB1", r.runPort)
}

func TestRunExclusive_RestartError(t *testing.T) {
	startErr := stderrors.New("spawn failed")

	t.Run("surfaced when toolchain ran", func(t *testing.T) {
		r := &recorder{port: "/dev/ttyUSB0", startErr: startErr}
		log := logger.NewBufferLogger()
		c := New(r, r, "", log)

		_, err := c.RunExclusive(context.Background(), []string{"flash"})

		assert.Equal(t, startErr, err)
		assert.True(t, log.HasLevel("error"))
	})

	t.Run("toolchain error takes precedence", func(t *testing.T) {
		runErr := stderrors.New("exec: not found")
		r := &recorder{port: "/dev/ttyUSB0", startErr: startErr, runErr: runErr, exit: -1}
		c := New(r, r, "", nil)

		_, err := c.RunExclusive(context.Background(), []string{"flash"})

		assert.Equal(t, runErr, err)
	})
}

func TestTargetPort(t *testing.T) {
	r := &recorder{port: "/dev/ttyUSB0"}

	assert.Equal(t, "/dev/ttyUSB0", New(r, r, "", nil).TargetPort())
	assert.Equal(t, "/dev/ttyACM0", New(r, r, "/dev/ttyACM0", nil).TargetPort())
}
