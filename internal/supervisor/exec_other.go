//go:build !unix

package supervisor

import (
	"io"
	"runtime"

	"github.com/idfrun/idfrun/internal/errors"
	"github.com/idfrun/idfrun/internal/logger"
)

// ExecSpawner needs process groups and is only available on unix systems.
type ExecSpawner struct {
	Executable string
	Stdout     io.Writer
	Stderr     io.Writer
	Log        logger.Logger
}

// NewExecSpawner returns a spawner whose Spawn always fails on this platform.
func NewExecSpawner(log logger.Logger) (*ExecSpawner, error) {
	return &ExecSpawner{Log: log}, nil
}

// Spawn implements Spawner.
func (e *ExecSpawner) Spawn(spec MonitorSpec) (Process, error) {
	return nil, errors.New(errors.ErrMonitor,
		"Background monitor is not supported on "+runtime.GOOS,
		"Run idfrun on Linux or macOS.")
}
