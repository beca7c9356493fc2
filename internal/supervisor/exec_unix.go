//go:build unix

package supervisor

import (
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/idfrun/idfrun/internal/logger"
	"golang.org/x/sys/unix"
)

// ExecSpawner runs the monitor as a child process of Executable (normally
// this binary) in its own process group, sharing the console's stdout.
type ExecSpawner struct {
	Executable string
	Stdout     io.Writer
	Stderr     io.Writer
	Log        logger.Logger
}

// NewExecSpawner re-executes the running binary.
func NewExecSpawner(log logger.Logger) (*ExecSpawner, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return &ExecSpawner{Executable: exe, Stdout: os.Stdout, Stderr: os.Stderr, Log: log}, nil
}

// Spawn implements Spawner.
func (e *ExecSpawner) Spawn(spec MonitorSpec) (Process, error) {
	cmd := exec.Command(e.Executable, MonitorArgs(spec)...)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	// Own process group: terminal Ctrl+C reaches the console, not the monitor,
	// and signals can address the monitor's whole group.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	log := e.Log
	if log == nil {
		log = logger.Noop()
	}
	go func() {
		err := cmd.Wait()
		log.Debug("monitor pid %d exited: %v", cmd.Process.Pid, err)
		close(p.done)
	}()
	return p, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Terminate() error {
	return p.signal(unix.SIGTERM)
}

func (p *execProcess) Kill() error {
	return p.signal(unix.SIGKILL)
}

// signal addresses the process group; an already reaped process is not an error.
func (p *execProcess) signal(sig unix.Signal) error {
	select {
	case <-p.done:
		return nil
	default:
	}
	err := unix.Kill(-p.cmd.Process.Pid, sig)
	if stderrors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}

// Done is closed once the process has been reaped.
func (p *execProcess) Done() <-chan struct{} {
	return p.done
}
