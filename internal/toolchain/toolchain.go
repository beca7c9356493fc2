// Package toolchain runs the external build/flash tool. Its exit status is
// passed through untouched; only a failure to run at all is an error.
package toolchain

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/idfrun/idfrun/internal/errors"
)

// DefaultPortEnv is the variable idf.py reads its port from.
const DefaultPortEnv = "ESPPORT"

// DefaultCommand is the ESP-IDF front-end.
var DefaultCommand = []string{"idf.py"}

// Config describes how to invoke the toolchain.
type Config struct {
	// Command is the executable and any fixed leading arguments.
	Command []string
	// Args are inserted between Command and the subcommand (e.g. "-B", "build-debug").
	Args []string
	// PortEnv names the environment variable that receives the target port.
	PortEnv string
	// Dir is the working directory; empty means the current one.
	Dir string
}

// Runner executes toolchain subcommands attached to the console's terminal.
type Runner struct {
	cfg    Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// New creates a Runner. Zero config fields take the ESP-IDF defaults.
func New(cfg Config, stdin io.Reader, stdout, stderr io.Writer) *Runner {
	if len(cfg.Command) == 0 {
		cfg.Command = DefaultCommand
	}
	if cfg.PortEnv == "" {
		cfg.PortEnv = DefaultPortEnv
	}
	return &Runner{cfg: cfg, stdin: stdin, stdout: stdout, stderr: stderr}
}

// CommandLine returns the full argv for a subcommand.
func (r *Runner) CommandLine(args []string) []string {
	argv := make([]string, 0, len(r.cfg.Command)+len(r.cfg.Args)+len(args))
	argv = append(argv, r.cfg.Command...)
	argv = append(argv, r.cfg.Args...)
	return append(argv, args...)
}

// Describe is the command line as shown to the operator.
func (r *Runner) Describe(args []string) string {
	return strings.Join(r.CommandLine(args), " ")
}

// Run executes the toolchain synchronously with port exported in its
// environment. It returns the tool's exit code; err is set only when the
// tool could not be run.
func (r *Runner) Run(ctx context.Context, port string, args []string) (exitCode int, err error) {
	argv := r.CommandLine(args)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), fmt.Sprintf("%s=%s", r.cfg.PortEnv, port))
	if r.cfg.Dir != "" {
		cmd.Dir = r.cfg.Dir
	}
	cmd.Stdin = r.stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	runErr := cmd.Run()
	if runErr == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(runErr, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, errors.WrapWithCode(runErr, errors.ErrToolchain,
		fmt.Sprintf("Couldn't run %s", argv[0]),
		"Make sure the toolchain is installed and its environment is exported (e.g. source export.sh).")
}
