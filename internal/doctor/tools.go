package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/idfrun/idfrun/internal/config"
)

// versionTimeout bounds a tool's --version probe. idf.py can be slow to
// start because it imports the whole ESP-IDF Python environment.
const versionTimeout = 15 * time.Second

// ToolCheck verifies an executable is on PATH and reports its version.
type ToolCheck struct {
	ID         string
	Command    string
	Required   bool // Missing required tools fail; others warn
	Suggestion string
}

func (c *ToolCheck) Name() string     { return "tool_" + c.ID }
func (c *ToolCheck) Category() string { return "TOOLS" }

func (c *ToolCheck) Run() CheckResult {
	path, err := exec.LookPath(c.Command)
	if err != nil {
		status := StatusWarn
		if c.Required {
			status = StatusFail
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     status,
			Message:    fmt.Sprintf("%s not found in PATH", c.Command),
			Suggestion: c.Suggestion,
		}
	}

	version := probeVersion(path)
	if version == "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: fmt.Sprintf("%s found (version unknown)", c.Command),
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s: %s", c.Command, version),
	}
}

func (c *ToolCheck) Fix() error {
	return nil // Toolchain installation is out of scope
}

// probeVersion returns the first line of `path --version`.
func probeVersion(path string) string {
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		return ""
	}
	return parseVersionLine(string(out))
}

// parseVersionLine picks the first non-empty line of version output.
func parseVersionLine(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// EnvCheck verifies an environment variable is set.
type EnvCheck struct {
	Variable   string
	Suggestion string
	lookup     func(string) (string, bool)
}

func (c *EnvCheck) Name() string     { return "env_" + strings.ToLower(c.Variable) }
func (c *EnvCheck) Category() string { return "TOOLS" }

func (c *EnvCheck) Run() CheckResult {
	lookup := c.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, ok := lookup(c.Variable)
	if !ok || value == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s is not set", c.Variable),
			Suggestion: c.Suggestion,
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s=%s", c.Variable, value),
	}
}

func (c *EnvCheck) Fix() error {
	return nil
}

// NewToolChecks returns checks for the configured toolchain and resolver.
func NewToolChecks(cfg *config.Config) []Check {
	exportHint := "Run the ESP-IDF export script first: . $HOME/esp/esp-idf/export.sh"
	checks := []Check{
		&EnvCheck{Variable: "IDF_PATH", Suggestion: exportHint},
	}
	if len(cfg.Toolchain.Command) > 0 {
		checks = append(checks, &ToolCheck{
			ID:         "toolchain",
			Command:    cfg.Toolchain.Command[0],
			Required:   true,
			Suggestion: exportHint,
		})
	}
	if cfg.ELF != "" {
		checks = append(checks, &ToolCheck{
			ID:         "resolver",
			Command:    cfg.Symbolizer.Command,
			Suggestion: "Backtraces will print raw. Install the target's binutils or set symbolizer.command (e.g. riscv32-esp-elf-addr2line for ESP32-C3).",
		})
	}
	return checks
}
