package doctor

import (
	"fmt"
	"os"
	"strings"

	"github.com/idfrun/idfrun/internal/serialmon"
)

// PortCheck verifies the serial device exists and is usable by this user.
type PortCheck struct {
	Port   string
	detect func() []string
}

func (c *PortCheck) Name() string     { return "serial_port" }
func (c *PortCheck) Category() string { return "DEVICE" }

func (c *PortCheck) Run() CheckResult {
	detect := c.detect
	if detect == nil {
		detect = serialmon.DetectPorts
	}

	if c.Port == "" {
		detected := detect()
		if len(detected) == 0 {
			return CheckResult{
				Name:       c.Name(),
				Status:     StatusWarn,
				Message:    "No port configured and no boards detected",
				Suggestion: "Connect a board, or check the USB cable carries data",
			}
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusPass,
			Message:    fmt.Sprintf("Detected: %s", strings.Join(detected, ", ")),
			Suggestion: "Start the console with: idfrun " + detected[0],
		}
	}

	info, err := os.Stat(c.Port)
	if err != nil {
		suggestion := "Check the board is connected"
		if detected := detect(); len(detected) > 0 {
			suggestion = fmt.Sprintf("Detected instead: %s", strings.Join(detected, ", "))
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s not found", c.Port),
			Suggestion: suggestion,
		}
	}

	if info.Mode()&os.ModeCharDevice == 0 {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: fmt.Sprintf("%s is not a character device", c.Port),
		}
	}

	if err := checkReadWrite(c.Port); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("No read/write access to %s", c.Port),
			Suggestion: "Add yourself to the device's group, e.g. sudo usermod -aG dialout $USER, then log in again",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s is accessible", c.Port),
	}
}

func (c *PortCheck) Fix() error {
	return nil // Group membership needs root
}

// ELFCheck verifies the symbol file used for backtraces exists.
type ELFCheck struct {
	Path string
}

func (c *ELFCheck) Name() string     { return "symbol_file" }
func (c *ELFCheck) Category() string { return "FIRMWARE" }

func (c *ELFCheck) Run() CheckResult {
	if c.Path == "" {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: "Backtrace symbolization disabled",
		}
	}

	info, err := os.Stat(c.Path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("%s not built yet", c.Path),
			Suggestion: "Press b in the console (or run idf.py build); backtraces print raw until then",
		}
	}
	if info.IsDir() {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: fmt.Sprintf("%s is a directory", c.Path),
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s (%d KiB, built %s)", c.Path, info.Size()/1024, info.ModTime().Format("2006-01-02 15:04")),
	}
}

func (c *ELFCheck) Fix() error {
	return nil
}

// NewDeviceChecks returns the device and firmware checks.
func NewDeviceChecks(port, elf string) []Check {
	return []Check{
		&PortCheck{Port: port},
		&ELFCheck{Path: elf},
	}
}
