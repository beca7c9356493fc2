// Package exclusive gives the toolchain sole use of the serial port for the
// duration of one run, pausing the background monitor when both target the
// same device.
package exclusive

import (
	"context"

	"github.com/idfrun/idfrun/internal/logger"
)

// Monitor is the part of the supervisor the coordinator drives.
type Monitor interface {
	Port() string
	Start() error
	Stop() error
}

// Toolchain runs one toolchain invocation against port.
type Toolchain interface {
	Run(ctx context.Context, port string, args []string) (int, error)
}

// Coordinator sequences monitor stop, toolchain run and monitor restart.
type Coordinator struct {
	monitor    Monitor
	toolchain  Toolchain
	targetPort string
	log        logger.Logger
}

// New creates a Coordinator. An empty targetPort means the toolchain uses
// the monitor's port.
func New(monitor Monitor, toolchain Toolchain, targetPort string, log logger.Logger) *Coordinator {
	if log == nil {
		log = logger.Noop()
	}
	if targetPort == "" {
		targetPort = monitor.Port()
	}
	return &Coordinator{monitor: monitor, toolchain: toolchain, targetPort: targetPort, log: log}
}

// TargetPort is the device the toolchain is pointed at.
func (c *Coordinator) TargetPort() string {
	return c.targetPort
}

// RunExclusive runs the toolchain with args. If the monitor holds the
// target port it is stopped first and restarted afterwards, whatever the
// outcome. The toolchain's exit code is returned unmodified.
func (c *Coordinator) RunExclusive(ctx context.Context, args []string) (exitCode int, err error) {
	stoppedByMe := false
	if c.monitor.Port() == c.targetPort {
		if stopErr := c.monitor.Stop(); stopErr != nil {
			c.log.Warn("stopping monitor on %s: %v", c.targetPort, stopErr)
		}
		stoppedByMe = true
		c.log.Debug("monitor paused for %v", args)
	}

	exitCode, err = c.toolchain.Run(ctx, c.targetPort, args)

	if stoppedByMe {
		if startErr := c.monitor.Start(); startErr != nil {
			c.log.Error("restarting monitor on %s: %v", c.targetPort, startErr)
			if err == nil {
				err = startErr
			}
		} else {
			c.log.Debug("monitor resumed on %s", c.targetPort)
		}
	}
	return exitCode, err
}
