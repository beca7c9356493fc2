package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/idfrun/idfrun/internal/config"
	"github.com/idfrun/idfrun/internal/console"
	"github.com/idfrun/idfrun/internal/exclusive"
	"github.com/idfrun/idfrun/internal/logger"
	"github.com/idfrun/idfrun/internal/supervisor"
	"github.com/idfrun/idfrun/internal/toolchain"
	"github.com/idfrun/idfrun/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// monitorSpecFor derives the background monitor's arguments from cfg.
func monitorSpecFor(cfg *config.Config) supervisor.MonitorSpec {
	return supervisor.MonitorSpec{
		Port:          cfg.Port,
		Baud:          cfg.Baud,
		SymbolFile:    cfg.ELF,
		Backoff:       cfg.Backoff,
		Color:         cfg.Output.Color,
		Resolver:      cfg.Symbolizer.Command,
		ResolverFlags: cfg.Symbolizer.Flags,
		MaxFailures:   cfg.Symbolizer.MaxFailures,
		Cooldown:      cfg.Symbolizer.Cooldown,
	}
}

func toolchainConfigFor(cfg *config.Config) toolchain.Config {
	return toolchain.Config{
		Command: cfg.Toolchain.Command,
		Args:    cfg.Toolchain.Args,
		PortEnv: cfg.Toolchain.PortEnv,
	}
}

func consoleCommand(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConsoleConfig(rootOpts, cmd.Flags().Changed, args)
	if err != nil {
		return err
	}
	ui.ApplyColorMode(cfg.Output.Color)

	log := logger.NewEnvLogger("[console]")
	if path != "" {
		log.Debug("config: %s", path)
	}
	if cfg.ELF != "" {
		if _, err := os.Stat(cfg.ELF); err != nil {
			log.Warn("symbol file %s not found; backtraces print raw until it is built", cfg.ELF)
		}
	}

	// Leave the terminal as we found it, even if a key read is cut short.
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		if state, err := term.GetState(fd); err == nil {
			defer term.Restore(fd, state)
		}
	}

	spawner, err := supervisor.NewExecSpawner(logger.NewEnvLogger("[supervisor]"))
	if err != nil {
		return err
	}
	sup := supervisor.New(monitorSpecFor(cfg), spawner, logger.NewEnvLogger("[supervisor]"))
	runner := toolchain.New(toolchainConfigFor(cfg), os.Stdin, os.Stdout, os.Stderr)
	coord := exclusive.New(sup, runner, cfg.Toolchain.Port, log)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()

	interrupts := make(chan struct{}, 1)
	notify := func() {
		select {
		case interrupts <- struct{}{}:
		default:
		}
	}
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt)
	defer signal.Stop(sigint)
	go func() {
		for {
			select {
			case <-sigint:
				notify()
			case <-ctx.Done():
				return
			}
		}
	}()

	printBanner(cfg, coord.TargetPort())

	if err := sup.Start(); err != nil {
		return err
	}
	defer sup.Stop()

	loop := console.New(sup, coord, console.NewTerminalReader(os.Stdin, notify),
		console.WithInterrupts(interrupts),
		console.WithLogger(log),
		console.WithDescribe(runner.Describe),
	)
	return loop.Run(ctx)
}

func printBanner(cfg *config.Config, toolchainPort string) {
	muted := lipgloss.NewStyle().Foreground(ui.ColorMuted)
	pd := ui.NewPhaseDisplay(os.Stdout)

	target := cfg.Port
	if toolchainPort != cfg.Port {
		target = fmt.Sprintf("%s (toolchain: %s)", cfg.Port, toolchainPort)
	}
	fmt.Printf("%s %s @ %d\n", ui.SymbolProgress, target, cfg.Baud)
	fmt.Println(muted.Render(console.Help))
	pd.Divider()
}
