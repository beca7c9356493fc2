package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/idfrun/idfrun/internal/decorate"
	"github.com/idfrun/idfrun/internal/logger"
	"github.com/idfrun/idfrun/internal/serialmon"
	"github.com/idfrun/idfrun/internal/symbolize"
	"github.com/idfrun/idfrun/internal/ui"
	"github.com/spf13/cobra"
)

// monitorOptions are the flags of the hidden monitor command. They mirror
// supervisor.MonitorSpec.
type monitorOptions struct {
	baud          int
	elf           string
	backoff       time.Duration
	color         string
	resolver      string
	resolverFlags []string
	maxFailures   int
	cooldown      time.Duration
}

type monitorFunc func(ctx context.Context, port string, opts monitorOptions) error

func newMonitorCmd(run monitorFunc) *cobra.Command {
	var opts monitorOptions
	cmd := &cobra.Command{
		Use:    "monitor <port>",
		Short:  "Stream a serial port as decorated log records",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := serialmon.CheckBaud(opts.baud); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, os.Interrupt)
			defer stop()
			return run(ctx, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.baud, "baud", serialmon.DefaultBaud, "serial baud rate")
	cmd.Flags().StringVar(&opts.elf, "elf", "", "symbol file for backtraces")
	cmd.Flags().DurationVar(&opts.backoff, "backoff", serialmon.DefaultBackoff, "wait between reconnect attempts")
	cmd.Flags().StringVar(&opts.color, "color", ui.ColorAuto, "color mode: auto, always, never")
	cmd.Flags().StringVar(&opts.resolver, "resolver", symbolize.DefaultCommand, "address resolver executable")
	cmd.Flags().StringSliceVar(&opts.resolverFlags, "resolver-flags", symbolize.DefaultFlags, "resolver flags before the symbol file")
	cmd.Flags().IntVar(&opts.maxFailures, "resolver-max-failures", symbolize.DefaultMaxFailures, "consecutive resolver failures before backing off")
	cmd.Flags().DurationVar(&opts.cooldown, "resolver-cooldown", symbolize.DefaultCooldown, "how long to back off the resolver")
	return cmd
}

// newMonitorReader wires the decoration pipeline for one device.
func newMonitorReader(port string, opts monitorOptions, opener serialmon.Opener, out io.Writer) *serialmon.Reader {
	decOpts := []decorate.Option{decorate.WithLogger(logger.NewEnvLogger("[monitor]"))}
	if opts.elf != "" {
		sym := symbolize.New(symbolize.Config{
			Command:     opts.resolver,
			Flags:       opts.resolverFlags,
			MaxFailures: uint32(max(opts.maxFailures, 1)),
			Cooldown:    opts.cooldown,
		}, logger.NewEnvLogger("[symbolize]"))
		decOpts = append(decOpts, decorate.WithSymbolizer(sym, opts.elf))
	}

	return serialmon.NewReader(
		serialmon.Config{Device: port, Backoff: opts.backoff},
		opener,
		decorate.New(decOpts...),
		out,
		serialmon.WithLogger(logger.NewEnvLogger("[monitor]")),
	)
}

func runMonitor(ctx context.Context, port string, opts monitorOptions) error {
	ui.ApplyColorMode(opts.color)
	reader := newMonitorReader(port, opts, serialmon.SerialOpener{Baud: opts.baud}, os.Stdout)
	return reader.Run(ctx)
}

func init() {
	rootCmd.AddCommand(newMonitorCmd(runMonitor))
}
