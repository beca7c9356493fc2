package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/idfrun/idfrun/internal/config"
	"github.com/idfrun/idfrun/internal/errors"
	"github.com/idfrun/idfrun/internal/logger"
	"github.com/idfrun/idfrun/internal/serialmon"
	"github.com/spf13/cobra"
)

// rootOptions holds the console's global flags.
type rootOptions struct {
	configPath string
	baud       int
	elf        string
	noColor    bool
	verbose    bool
}

var rootOpts rootOptions

var rootCmd = &cobra.Command{
	Use:   "idfrun [port]",
	Short: "ESP-IDF developer console: monitor, build and flash from one terminal",
	Long: `Stream a device's serial log and drive the ESP-IDF toolchain with single keys.

The serial monitor runs in the background and is paused automatically
whenever the toolchain needs the same port (flash), then resumed.

Keys:
  r  flash       b  build       c  clean
  m  menuconfig  R  reload      q  quit

Examples:
  idfrun /dev/ttyUSB0
  idfrun /dev/ttyACM0 --baud 230400 --elf build/blink.elf
  idfrun            # port from .idfrun.yaml`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(rootOpts.verbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return consoleCommand(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootOpts.configPath, "config", "", "config file (default: .idfrun.yaml search)")
	rootCmd.PersistentFlags().BoolVarP(&rootOpts.verbose, "verbose", "v", false, "debug logging (same as IDFRUN_DEBUG=1)")
	rootCmd.Flags().IntVarP(&rootOpts.baud, "baud", "b", serialmon.DefaultBaud, "serial baud rate")
	rootCmd.Flags().StringVar(&rootOpts.elf, "elf", "", "firmware ELF for backtrace symbolization (empty string disables)")
	rootCmd.Flags().BoolVar(&rootOpts.noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConsoleConfig merges the config file with the port argument and any
// flags the user actually set.
func loadConsoleConfig(opts rootOptions, changed func(name string) bool, args []string) (*config.Config, string, error) {
	cfg, path, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return nil, "", err
	}

	if len(args) == 1 {
		cfg.Port = args[0]
	}
	if changed("baud") {
		cfg.Baud = opts.baud
	}
	if changed("elf") {
		cfg.ELF = config.ExpandPath(opts.elf)
	}
	if opts.noColor {
		cfg.Output.Color = "never"
	}

	if cfg.Port == "" {
		return nil, path, missingPortError(serialmon.DetectPorts())
	}
	if err := config.Validate(cfg); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func missingPortError(detected []string) error {
	suggestion := "Pass the port as an argument, e.g. idfrun /dev/ttyUSB0, or set 'port' in .idfrun.yaml."
	if len(detected) > 0 {
		suggestion = "Detected: " + strings.Join(detected, ", ") + ". Pass one as an argument, e.g. idfrun " + detected[0]
	}
	return errors.New(errors.ErrConfig, "No serial port given", suggestion)
}
