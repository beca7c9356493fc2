package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/idfrun/idfrun/internal/config"
	"github.com/idfrun/idfrun/internal/errors"
	"github.com/idfrun/idfrun/internal/serialmon"
	"github.com/idfrun/idfrun/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Dir            string // Directory to write .idfrun.yaml into
	Port           string // Pre-specified serial port
	Baud           int    // Pre-specified baud rate (0 = default)
	ELF            string // Pre-specified symbol file
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, use defaults
}

var initOpts InitOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .idfrun.yaml configuration",
	Long: `Create a .idfrun.yaml file in the current directory.

Prompts for the serial port (offering detected boards), baud rate and
firmware ELF. Without a terminal, or with --non-interactive, the flags and
defaults are used as-is.

Examples:
  idfrun init
  idfrun init --port /dev/ttyUSB0 --baud 230400
  idfrun init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOpts
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			opts.NonInteractive = true
		}
		return Init(opts, os.Stdout)
	},
}

func init() {
	initCmd.Flags().StringVar(&initOpts.Port, "port", "", "serial port")
	initCmd.Flags().IntVar(&initOpts.Baud, "baud", 0, "baud rate")
	initCmd.Flags().StringVar(&initOpts.ELF, "elf", "", "firmware ELF (default build/${PROJECT}.elf)")
	initCmd.Flags().BoolVarP(&initOpts.Overwrite, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initOpts.NonInteractive, "non-interactive", false, "don't prompt")
	rootCmd.AddCommand(initCmd)
}

// Init creates a new .idfrun.yaml configuration file.
func Init(opts InitOptions, out io.Writer) error {
	configPath := filepath.Join(opts.Dir, config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	if opts.Baud > 0 {
		if err := serialmon.CheckBaud(opts.Baud); err != nil {
			return err
		}
		cfg.Baud = opts.Baud
	}
	if opts.ELF != "" {
		cfg.ELF = opts.ELF
	}

	if !opts.NonInteractive {
		if err := promptInit(cfg, serialmon.DetectPorts()); err != nil {
			return err
		}
	} else if cfg.Port == "" {
		if detected := serialmon.DetectPorts(); len(detected) > 0 {
			cfg.Port = detected[0]
		}
	}

	if err := config.Write(configPath, cfg, true); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  idfrun          - Open the console on the configured port")
	fmt.Fprintln(out, "  idfrun config   - Show the effective configuration")
	return nil
}

// promptInit asks for the settings most projects change.
func promptInit(cfg *config.Config, detected []string) error {
	baud := strconv.Itoa(cfg.Baud)

	var portField huh.Field
	if len(detected) > 0 && cfg.Port == "" {
		cfg.Port = detected[0]
		portField = huh.NewSelect[string]().
			Title("Serial port").
			Description("Boards detected on this machine").
			Options(huh.NewOptions(detected...)...).
			Value(&cfg.Port)
	} else {
		portField = huh.NewInput().
			Title("Serial port").
			Placeholder("/dev/ttyUSB0").
			Value(&cfg.Port).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("serial port is required")
				}
				return nil
			})
	}

	form := huh.NewForm(
		huh.NewGroup(portField),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Baud rate").
				Options(huh.NewOptions(serialmon.SupportedBaudList()...)...).
				Value(&baud),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Firmware ELF").
				Description("Used to symbolize backtraces (supports ${PROJECT}); leave empty to disable").
				Value(&cfg.ELF),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive")
	}

	cfg.Port = strings.TrimSpace(cfg.Port)
	if n, err := strconv.Atoi(baud); err == nil {
		cfg.Baud = n
	}
	return nil
}
