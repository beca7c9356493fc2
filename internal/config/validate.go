package config

import (
	"fmt"
	"strings"

	"github.com/idfrun/idfrun/internal/errors"
	"github.com/idfrun/idfrun/internal/serialmon"
)

var validColorModes = map[string]bool{
	"auto":   true,
	"always": true,
	"never":  true,
}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but idfrun only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade idfrun to a newer release.")
	}

	if cfg.Port == "" {
		return errors.New(errors.ErrConfig,
			"No serial port configured",
			"Pass the port as an argument (idfrun /dev/ttyUSB0) or set 'port' in .idfrun.yaml.")
	}

	if cfg.Baud <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Baud rate must be positive, got %d", cfg.Baud),
			"Common values are 115200 and 230400.")
	}

	if !serialmon.SupportedBaud(cfg.Baud) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unsupported baud rate %d", cfg.Baud),
			"Use one of: "+strings.Join(serialmon.SupportedBaudList(), ", ")+".")
	}

	if cfg.Backoff <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Reconnect backoff must be positive, got %s", cfg.Backoff),
			"Use a duration like '2s' for 'backoff'.")
	}

	if err := validateToolchain(cfg.Toolchain); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'toolchain' section in your .idfrun.yaml.")
	}

	if err := validateSymbolizer(cfg.Symbolizer); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'symbolizer' section in your .idfrun.yaml.")
	}

	if !validColorModes[cfg.Output.Color] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown color mode '%s'", cfg.Output.Color),
			"Use one of: auto, always, never.")
	}

	return nil
}

func validateToolchain(tc ToolchainConfig) error {
	if len(tc.Command) == 0 || tc.Command[0] == "" {
		return fmt.Errorf("toolchain command is empty")
	}
	if tc.PortEnv == "" {
		return fmt.Errorf("toolchain port_env is empty")
	}
	return nil
}

func validateSymbolizer(sc SymbolizerConfig) error {
	if sc.Command == "" {
		return fmt.Errorf("symbolizer command is empty")
	}
	if sc.MaxFailures < 1 {
		return fmt.Errorf("symbolizer max_failures must be at least 1, got %d", sc.MaxFailures)
	}
	if sc.Cooldown <= 0 {
		return fmt.Errorf("symbolizer cooldown must be positive, got %s", sc.Cooldown)
	}
	return nil
}
