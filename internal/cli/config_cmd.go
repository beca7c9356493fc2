package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/idfrun/idfrun/internal/config"
	"github.com/idfrun/idfrun/internal/errors"
	"github.com/idfrun/idfrun/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration idfrun would use here, as YAML, with defaults
filled in and ${PROJECT} expanded.

Examples:
  idfrun config
  idfrun config set port /dev/ttyACM0
  idfrun config set toolchain.port /dev/ttyUSB1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := config.LoadOrDefault(rootOpts.configPath)
		if err != nil {
			return err
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
		}
		if path == "" {
			path = "defaults (no config file found)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", path, data)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one value in the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(rootOpts.configPath)
		if err != nil {
			return err
		}
		if path == "" {
			return errors.New(errors.ErrConfig,
				"No config file found",
				"Run 'idfrun init' first.")
		}
		return setConfigValue(path, args[0], args[1], cmd.OutOrStdout())
	},
}

// setConfigValue updates the file and re-validates the result. An update
// that produces an invalid config is rolled back.
func setConfigValue(path, key, value string, out io.Writer) error {
	original, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to read "+path, "")
	}

	if err := config.SetValue(path, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't set '%s'", key),
			"Keys are dotted paths such as port, baud or toolchain.port.")
	}

	cfg, err := config.Load(path)
	if err == nil && cfg.Port != "" {
		err = config.Validate(cfg)
	}
	if err != nil {
		_ = os.WriteFile(path, original, 0644)
		return err
	}

	fmt.Fprintf(out, "%s %s = %s\n", ui.SymbolSuccess, key, value)
	return nil
}

func init() {
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
