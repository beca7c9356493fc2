package config

import (
	"fmt"
	"os"
	"time"

	"github.com/idfrun/idfrun/internal/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with durations as strings, the form they are
// written in by hand.
type fileConfig struct {
	Version    int             `yaml:"version"`
	Port       string          `yaml:"port"`
	Baud       int             `yaml:"baud"`
	ELF        string          `yaml:"elf"`
	Backoff    string          `yaml:"backoff"`
	Toolchain  ToolchainConfig `yaml:"toolchain"`
	Symbolizer fileSymbolizer  `yaml:"symbolizer"`
	Output     OutputConfig    `yaml:"output"`
}

type fileSymbolizer struct {
	Command     string   `yaml:"command"`
	Flags       []string `yaml:"flags"`
	MaxFailures int      `yaml:"max_failures"`
	Cooldown    string   `yaml:"cooldown"`
}

func formatDuration(d time.Duration) string {
	return d.String()
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	doc := fileConfig{
		Version:   cfg.Version,
		Port:      cfg.Port,
		Baud:      cfg.Baud,
		ELF:       cfg.ELF,
		Backoff:   formatDuration(cfg.Backoff),
		Toolchain: cfg.Toolchain,
		Symbolizer: fileSymbolizer{
			Command:     cfg.Symbolizer.Command,
			Flags:       cfg.Symbolizer.Flags,
			MaxFailures: cfg.Symbolizer.MaxFailures,
			Cooldown:    formatDuration(cfg.Symbolizer.Cooldown),
		},
		Output: cfg.Output,
	}
	return yaml.Marshal(doc)
}

// Write saves cfg to path. An existing file is only replaced when
// overwrite is set.
func Write(path string, cfg *Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("%s already exists", path),
				"Use --force to overwrite it.")
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}

	header := []byte("# idfrun configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write "+path,
			"Check directory permissions")
	}
	return nil
}
