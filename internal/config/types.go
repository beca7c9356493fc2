package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .idfrun.yaml configuration file.
type Config struct {
	Version    int              `yaml:"version" mapstructure:"version"`
	Port       string           `yaml:"port" mapstructure:"port"`
	Baud       int              `yaml:"baud" mapstructure:"baud"`
	ELF        string           `yaml:"elf" mapstructure:"elf"`
	Backoff    time.Duration    `yaml:"backoff" mapstructure:"backoff"`
	Toolchain  ToolchainConfig  `yaml:"toolchain" mapstructure:"toolchain"`
	Symbolizer SymbolizerConfig `yaml:"symbolizer" mapstructure:"symbolizer"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
}

// ToolchainConfig controls how build/flash commands are run.
type ToolchainConfig struct {
	// Command is the toolchain executable plus fixed leading arguments.
	Command []string `yaml:"command" mapstructure:"command"`

	// Args are inserted before every subcommand (e.g. ["-B", "build-debug"]).
	Args []string `yaml:"args,omitempty" mapstructure:"args"`

	// Port is the device the toolchain targets. Empty means the monitor port.
	Port string `yaml:"port,omitempty" mapstructure:"port"`

	// PortEnv is the environment variable the port is exported as.
	PortEnv string `yaml:"port_env" mapstructure:"port_env"`
}

// SymbolizerConfig controls backtrace address resolution.
type SymbolizerConfig struct {
	Command     string        `yaml:"command" mapstructure:"command"`
	Flags       []string      `yaml:"flags" mapstructure:"flags"`
	MaxFailures int           `yaml:"max_failures" mapstructure:"max_failures"`
	Cooldown    time.Duration `yaml:"cooldown" mapstructure:"cooldown"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	// "auto" disables color when output is piped.
	Color string `yaml:"color" mapstructure:"color"`
}

// DefaultELF is the firmware image ESP-IDF builds for a project.
const DefaultELF = "build/${PROJECT}.elf"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Baud:    115200,
		ELF:     DefaultELF,
		Backoff: 2 * time.Second,
		Toolchain: ToolchainConfig{
			Command: []string{"idf.py"},
			PortEnv: "ESPPORT",
		},
		Symbolizer: SymbolizerConfig{
			Command:     "xtensa-esp32-elf-addr2line",
			Flags:       []string{"-fe"},
			MaxFailures: 3,
			Cooldown:    30 * time.Second,
		},
		Output: OutputConfig{
			Color: "auto",
		},
	}
}

// ToolchainPort is the port toolchain runs target.
func (c *Config) ToolchainPort() string {
	if c.Toolchain.Port != "" {
		return c.Toolchain.Port
	}
	return c.Port
}
