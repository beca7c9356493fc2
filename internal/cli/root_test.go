package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/idfrun/idfrun/internal/config"
	"github.com/idfrun/idfrun/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func changedFlags(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestLoadConsoleConfig_ArgumentAndFlags(t *testing.T) {
	dir := isolate(t)
	content := "port: /dev/ttyUSB0\nbaud: 57600\nelf: build/app.elf\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(content), 0644))

	t.Run("file values", func(t *testing.T) {
		cfg, path, err := loadConsoleConfig(rootOptions{}, changedFlags(), nil)
		require.NoError(t, err)
		assert.Equal(t, config.ConfigFileName, filepath.Base(path))
		assert.Equal(t, "/dev/ttyUSB0", cfg.Port)
		assert.Equal(t, 57600, cfg.Baud)
		assert.Equal(t, "build/app.elf", cfg.ELF)
	})

	t.Run("port argument wins", func(t *testing.T) {
		cfg, _, err := loadConsoleConfig(rootOptions{}, changedFlags(), []string{"/dev/ttyACM0"})
		require.NoError(t, err)
		assert.Equal(t, "/dev/ttyACM0", cfg.Port)
	})

	t.Run("only changed flags override", func(t *testing.T) {
		opts := rootOptions{baud: 230400, elf: "other.elf"}

		cfg, _, err := loadConsoleConfig(opts, changedFlags("baud"), nil)
		require.NoError(t, err)
		assert.Equal(t, 230400, cfg.Baud)
		assert.Equal(t, "build/app.elf", cfg.ELF)
	})

	t.Run("empty elf flag disables symbolization", func(t *testing.T) {
		cfg, _, err := loadConsoleConfig(rootOptions{elf: ""}, changedFlags("elf"), nil)
		require.NoError(t, err)
		assert.Empty(t, cfg.ELF)
	})

	t.Run("no-color", func(t *testing.T) {
		cfg, _, err := loadConsoleConfig(rootOptions{noColor: true}, changedFlags(), nil)
		require.NoError(t, err)
		assert.Equal(t, "never", cfg.Output.Color)
	})

	t.Run("invalid flag value", func(t *testing.T) {
		_, _, err := loadConsoleConfig(rootOptions{baud: -1}, changedFlags("baud"), nil)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("baud the transport can't set", func(t *testing.T) {
		_, _, err := loadConsoleConfig(rootOptions{baud: 921600}, changedFlags("baud"), nil)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
		assert.Contains(t, err.Error(), "Unsupported baud rate")
	})
}

func TestLoadConsoleConfig_NoPort(t *testing.T) {
	isolate(t)

	_, _, err := loadConsoleConfig(rootOptions{}, changedFlags(), nil)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "No serial port given")
}

func TestMissingPortError(t *testing.T) {
	err := missingPortError(nil)
	assert.Contains(t, err.Error(), "idfrun /dev/ttyUSB0")

	err = missingPortError([]string{"/dev/ttyACM0", "/dev/ttyUSB3"})
	assert.Contains(t, err.Error(), "Detected: /dev/ttyACM0, /dev/ttyUSB3")
	assert.Contains(t, err.Error(), "idfrun /dev/ttyACM0")
}

func TestMonitorSpecFor(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Port = "/dev/ttyUSB0"
	cfg.ELF = "build/blink.elf"
	cfg.Output.Color = "never"

	spec := monitorSpecFor(cfg)

	assert.Equal(t, "/dev/ttyUSB0", spec.Port)
	assert.Equal(t, 115200, spec.Baud)
	assert.Equal(t, "build/blink.elf", spec.SymbolFile)
	assert.Equal(t, 2*time.Second, spec.Backoff)
	assert.Equal(t, "never", spec.Color)
	assert.Equal(t, "xtensa-esp32-elf-addr2line", spec.Resolver)
	assert.Equal(t, []string{"-fe"}, spec.ResolverFlags)
	assert.Equal(t, 3, spec.MaxFailures)
	assert.Equal(t, 30*time.Second, spec.Cooldown)
}

func TestToolchainConfigFor(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Toolchain.Args = []string{"-B", "build-debug"}
	cfg.Toolchain.PortEnv = "UPLOAD_PORT"

	tc := toolchainConfigFor(cfg)

	assert.Equal(t, []string{"idf.py"}, tc.Command)
	assert.Equal(t, []string{"-B", "build-debug"}, tc.Args)
	assert.Equal(t, "UPLOAD_PORT", tc.PortEnv)
}
