package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetValue(t *testing.T) {
	content := `# bench board
port: /dev/ttyUSB0 # left USB hub
baud: 115200
toolchain:
  command: [idf.py]
`
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	require.NoError(t, SetValue(path, "port", "/dev/ttyACM0"))
	require.NoError(t, SetValue(path, "baud", "230400"))
	require.NoError(t, SetValue(path, "toolchain.port", "/dev/ttyUSB1"))
	require.NoError(t, SetValue(path, "output.color", "never"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# bench board")
	assert.Contains(t, string(data), "# left USB hub")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", cfg.Port)
	assert.Equal(t, 230400, cfg.Baud)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Toolchain.Port)
	assert.Equal(t, []string{"idf.py"}, cfg.Toolchain.Command)
	assert.Equal(t, "never", cfg.Output.Color)
}

func TestSetValue_EmptyString(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("port: /dev/ttyUSB0\nelf: build/app.elf\n"), 0644))

	require.NoError(t, SetValue(path, "elf", ""))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.ELF)
}

func TestSetValue_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("port: /dev/ttyUSB0\ntoolchain:\n  command: [idf.py]\n"), 0644))

	assert.Error(t, SetValue(path, "toolchain", "idf.py"), "section is not a scalar")
	assert.Error(t, SetValue(path, "port.name", "x"), "scalar is not a section")
	assert.Error(t, SetValue(path, "toolchain..port", "x"))
	assert.Error(t, SetValue(filepath.Join(t.TempDir(), "missing.yaml"), "port", "x"))
}
