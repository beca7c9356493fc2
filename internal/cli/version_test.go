package cli

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionOutput(t *testing.T) {
	originalVersion, originalCommit, originalDate := version, commit, date
	defer func() {
		version, commit, date = originalVersion, originalCommit, originalDate
		versionShort = false
	}()

	SetVersionInfo("1.2.3", "abc123", "2026-01-01")
	assert.Equal(t, "v1.2.3", rootCmd.Version)

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)

	versionCmd.Run(versionCmd, nil)
	out := buf.String()
	assert.Contains(t, out, "idfrun v1.2.3")
	assert.Contains(t, out, "commit: abc123")
	assert.Contains(t, out, "built: 2026-01-01")
	assert.Contains(t, out, "go: "+runtime.Version())

	buf.Reset()
	versionShort = true
	versionCmd.Run(versionCmd, nil)
	require.Equal(t, "1.2.3\n", buf.String())
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "dev", want: "dev"},
		{in: "1.0.0", want: "v1.0.0"},
		{in: "v2.1.0", want: "v2.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVersion(tt.in))
		})
	}
}
