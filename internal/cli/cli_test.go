package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with HOME pointing at it, so
// no real config is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(oldWd) })
	return dir
}
