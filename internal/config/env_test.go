package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sweep.env")
	require.NoError(t, os.WriteFile(path, []byte("SWEEPGRID_TEST_BUCKET=from-file\nSWEEPGRID_TEST_KEEP=from-file\n"), 0600))

	t.Setenv("SWEEPGRID_TEST_KEEP", "from-env")
	t.Setenv("SWEEPGRID_TEST_BUCKET", "")
	require.NoError(t, os.Unsetenv("SWEEPGRID_TEST_BUCKET"))

	require.NoError(t, LoadEnv(path, true))
	t.Cleanup(func() { os.Unsetenv("SWEEPGRID_TEST_BUCKET") })

	assert.Equal(t, "from-file", os.Getenv("SWEEPGRID_TEST_BUCKET"))
	assert.Equal(t, "from-env", os.Getenv("SWEEPGRID_TEST_KEEP"), "existing variables are not overridden")
}

func TestLoadEnv_Missing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.env")

	assert.NoError(t, LoadEnv(missing, false), "implicit env file may be absent")
	assert.ErrorContains(t, LoadEnv(missing, true), "failed to load env file")
	assert.NoError(t, LoadEnv("", true))
}
