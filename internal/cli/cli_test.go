package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/sweepgrid/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*app.Config, string) {
	t.Helper()
	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse(args, out)
	require.NoError(t, err)
	require.False(t, shouldExit)
	return cfg, out.String()
}

func TestParse_Defaults(t *testing.T) {
	cfg, _ := parse(t)

	assert.Equal(t, app.CommandRun, cfg.Command)
	assert.Empty(t, cfg.SweepPaths)
	assert.Empty(t, cfg.Sweeps)
	assert.Empty(t, cfg.LedgerPath)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, ".env", cfg.EnvFile)
}

func TestParse_RunFlags(t *testing.T) {
	cfg, _ := parse(t, "sweeps/", "-s", "a", "--sweep", "b", "--dry-run", "--resume",
		"--ledger", "l.db", "--status-port", "8080", "--log-level", "DEBUG", "--log-format", "json")

	assert.Equal(t, []string{"sweeps/"}, cfg.SweepPaths)
	assert.Equal(t, []string{"a", "b"}, cfg.Sweeps)
	assert.True(t, cfg.DryRun)
	assert.True(t, cfg.Resume)
	assert.Equal(t, "l.db", cfg.LedgerPath)
	assert.Equal(t, 8080, cfg.StatusPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestParse_History(t *testing.T) {
	cfg, _ := parse(t, "history", "--ledger", "l.db", "--limit", "5")

	assert.Equal(t, app.CommandHistory, cfg.Command)
	assert.Equal(t, 5, cfg.HistoryLimit)
	assert.Equal(t, "l.db", cfg.LedgerPath)
}

func TestParse_EnvOverlay(t *testing.T) {
	t.Setenv("SWEEPGRID_DRY_RUN", "true")
	t.Setenv("SWEEPGRID_STATUS_PORT", "9000")
	t.Setenv("SWEEPGRID_LOG_LEVEL", "warn")

	cfg, _ := parse(t, "--log-level", "error")

	assert.True(t, cfg.DryRun)
	assert.Equal(t, 9000, cfg.StatusPort)
	assert.Equal(t, "error", cfg.LogLevel, "an explicit flag beats the environment")
}

func TestParse_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.env")
	require.NoError(t, os.WriteFile(path, []byte("SWEEPGRID_SWEEP=from_env_file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SWEEPGRID_SWEEP") })

	cfg, _ := parse(t, "--env-file", path)

	assert.Equal(t, []string{"from_env_file"}, cfg.Sweeps)
}

func TestParse_MissingExplicitEnvFile(t *testing.T) {
	_, _, err := Parse([]string{"--env-file", filepath.Join(t.TempDir(), "nope.env")}, &bytes.Buffer{})

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "failed to load env file")
}

func TestParse_Help(t *testing.T) {
	out := &bytes.Buffer{}
	cfg, shouldExit, err := Parse([]string{"--help"}, out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "--dry-run")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"unknown flag", []string{"--bogus"}, "unknown flag: --bogus"},
		{"bad port", []string{"--status-port", "many"}, "invalid argument"},
		{"bad log level", []string{"--log-level", "loud"}, "invalid log level"},
		{"resume without ledger", []string{"--resume"}, "--resume needs a ledger"},
		{"history without ledger", []string{"history"}, "history needs a ledger"},
		{"history with args", []string{"history", "--ledger", "l.db", "extra"}, "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, shouldExit, err := Parse(tt.args, &bytes.Buffer{})

			assert.Nil(t, cfg)
			assert.False(t, shouldExit)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tt.wantMsg)
		})
	}
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "SWEEPGRID_STATUS_PORT", EnvName("status-port"))
	assert.Equal(t, "SWEEPGRID_LEDGER", EnvName("ledger"))
}
