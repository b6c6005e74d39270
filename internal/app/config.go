package app

import (
	"errors"
	"fmt"
)

const (
	// CommandRun submits the selected sweeps.
	CommandRun = "run"
	// CommandHistory lists the ledger.
	CommandHistory = "history"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SweepPaths []string // hcl files or directories; empty means the built-in sweep
	Sweeps     []string // sweep names to run; empty means all
	Command    string

	DryRun     bool
	Resume     bool
	LedgerPath string // empty disables the ledger
	EnvFile    string

	StatusPort   int
	LogFormat    string
	LogLevel     string
	HistoryLimit int
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Command == "" {
		cfg.Command = CommandRun
	}
	switch cfg.Command {
	case CommandRun, CommandHistory:
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q: must be text or json", cfg.LogFormat)
	}

	if cfg.StatusPort < 0 || cfg.StatusPort > 65535 {
		return nil, fmt.Errorf("status port %d is out of range", cfg.StatusPort)
	}
	if cfg.HistoryLimit < 0 {
		return nil, errors.New("history limit must not be negative")
	}
	if cfg.Resume && cfg.LedgerPath == "" {
		return nil, errors.New("--resume needs a ledger; set --ledger")
	}
	if cfg.Command == CommandHistory && cfg.LedgerPath == "" {
		return nil, errors.New("history needs a ledger; set --ledger")
	}

	return &cfg, nil
}
