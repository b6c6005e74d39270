package app

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/sweepgrid/internal/config"
	"github.com/specialistvlad/sweepgrid/internal/ctxlog"
	"github.com/specialistvlad/sweepgrid/internal/registry"
)

// defaultSweep is loaded when no sweep path is given.
//
//go:embed default_sweep.hcl
var defaultSweep []byte

const defaultSweepName = "default_sweep.hcl"

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	registry  *registry.Registry
	model     *config.Model
	converter config.Converter
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Console output goes to outW and logs to logW.
func NewApp(outW, logW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	a := &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
	}
	if cfg.Command == CommandHistory {
		return a
	}

	var (
		model *config.Model
		conv  config.Converter
		err   error
	)
	if len(cfg.SweepPaths) == 0 {
		logger.Debug("No sweep path given, using the built-in sweep.")
		model, conv, err = loader.LoadBytes(ctx, defaultSweepName, defaultSweep)
	} else {
		model, conv, err = loader.Load(ctx, cfg.SweepPaths...)
	}
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Sweep configuration loaded.", "sweeps", len(model.Sweeps))

	if err := reg.Validate(ctx, model); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	a.model = model
	a.converter = conv
	return a
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Execute runs the configured command.
func (a *App) Execute(ctx context.Context) error {
	if a.config.Command == CommandHistory {
		return a.History(ctx)
	}
	return a.Run(ctx)
}
