package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/sweepgrid/internal/config"
	"github.com/specialistvlad/sweepgrid/internal/ctxlog"
	"github.com/specialistvlad/sweepgrid/internal/ledger"
	"github.com/specialistvlad/sweepgrid/internal/registry"
	"github.com/specialistvlad/sweepgrid/internal/sweep"
	"github.com/specialistvlad/sweepgrid/modules/print"
)

// Run submits every selected sweep in order and stops at the first failure.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	sweeps, err := a.model.Select(a.config.Sweeps...)
	if err != nil {
		return err
	}
	if len(sweeps) == 0 {
		a.logger.Warn("No sweeps found, nothing to submit.")
		return nil
	}

	var led *ledger.Ledger
	if a.config.LedgerPath != "" {
		led, err = ledger.Open(ctx, a.config.LedgerPath)
		if err != nil {
			return err
		}
		defer led.Close()
	}

	var progress *progressTracker
	if a.config.StatusPort > 0 {
		progress = &progressTracker{}
		srv, err := a.startStatusServer(ctx, a.config.StatusPort, progress)
		if err != nil {
			return err
		}
		defer a.stopStatusServer(ctx, srv)
	}

	for _, s := range sweeps {
		if err := a.runSweep(ctx, s, led, progress); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) runSweep(ctx context.Context, s *config.Sweep, led *ledger.Ledger, progress *progressTracker) error {
	logger := ctxlog.FromContext(ctx).With("sweep", s.Name)
	deps := registry.Deps{Out: a.outW}

	submitter, err := a.registry.Submitter(ctx, s.Submitter, a.converter, deps)
	if err != nil {
		return fmt.Errorf("sweep %q: %w", s.Name, err)
	}

	runner := &sweep.Runner{Submitter: submitter, Out: a.outW}
	if progress != nil {
		runner.Observers = append(runner.Observers, progress)
	}

	if a.config.DryRun {
		logger.Info("Dry run: nothing will be submitted.")
		runner.Submitter = print.Wrap(submitter, a.outW)
	} else {
		if led != nil {
			runner.Observers = append(runner.Observers, led)
		}
		for _, p := range s.Notifiers {
			n, err := a.registry.Notifier(ctx, p, a.converter, deps)
			if err != nil {
				logger.Error("Notifier unavailable, continuing without it.", "type", p.Type, "error", err)
				continue
			}
			defer func() {
				if err := n.Close(); err != nil {
					logger.Warn("Failed to close notifier.", "type", p.Type, "error", err)
				}
			}()
			runner.Observers = append(runner.Observers, n)
		}
	}

	if a.config.Resume && led != nil {
		runner.Skip = led.Skip
	}

	sum, err := runner.Run(ctx, ledger.NewSweepID(), s.Plan())
	logger.Info("Sweep summary.", "sweep_id", sum.SweepID, "total", sum.Total, "submitted", sum.Submitted, "skipped", sum.Skipped)
	return err
}
