package sweep

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/specialistvlad/sweepgrid/internal/ctxlog"
)

//go:generate mockgen -destination=mock_submitter_test.go -package=sweep . Submitter

// Submitter hands a single run to the job submission system and waits until
// the submission call returns.
type Submitter interface {
	Submit(ctx context.Context, job Job) error
}

// Job is what a Submitter receives for each combination.
type Job struct {
	Run
	SweepID string
	Sweep   string
	Index   int
	Total   int
}

// SkipFunc reports whether a run should be skipped instead of submitted.
type SkipFunc func(ctx context.Context, run Run) (bool, error)

// SubmitError is returned by Runner.Run when a submission fails. It unwraps
// to the submitter's error unchanged.
type SubmitError struct {
	RunName string
	Err     error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submitting run %s: %v", e.RunName, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// Summary reports what a Runner did.
type Summary struct {
	SweepID   string
	Total     int
	Submitted int
	Skipped   int
}

// Runner submits the runs of a plan one after another.
type Runner struct {
	Submitter Submitter
	// Out receives the two console lines printed per combination.
	Out       io.Writer
	Observers []Observer
	// Skip is consulted before each submission when set.
	Skip SkipFunc
}

// Run enumerates the plan and submits every run in order. It returns at the
// first error; runs after the failing one are not attempted.
func (r *Runner) Run(ctx context.Context, sweepID string, p Plan) (sum Summary, err error) {
	logger := ctxlog.FromContext(ctx).With("sweep", p.Name, "sweep_id", sweepID)
	total := p.Axes.Count()
	sum = Summary{SweepID: sweepID, Total: total}

	out := r.Out
	if out == nil {
		out = io.Discard
	}
	if r.Submitter == nil {
		return sum, fmt.Errorf("sweep %q has no submitter", p.Name)
	}

	r.emit(ctx, Event{Kind: EventStarted, SweepID: sweepID, Sweep: p.Name, Total: total})
	defer func() {
		r.emit(ctx, Event{Kind: EventFinished, SweepID: sweepID, Sweep: p.Name, Total: total, Err: err})
	}()

	if total == 0 {
		logger.Warn("Sweep has an empty axis, nothing to submit.")
		return sum, nil
	}
	logger.Info("Starting sweep.", "combinations", total)

	index := 0
	for c := range Enumerate(p.Axes) {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("sweep %q interrupted before run %d of %d: %w", p.Name, index+1, total, err)
		}

		run := Build(p, c)
		fmt.Fprintln(out, StatusLine(c))
		fmt.Fprintf(out, "RUN_NAME=%s\n", run.Name)

		if r.Skip != nil {
			skip, err := r.Skip(ctx, run)
			if err != nil {
				return sum, fmt.Errorf("checking run %s: %w", run.Name, err)
			}
			if skip {
				logger.Info("Skipping run already submitted.", "run", run.Name)
				sum.Skipped++
				r.emit(ctx, Event{Kind: EventSkipped, SweepID: sweepID, Sweep: p.Name, Index: index, Total: total, Run: &run})
				index++
				continue
			}
		}

		job := Job{Run: run, SweepID: sweepID, Sweep: p.Name, Index: index, Total: total}
		logger.Debug("Submitting run.", "run", run.Name, "index", index, "command", run.Command)
		if err := r.Submitter.Submit(ctx, job); err != nil {
			logger.Error("Submission failed, aborting sweep.", "run", run.Name, "error", err)
			r.emit(ctx, Event{Kind: EventFailed, SweepID: sweepID, Sweep: p.Name, Index: index, Total: total, Run: &run, Err: err})
			return sum, &SubmitError{RunName: run.Name, Err: err}
		}
		sum.Submitted++
		r.emit(ctx, Event{Kind: EventSubmitted, SweepID: sweepID, Sweep: p.Name, Index: index, Total: total, Run: &run})
		index++
	}

	logger.Info("Sweep finished.", "submitted", sum.Submitted, "skipped", sum.Skipped)
	return sum, nil
}

// emit delivers ev to every observer. Observers get a context that outlives
// cancellation of the sweep, so an interrupted sweep is still recorded.
func (r *Runner) emit(ctx context.Context, ev Event) {
	ev.Time = time.Now()
	ctx = context.WithoutCancel(ctx)
	for _, o := range r.Observers {
		o.Observe(ctx, ev)
	}
}
