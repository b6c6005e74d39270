package print

import (
	"context"
	"fmt"
	"io"

	"github.com/specialistvlad/sweepgrid/internal/ctxlog"
	"github.com/specialistvlad/sweepgrid/internal/registry"
	"github.com/specialistvlad/sweepgrid/internal/sweep"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input is empty: the print submitter takes no arguments.
type Input struct{}

// Describer is implemented by submitters that can show what Submit would run.
type Describer interface {
	Describe(job sweep.Job) string
}

// Submitter prints jobs instead of submitting them.
type Submitter struct {
	out   io.Writer
	inner sweep.Submitter
}

// New returns a Submitter that prints the run name and command of each job.
func New(out io.Writer) *Submitter {
	return Wrap(nil, out)
}

// Wrap returns a Submitter that prints what inner would do without calling
// its Submit.
func Wrap(inner sweep.Submitter, out io.Writer) *Submitter {
	if out == nil {
		out = io.Discard
	}
	return &Submitter{out: out, inner: inner}
}

// Submit prints the job and always succeeds.
func (s *Submitter) Submit(ctx context.Context, job sweep.Job) error {
	ctxlog.FromContext(ctx).Info("Dry run, not submitting.", "run", job.Name)

	if d, ok := s.inner.(Describer); ok {
		fmt.Fprintf(s.out, "      would run: %s\n", d.Describe(job))
		return nil
	}
	fmt.Fprintf(s.out, "      would submit %s\n", job.Name)
	fmt.Fprintf(s.out, "      command = %q\n", job.Command)
	return nil
}

// Register registers the submitter with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSubmitter("print", &registry.RegisteredSubmitter{
		NewInput: func() any { return new(Input) },
		New: func(_ context.Context, deps registry.Deps, _ any) (sweep.Submitter, error) {
			return New(deps.Out), nil
		},
	})
}
