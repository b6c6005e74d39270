package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/specialistvlad/sweepgrid/internal/registry"
	"github.com/specialistvlad/sweepgrid/internal/sweep"
)

// RecordingModule registers a "record" submitter that remembers every job it
// is given. A job whose run name equals fail_on fails with "exit status 1".
type RecordingModule struct {
	mu   sync.Mutex
	jobs []sweep.Job
}

type recordInput struct {
	FailOn string `hcl:"fail_on,optional"`
}

type recordSubmitter struct {
	m      *RecordingModule
	failOn string
}

func (s *recordSubmitter) Submit(_ context.Context, job sweep.Job) error {
	s.m.mu.Lock()
	s.m.jobs = append(s.m.jobs, job)
	s.m.mu.Unlock()

	if job.Name == s.failOn {
		return errors.New("exit status 1")
	}
	return nil
}

// Register registers the submitter with the engine.
func (m *RecordingModule) Register(r *registry.Registry) {
	r.RegisterSubmitter("record", &registry.RegisteredSubmitter{
		NewInput: func() any { return &recordInput{} },
		New: func(_ context.Context, _ registry.Deps, input any) (sweep.Submitter, error) {
			return &recordSubmitter{m: m, failOn: input.(*recordInput).FailOn}, nil
		},
	})
}

// Jobs returns a copy of the recorded jobs in submission order.
func (m *RecordingModule) Jobs() []sweep.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sweep.Job(nil), m.jobs...)
}

// RunNames returns the run names of the recorded jobs in submission order.
func (m *RecordingModule) RunNames() []string {
	jobs := m.Jobs()
	out := make([]string, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Name)
	}
	return out
}
