package print

import (
	"bytes"
	"context"
	"testing"

	"github.com/specialistvlad/sweepgrid/internal/registry"
	"github.com/specialistvlad/sweepgrid/internal/sweep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type describer struct {
	submitted int
}

func (d *describer) Submit(context.Context, sweep.Job) error { d.submitted++; return nil }
func (d *describer) Describe(job sweep.Job) string           { return "launch " + job.Name }

func job() sweep.Job {
	return sweep.Job{Run: sweep.Run{Name: "r1", Command: "bash run.sh 1"}}
}

func TestSubmit_PrintsJob(t *testing.T) {
	out := &bytes.Buffer{}
	require.NoError(t, New(out).Submit(context.Background(), job()))

	assert.Equal(t, "      would submit r1\n      command = \"bash run.sh 1\"\n", out.String())
}

func TestWrap_DescribesWithoutSubmitting(t *testing.T) {
	out := &bytes.Buffer{}
	inner := &describer{}

	require.NoError(t, Wrap(inner, out).Submit(context.Background(), job()))

	assert.Zero(t, inner.submitted)
	assert.Equal(t, "      would run: launch r1\n", out.String())
}

func TestRegister(t *testing.T) {
	reg := registry.New()
	(&Module{}).Register(reg)

	out := &bytes.Buffer{}
	s, err := reg.DefaultSubmitter(context.Background(), "print", registry.Deps{Out: out})
	require.NoError(t, err)
	require.NoError(t, s.Submit(context.Background(), job()))
	assert.Contains(t, out.String(), "would submit r1")
}
