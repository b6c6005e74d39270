package multihost

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"testing"

	"github.com/specialistvlad/sweepgrid/internal/registry"
	"github.com/specialistvlad/sweepgrid/internal/sweep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *Input {
	in := DefaultInput()
	in.BucketName = "maxtext-int8-sweeps"
	in.TPUType = "v5litepod-256"
	in.Version = "v2-alpha-tpuv5-lite"
	in.ExtraArgs = "--best-effort"
	in.Zone = "us-east5-b"
	return in
}

func testJob() sweep.Job {
	plan := sweep.DefaultPlan()
	run := sweep.Build(plan, sweep.Combinations(plan.Axes)[3])
	return sweep.Job{Run: run, Sweep: plan.Name, Index: 3, Total: 8}
}

func TestArgv(t *testing.T) {
	s, err := New(context.Background(), registry.Deps{}, validInput())
	require.NoError(t, err)

	job := testJob()
	assert.Equal(t, []string{
		"python3", "multihost_job.py",
		"--BUCKET_NAME=maxtext-int8-sweeps",
		"--RUN_NAME=int8_sweep_remat_full_useint8_true_dtype_bfloat16_PRNGKey_7_fwdquant_false",
		"--TPU_TYPE=v5litepod-256",
		"--NUM_SLICES=1",
		"--VERSION=v2-alpha-tpuv5-lite",
		"--COMMAND=" + job.Command,
		"--CQR_EXTRA_ARGS=--best-effort",
		"--ZONE=us-east5-b",
	}, s.Argv(job))
}

func TestDescribe_QuotesCommand(t *testing.T) {
	s, err := New(context.Background(), registry.Deps{}, validInput())
	require.NoError(t, err)

	line := s.Describe(testJob())
	assert.Contains(t, line, "python3 multihost_job.py --BUCKET_NAME=maxtext-int8-sweeps")
	assert.Contains(t, line, `'--COMMAND=bash setup.sh MODE=stable && bash`)
}

func TestSubmit_PassesArgvAndReturnsLauncherError(t *testing.T) {
	out := &bytes.Buffer{}
	in := validInput()
	in.WorkDir = "/srv/maxtext"
	s, err := New(context.Background(), registry.Deps{Out: out}, in)
	require.NoError(t, err)

	launchErr := errors.New("exit status 1")
	var gotDir string
	var gotArgv []string
	s.exec = func(_ context.Context, dir string, argv []string, stdout, _ io.Writer) error {
		gotDir, gotArgv = dir, argv
		io.WriteString(stdout, "launching\n")
		return launchErr
	}

	err = s.Submit(context.Background(), testJob())
	assert.Same(t, launchErr, err, "launcher errors are returned unmodified")
	assert.Equal(t, "/srv/maxtext", gotDir)
	assert.Equal(t, s.Argv(testJob()), gotArgv)
	assert.Equal(t, "launching\n", out.String())
}

func TestSubmit_RealProcess(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true(1) not available")
	}

	in := validInput()
	in.Launcher = "true"
	s, err := New(context.Background(), registry.Deps{}, in)
	require.NoError(t, err)
	assert.NoError(t, s.Submit(context.Background(), testJob()))

	in.Launcher = "false"
	s, err = New(context.Background(), registry.Deps{}, in)
	require.NoError(t, err)
	err = s.Submit(context.Background(), testJob())
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
}

func TestNew_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(in *Input)
		wantErr string
	}{
		{"missing bucket", func(in *Input) { in.BucketName = "" }, "bucket_name must not be empty"},
		{"missing zone", func(in *Input) { in.Zone = "" }, "zone must not be empty"},
		{"missing tpu type", func(in *Input) { in.TPUType = "" }, "you must pass your desired target hardware"},
		{"bad tpu type", func(in *Input) { in.TPUType = "v5e-24" }, "power of two"},
		{"zero slices", func(in *Input) { in.NumSlices = 0 }, "num_slices must be a positive integer"},
		{"empty launcher", func(in *Input) { in.Launcher = "  " }, "launcher must not be empty"},
		{"unterminated quote", func(in *Input) { in.Launcher = `python3 "job.py` }, "invalid launcher"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(in)
			_, err := New(context.Background(), registry.Deps{}, in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRegister(t *testing.T) {
	reg := registry.New()
	(&Module{}).Register(reg)
	assert.Equal(t, []string{"multihost"}, reg.SubmitterTypes())
}
