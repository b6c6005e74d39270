package multihost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"

	"github.com/kballard/go-shellquote"
	"github.com/specialistvlad/sweepgrid/internal/ctxlog"
	"github.com/specialistvlad/sweepgrid/internal/registry"
	"github.com/specialistvlad/sweepgrid/internal/sweep"
	"github.com/specialistvlad/sweepgrid/internal/topology"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// DefaultLauncher is the job submission entry point used when none is set.
const DefaultLauncher = "python3 multihost_job.py"

// Input defines the arguments of a `submitter "multihost"` block.
type Input struct {
	Launcher   string `hcl:"launcher,optional"`
	BucketName string `hcl:"bucket_name"`
	TPUType    string `hcl:"tpu_type"`
	NumSlices  int    `hcl:"num_slices,optional"`
	Version    string `hcl:"version,optional"`
	ExtraArgs  string `hcl:"extra_args,optional"`
	Zone       string `hcl:"zone"`
	WorkDir    string `hcl:"workdir,optional"`
}

// DefaultInput returns an Input with every optional field at its default.
func DefaultInput() *Input {
	return &Input{
		Launcher:  DefaultLauncher,
		NumSlices: 1,
	}
}

// execFunc runs argv to completion.
type execFunc func(ctx context.Context, dir string, argv []string, stdout, stderr io.Writer) error

// Submitter hands every run to the multi-host job launcher and waits for it.
type Submitter struct {
	input    Input
	launcher []string
	chips    int
	out      io.Writer
	exec     execFunc
}

// New validates the input and returns a ready Submitter.
func New(ctx context.Context, deps registry.Deps, in *Input) (*Submitter, error) {
	if in.BucketName == "" {
		return nil, errors.New("bucket_name must not be empty")
	}
	if in.Zone == "" {
		return nil, errors.New("zone must not be empty")
	}
	chips, err := topology.Validate(in.TPUType, in.NumSlices)
	if err != nil {
		return nil, err
	}

	launcher, err := shellquote.Split(in.Launcher)
	if err != nil {
		return nil, fmt.Errorf("invalid launcher %q: %w", in.Launcher, err)
	}
	if len(launcher) == 0 {
		return nil, errors.New("launcher must not be empty")
	}

	out := deps.Out
	if out == nil {
		out = io.Discard
	}

	ctxlog.FromContext(ctx).Debug("Multihost submitter configured.",
		"launcher", launcher, "tpu_type", in.TPUType, "num_slices", in.NumSlices, "chips", chips, "zone", in.Zone)

	return &Submitter{
		input:    *in,
		launcher: launcher,
		chips:    chips,
		out:      out,
		exec:     runProcess,
	}, nil
}

// Argv is the full launcher invocation for a job.
func (s *Submitter) Argv(job sweep.Job) []string {
	argv := make([]string, 0, len(s.launcher)+8)
	argv = append(argv, s.launcher...)
	return append(argv,
		"--BUCKET_NAME="+s.input.BucketName,
		"--RUN_NAME="+job.Name,
		"--TPU_TYPE="+s.input.TPUType,
		"--NUM_SLICES="+strconv.Itoa(s.input.NumSlices),
		"--VERSION="+s.input.Version,
		"--COMMAND="+job.Command,
		"--CQR_EXTRA_ARGS="+s.input.ExtraArgs,
		"--ZONE="+s.input.Zone,
	)
}

// Describe renders Argv as a copy-pasteable shell line.
func (s *Submitter) Describe(job sweep.Job) string {
	return shellquote.Join(s.Argv(job)...)
}

// Submit runs the launcher for one job. The launcher's error is returned as is.
func (s *Submitter) Submit(ctx context.Context, job sweep.Job) error {
	logger := ctxlog.FromContext(ctx).With("submitter", "multihost", "run", job.Name)
	logger.Info("Submitting job.", "index", job.Index+1, "total", job.Total, "tpu_type", s.input.TPUType, "chips", s.chips)

	if err := s.exec(ctx, s.input.WorkDir, s.Argv(job), s.out, s.out); err != nil {
		return err
	}
	logger.Debug("Launcher returned.")
	return nil
}

func runProcess(ctx context.Context, dir string, argv []string, stdout, stderr io.Writer) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// Register registers the submitter with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterSubmitter("multihost", &registry.RegisteredSubmitter{
		NewInput: func() any { return DefaultInput() },
		New: func(ctx context.Context, deps registry.Deps, input any) (sweep.Submitter, error) {
			return New(ctx, deps, input.(*Input))
		},
	})
}
