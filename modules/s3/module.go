package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/specialistvlad/sweepgrid/internal/ctxlog"
	"github.com/specialistvlad/sweepgrid/internal/registry"
	"github.com/specialistvlad/sweepgrid/internal/sweep"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `notify "s3"` block.
type Input struct {
	UploadURL   string `hcl:"upload_url"`
	ContentType string `hcl:"content_type,optional"`
	Timeout     string `hcl:"timeout,optional"`
}

// DefaultInput returns an Input with every optional field at its default.
func DefaultInput() *Input {
	return &Input{
		ContentType: "application/json",
		Timeout:     "30s",
	}
}

// Manifest is the document uploaded when a sweep finishes.
type Manifest struct {
	SweepID  string        `json:"sweep_id"`
	Sweep    string        `json:"sweep"`
	Total    int           `json:"total"`
	Started  time.Time     `json:"started"`
	Finished time.Time     `json:"finished"`
	Error    string        `json:"error,omitempty"`
	Runs     []ManifestRun `json:"runs"`
}

// ManifestRun is one combination in a Manifest.
type ManifestRun struct {
	Name     string `json:"name"`
	Command  string `json:"command"`
	Status   string `json:"status"`
	Remat    string `json:"remat"`
	Int8     string `json:"int8"`
	Dtype    string `json:"dtype"`
	FwdQuant string `json:"fwd_quant"`
	PRNGKey  string `json:"prng_key"`
	Error    string `json:"error,omitempty"`
}

// Notifier collects runs and uploads the manifest to a pre-signed URL.
type Notifier struct {
	input  Input
	client *http.Client

	mu       sync.Mutex
	manifest Manifest
}

// New validates the input and returns a Notifier.
func New(in *Input) (*Notifier, error) {
	if in.UploadURL == "" {
		return nil, errors.New("upload_url must not be empty")
	}
	timeout, err := time.ParseDuration(in.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout %q: %w", in.Timeout, err)
	}
	return &Notifier{
		input:  *in,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// Observe records run events and uploads the manifest on the finished event.
// Upload failures are logged.
func (n *Notifier) Observe(ctx context.Context, ev sweep.Event) {
	n.mu.Lock()
	switch ev.Kind {
	case sweep.EventStarted:
		n.manifest = Manifest{SweepID: ev.SweepID, Sweep: ev.Sweep, Total: ev.Total, Started: ev.Time, Runs: []ManifestRun{}}
	case sweep.EventSubmitted, sweep.EventFailed, sweep.EventSkipped:
		if ev.Run != nil {
			n.manifest.Runs = append(n.manifest.Runs, manifestRun(ev))
		}
	case sweep.EventFinished:
		n.manifest.Finished = ev.Time
		if ev.Err != nil {
			n.manifest.Error = ev.Err.Error()
		}
	}
	m := n.manifest
	n.mu.Unlock()

	if ev.Kind != sweep.EventFinished {
		return
	}
	logger := ctxlog.FromContext(ctx).With("notifier", "s3")
	// The client timeout bounds the upload once the sweep context is gone.
	if err := n.Upload(context.WithoutCancel(ctx), m); err != nil {
		logger.Error("Failed to upload sweep manifest.", "error", err)
		return
	}
	logger.Info("Uploaded sweep manifest.", "runs", len(m.Runs))
}

// Upload PUTs the manifest to the configured URL.
func (n *Notifier) Upload(ctx context.Context, m Manifest) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, n.input.UploadURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", n.input.ContentType)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload failed with status: %s", resp.Status)
	}
	return nil
}

// Close is a no-op: the manifest is uploaded on the finished event.
func (n *Notifier) Close() error { return nil }

func manifestRun(ev sweep.Event) ManifestRun {
	r := ManifestRun{
		Name:     ev.Run.Name,
		Command:  ev.Run.Command,
		Status:   string(ev.Kind),
		Remat:    ev.Run.Remat,
		Int8:     ev.Run.Int8,
		Dtype:    ev.Run.Dtype,
		FwdQuant: ev.Run.FwdQuant,
		PRNGKey:  ev.Run.PRNGKey,
	}
	if ev.Err != nil {
		r.Error = ev.Err.Error()
	}
	return r
}

// Register registers the notifier with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNotifier("s3", &registry.RegisteredNotifier{
		NewInput: func() any { return DefaultInput() },
		New: func(_ context.Context, _ registry.Deps, input any) (registry.Notifier, error) {
			return New(input.(*Input))
		},
	})
}
