package socketio

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/sweepgrid/internal/ctxlog"
	"github.com/specialistvlad/sweepgrid/internal/registry"
	"github.com/specialistvlad/sweepgrid/internal/sweep"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `notify "socketio"` block.
type Input struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	Event              string `hcl:"event,optional"`
	ConnectTimeout     string `hcl:"connect_timeout,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

// DefaultInput returns an Input with every optional field at its default.
func DefaultInput() *Input {
	return &Input{
		Namespace:      "/",
		Event:          "sweep",
		ConnectTimeout: "15s",
	}
}

// Notifier forwards sweep events to a socket.io server.
type Notifier struct {
	event      string
	emit       func(event string, payload map[string]any)
	disconnect func()
}

// New connects to the server and waits for the connection to be accepted.
func New(ctx context.Context, in *Input) (*Notifier, error) {
	logger := ctxlog.FromContext(ctx).With("notifier", "socketio", "url", in.URL)

	if in.URL == "" {
		return nil, errors.New("url must not be empty")
	}
	if in.Event == "" {
		return nil, errors.New("event must not be empty")
	}
	timeout, err := time.ParseDuration(in.ConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid connect_timeout %q: %w", in.ConnectTimeout, err)
	}
	parsedURL, err := url.Parse(in.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("url %q must be absolute", in.URL)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if in.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(in.Namespace, opts)

	done := make(chan error, 1)
	io.On(types.EventName("connect"), func(...any) {
		select {
		case done <- nil:
		default:
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connection refused")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case done <- err:
		default:
		}
	})

	io.Connect()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("failed to connect to %s: %w", in.URL, err)
		}
	case <-timer.C:
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s connecting to %s", timeout, in.URL)
	case <-ctx.Done():
		io.Disconnect()
		return nil, ctx.Err()
	}
	logger.Info("Connected.", "namespace", in.Namespace, "sid", io.Id())

	return &Notifier{
		event:      in.Event,
		emit:       func(event string, payload map[string]any) { io.Emit(event, payload) },
		disconnect: func() { io.Disconnect() },
	}, nil
}

// Observe emits one socket.io event per sweep event.
func (n *Notifier) Observe(ctx context.Context, ev sweep.Event) {
	ctxlog.FromContext(ctx).Debug("Emitting sweep event.", "event", n.event, "kind", ev.Kind)
	n.emit(n.event, Payload(ev))
}

// Close disconnects from the server.
func (n *Notifier) Close() error {
	n.disconnect()
	return nil
}

// Payload is the JSON-compatible form of a sweep event.
func Payload(ev sweep.Event) map[string]any {
	p := map[string]any{
		"kind":     string(ev.Kind),
		"sweep_id": ev.SweepID,
		"sweep":    ev.Sweep,
		"index":    ev.Index,
		"total":    ev.Total,
		"time":     ev.Time.UTC().Format(time.RFC3339),
	}
	if ev.Run != nil {
		p["run_name"] = ev.Run.Name
		p["command"] = ev.Run.Command
		p["axes"] = map[string]any{
			"remat":     ev.Run.Remat,
			"int8":      ev.Run.Int8,
			"dtype":     ev.Run.Dtype,
			"fwd_quant": ev.Run.FwdQuant,
			"prng_key":  ev.Run.PRNGKey,
		}
	}
	if ev.Err != nil {
		p["error"] = ev.Err.Error()
	}
	return p
}

// Register registers the notifier with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterNotifier("socketio", &registry.RegisteredNotifier{
		NewInput: func() any { return DefaultInput() },
		New: func(ctx context.Context, _ registry.Deps, input any) (registry.Notifier, error) {
			return New(ctx, input.(*Input))
		},
	})
}
