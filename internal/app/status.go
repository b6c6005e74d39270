package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/specialistvlad/sweepgrid/internal/ctxlog"
	"github.com/specialistvlad/sweepgrid/internal/sweep"
)

// Progress is the body of GET /progress.
type Progress struct {
	SweepID  string `json:"sweep_id"`
	Sweep    string `json:"sweep"`
	Total    int    `json:"total"`
	Done     int    `json:"done"`
	Skipped  int    `json:"skipped"`
	Failed   int    `json:"failed"`
	Current  string `json:"current,omitempty"`
	Finished bool   `json:"finished"`
	Error    string `json:"error,omitempty"`
}

// progressTracker observes sweep events for the status server.
type progressTracker struct {
	mu sync.Mutex
	p  Progress
}

func (t *progressTracker) Observe(_ context.Context, ev sweep.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Kind {
	case sweep.EventStarted:
		t.p = Progress{SweepID: ev.SweepID, Sweep: ev.Sweep, Total: ev.Total}
	case sweep.EventSubmitted:
		t.p.Done++
		t.p.Current = ev.Run.Name
	case sweep.EventSkipped:
		t.p.Skipped++
		t.p.Current = ev.Run.Name
	case sweep.EventFailed:
		t.p.Failed++
		t.p.Current = ev.Run.Name
	case sweep.EventFinished:
		t.p.Finished = true
		if ev.Err != nil {
			t.p.Error = ev.Err.Error()
		}
	}
}

func (t *progressTracker) snapshot() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.p
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *App) progressHandler(t *progressTracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(t.snapshot()); err != nil {
			a.logger.Warn("Failed to write progress response.", "error", err)
		}
	}
}

func (a *App) statusRouter(t *progressTracker) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", a.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/progress", a.progressHandler(t)).Methods(http.MethodGet)
	return r
}

// startStatusServer binds the port before returning so that a busy port is
// reported as a startup error.
func (a *App) startStatusServer(ctx context.Context, port int, t *progressTracker) (*http.Server, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Configuring status server.")

	addr := fmt.Sprintf(":%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start status server: %w", err)
	}

	srv := &http.Server{
		Handler:           a.statusRouter(t),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Status server starting.", "address", fmt.Sprintf("http://localhost%s/progress", addr))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Status server failed unexpectedly.", "error", err)
		}
	}()
	return srv, nil
}

func (a *App) stopStatusServer(ctx context.Context, srv *http.Server) {
	logger := ctxlog.FromContext(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	logger.Debug("Shutting down status server.")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Status server shutdown failed.", "error", err)
		return
	}
	logger.Debug("Status server shut down gracefully.")
}
