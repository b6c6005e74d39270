package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/specialistvlad/sweepgrid/internal/sweep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusRouter(t *testing.T) {
	a, _, _ := SetupAppTest(t, &Config{Command: CommandHistory, LedgerPath: "unused.db"})
	tracker := &progressTracker{}
	router := a.statusRouter(tracker)

	ctx := context.Background()
	run := &sweep.Run{Name: "r1"}
	tracker.Observe(ctx, sweep.Event{Kind: sweep.EventStarted, SweepID: "id", Sweep: "s", Total: 3})
	tracker.Observe(ctx, sweep.Event{Kind: sweep.EventSkipped, Run: &sweep.Run{Name: "r0"}})
	tracker.Observe(ctx, sweep.Event{Kind: sweep.EventSubmitted, Run: run})
	tracker.Observe(ctx, sweep.Event{Kind: sweep.EventFailed, Run: &sweep.Run{Name: "r2"}, Err: errors.New("boom")})
	tracker.Observe(ctx, sweep.Event{Kind: sweep.EventFinished, Err: errors.New("boom")})

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK\n", rec.Body.String())
	})

	t.Run("progress", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/progress", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var got Progress
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, Progress{
			SweepID: "id", Sweep: "s", Total: 3,
			Done: 1, Skipped: 1, Failed: 1,
			Current: "r2", Finished: true, Error: "boom",
		}, got)
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
