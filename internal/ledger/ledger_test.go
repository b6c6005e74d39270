package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/sweepgrid/internal/sweep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestLedger_RecordAndList(t *testing.T) {
	l := openTemp(t)
	ctx := context.Background()
	t0 := time.Unix(1700000000, 0)

	require.NoError(t, l.Record(ctx, Entry{SweepID: "a", Sweep: "s", RunName: "r1", Command: "c1", Status: StatusSubmitted, Time: t0}))
	require.NoError(t, l.Record(ctx, Entry{SweepID: "a", Sweep: "s", RunName: "r2", Command: "c2", Status: StatusFailed, Error: "boom", Time: t0.Add(time.Second)}))

	entries, err := l.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "r2", entries[0].RunName, "most recent first")
	assert.Equal(t, StatusFailed, entries[0].Status)
	assert.Equal(t, "boom", entries[0].Error)
	assert.True(t, entries[1].Time.Equal(t0))

	limited, err := l.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestLedger_Submitted(t *testing.T) {
	l := openTemp(t)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, Entry{RunName: "failed-run", Status: StatusFailed}))
	require.NoError(t, l.Record(ctx, Entry{RunName: "good-run", Status: StatusSubmitted}))

	ok, err := l.Submitted(ctx, "good-run")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Submitted(ctx, "failed-run")
	require.NoError(t, err)
	assert.False(t, ok, "failed runs are retried on resume")

	skip, err := l.Skip(ctx, sweep.Run{Name: "good-run"})
	require.NoError(t, err)
	assert.True(t, skip)
}

func TestLedger_Observe(t *testing.T) {
	l := openTemp(t)
	ctx := context.Background()
	run := &sweep.Run{Name: "r", Command: "bash run.sh"}

	l.Observe(ctx, sweep.Event{Kind: sweep.EventStarted, SweepID: "id", Sweep: "s"})
	l.Observe(ctx, sweep.Event{Kind: sweep.EventSubmitted, SweepID: "id", Sweep: "s", Run: run})
	l.Observe(ctx, sweep.Event{Kind: sweep.EventFailed, SweepID: "id", Sweep: "s", Run: run, Err: errors.New("quota")})
	l.Observe(ctx, sweep.Event{Kind: sweep.EventFinished, SweepID: "id", Sweep: "s"})

	entries, err := l.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2, "only run events are recorded")
	assert.Equal(t, StatusFailed, entries[0].Status)
	assert.Equal(t, "quota", entries[0].Error)
	assert.Equal(t, StatusSubmitted, entries[1].Status)
	assert.Equal(t, "bash run.sh", entries[1].Command)
	assert.Equal(t, "id", entries[1].SweepID)
}

func TestLedger_ObserveRecordsAfterCancel(t *testing.T) {
	l := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := &sweep.Run{Name: "r1", Command: "bash run.sh"}
	l.Observe(ctx, sweep.Event{Kind: sweep.EventFailed, SweepID: "id", Sweep: "s", Run: run, Err: context.Canceled})

	entries, err := l.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, StatusFailed, entries[0].Status)
	assert.Equal(t, "r1", entries[0].RunName)
	assert.Equal(t, "context canceled", entries[0].Error)
}

func TestLedger_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	ctx := context.Background()

	l, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, l.Record(ctx, Entry{RunName: "r", Status: StatusSubmitted}))
	require.NoError(t, l.Close())

	l, err = Open(ctx, path)
	require.NoError(t, err)
	defer l.Close()
	ok, err := l.Submitted(ctx, "r")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewSweepID(t *testing.T) {
	a, b := NewSweepID(), NewSweepID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 20)
}
