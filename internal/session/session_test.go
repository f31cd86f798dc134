package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/census/internal/auth"
	"github.com/mark3labs/census/internal/census"
	"github.com/mark3labs/census/internal/nats"
	"github.com/mark3labs/census/internal/wizard"
)

func openBus(t *testing.T) *nats.Bus {
	t.Helper()
	bus, err := nats.Open(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })
	return bus
}

func TestJournal(t *testing.T) {
	ctx := context.Background()
	bus := openBus(t)
	store := NewStore(bus.JS, bus.Stream)

	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	var rec wizard.Recorder = store
	events := []wizard.Event{
		{Kind: wizard.EventTracked, RecordID: "r1", CurrentStep: 1},
		{Kind: wizard.EventStepRejected, RecordID: "r1", Step: 1, Message: "Region Name is required"},
		{Kind: wizard.EventStepSubmitted, RecordID: "r1", Step: 1, CurrentStep: 2},
		{Kind: wizard.EventSubmitFailed, RecordID: "r2", Step: 1, Message: "submit step 1 failed"},
	}
	for _, ev := range events {
		require.NoError(t, rec.Record(ctx, ev))
	}

	t.Run("history of one record", func(t *testing.T) {
		hist, err := store.History(ctx, "r1")
		require.NoError(t, err)
		require.Len(t, hist, 3)
		assert.Equal(t, wizard.EventTracked, hist[0].Kind)
		assert.Equal(t, wizard.EventStepSubmitted, hist[2].Kind)
		assert.NotEmpty(t, hist[0].ID)
		assert.NotEqual(t, hist[0].ID, hist[1].ID)
	})

	t.Run("history of every record", func(t *testing.T) {
		hist, err := store.History(ctx, "")
		require.NoError(t, err)
		assert.Len(t, hist, 4)
	})

	t.Run("summary", func(t *testing.T) {
		hist, err := store.History(ctx, "")
		require.NoError(t, err)
		acts := Summarize(hist)
		require.Len(t, acts, 2)
		assert.Equal(t, "r2", acts[0].RecordID, "most recent first")
		assert.Equal(t, 1, acts[0].Failures)

		r1 := acts[1]
		assert.Equal(t, 1, r1.Rejections)
		assert.Contains(t, r1.Submitted, census.StepLocation)
		assert.False(t, r1.Completed)
		assert.Equal(t, "Region Name is required", r1.LastMessage)
	})
}

func TestTokenStore(t *testing.T) {
	ctx := context.Background()
	bus := openBus(t)

	var store auth.TokenStore = NewTokenStore(bus.KV)

	tok, err := store.LoadToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.SaveToken(ctx, "abc"))
	require.NoError(t, store.SaveToken(ctx, "def"))
	tok, err = store.LoadToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "def", tok)

	require.NoError(t, store.ClearToken(ctx))
	require.NoError(t, store.ClearToken(ctx))
	tok, err = store.LoadToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestTokenSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	bus, err := nats.Open(ctx, dir)
	require.NoError(t, err)
	require.NoError(t, NewTokenStore(bus.KV).SaveToken(ctx, "persisted"))
	require.NoError(t, bus.Close())

	bus, err = nats.Open(ctx, dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })

	mgr, err := auth.NewManager(ctx, NewTokenStore(bus.KV))
	require.NoError(t, err)
	assert.Equal(t, "persisted", mgr.Token())
}
