package services

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportz-service/pkg/models"
)

func statusOf(t *testing.T, store *MemoryStore, id int64) models.MatchStatus {
	t.Helper()
	m, err := store.GetMatch(context.Background(), id)
	require.NoError(t, err)
	return m.Status
}

func TestStatusSync_SyncOnce(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(testEpoch)
	store := NewMemoryStore(clock)

	m, err := store.CreateMatch(ctx, newTestMatch("A", "B", testEpoch.Add(-2*time.Hour)))
	require.NoError(t, err)

	syncer := NewStatusSync(store, clock, time.Minute)
	assert.EqualValues(t, 1, syncer.SyncOnce(ctx))
	assert.Equal(t, models.MatchStatusFinished, statusOf(t, store, m.ID))
	assert.Zero(t, syncer.SyncOnce(ctx))
}

func TestStatusSync_RunSweepsOnInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := clockwork.NewFakeClockAt(testEpoch)
	store := NewMemoryStore(clock)

	m, err := store.CreateMatch(ctx, newTestMatch("A", "B", testEpoch))
	require.NoError(t, err)

	syncer := NewStatusSync(store, clock, time.Minute)
	done := make(chan struct{})
	go func() {
		syncer.Run(ctx)
		close(done)
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Equal(t, models.MatchStatusLive, statusOf(t, store, m.ID))

	clock.Advance(ProvisionalMatchDuration)
	require.Eventually(t, func() bool {
		return statusOf(t, store, m.ID) == models.MatchStatusFinished
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("status sync did not stop after cancel")
	}
}
