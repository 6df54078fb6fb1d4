package services

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportz-service/database"
	"sportz-service/pkg/common"
	"sportz-service/pkg/models"
)

// newPostgresStore connects to TEST_DATABASE_URL and starts from empty tables.
func newPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.Connect(url)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	_, err = db.Exec(`TRUNCATE commentary, matches RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return NewPostgresStore(db)
}

func TestPostgresStore_MatchLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newPostgresStore(t)
	start := time.Now().UTC().Truncate(time.Second)

	_, err := store.FindMatch(ctx, "football", "A", "B")
	require.ErrorIs(t, err, common.ErrNotFound)

	created, err := store.CreateMatch(ctx, newTestMatch("A", "B", start))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.JSONEq(t, `{}`, string(created.Metadata))

	found, err := store.FindMatch(ctx, "football", "A", "B")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	updated, err := store.UpdateMatchScore(ctx, created.ID, 1, 0, json.RawMessage(`{"event_time":"12"}`))
	require.NoError(t, err)
	assert.Equal(t, 1, updated.HomeScore)
	assert.JSONEq(t, `{"event_time":"12"}`, string(updated.Metadata))

	kept, err := store.UpdateMatchScore(ctx, created.ID, 2, 0, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event_time":"12"}`, string(kept.Metadata))

	_, err = store.UpdateMatchScore(ctx, created.ID+100, 1, 1, nil)
	assert.ErrorIs(t, err, common.ErrNotFound)

	changed, err := store.SyncStatuses(ctx, start.Add(3*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, changed)

	finished, err := store.ListMatches(ctx, MatchFilter{Status: models.MatchStatusFinished})
	require.NoError(t, err)
	require.Len(t, finished, 1)
	assert.Equal(t, created.ID, finished[0].ID)
}

func TestPostgresStore_Commentary(t *testing.T) {
	ctx := context.Background()
	store := newPostgresStore(t)

	_, err := store.CreateCommentary(ctx, models.NewCommentary{MatchID: 12345, Message: "orphan"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	m, err := store.CreateMatch(ctx, newTestMatch("A", "B", time.Now().UTC()))
	require.NoError(t, err)

	c, err := store.CreateCommentary(ctx, models.NewCommentary{
		MatchID: m.ID, Minute: 23, Message: "Yellow card", Tags: []string{"card", "yellow"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"card", "yellow"}, c.Tags)
	assert.JSONEq(t, `{}`, string(c.Metadata))

	entries, err := store.ListCommentary(ctx, m.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Yellow card", entries[0].Message)
}
