package services

import (
	"context"
	"encoding/json"

	"sportz-service/pkg/models"
)

// StateApplier writes score changes and announces them. There is no diff against the stored
// state: every successful update is broadcast, including ones that change nothing.
type StateApplier struct {
	store    MatchStore
	notifier Notifier
}

func NewStateApplier(store MatchStore, notifier Notifier) *StateApplier {
	return &StateApplier{store: store, notifier: notifier}
}

// Apply overwrites the score of matchID. A nil metadata keeps the stored document.
// Returns common.ErrNotFound if the match no longer exists.
func (a *StateApplier) Apply(ctx context.Context, matchID int64, homeScore, awayScore int, metadata json.RawMessage) (*models.Match, error) {
	updated, err := a.store.UpdateMatchScore(ctx, matchID, homeScore, awayScore, metadata)
	if err != nil {
		return nil, err
	}

	a.notifier.ScoreUpdated(updated.ID, models.ScoreUpdate{
		HomeScore: updated.HomeScore,
		AwayScore: updated.AwayScore,
		Metadata:  updated.Metadata,
	})
	return updated, nil
}
