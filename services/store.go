package services

import (
	"context"
	"encoding/json"
	"time"

	"sportz-service/pkg/models"
)

const (
	// DefaultListLimit is used when a list request gives no limit
	DefaultListLimit = 50
	// MaxListLimit caps list requests
	MaxListLimit = 100
)

// MatchFilter narrows ListMatches. Zero values mean "no constraint".
type MatchFilter struct {
	Status models.MatchStatus
	Limit  int
}

// MatchStore is the persistence the live core depends on.
type MatchStore interface {
	// FindMatch looks a match up by its natural key with exact string comparison.
	// Returns common.ErrNotFound when no match has that key.
	FindMatch(ctx context.Context, sport, homeTeam, awayTeam string) (*models.Match, error)

	CreateMatch(ctx context.Context, m models.NewMatch) (*models.Match, error)

	// UpdateMatchScore overwrites both scores and, when metadata is non-nil, the metadata.
	// Returns common.ErrNotFound for an unknown id.
	UpdateMatchScore(ctx context.Context, id int64, homeScore, awayScore int, metadata json.RawMessage) (*models.Match, error)

	GetMatch(ctx context.Context, id int64) (*models.Match, error)

	// ListMatches returns matches newest first.
	ListMatches(ctx context.Context, filter MatchFilter) ([]*models.Match, error)

	// SyncStatuses moves every match to the status its time window implies at now and
	// returns how many changed.
	SyncStatuses(ctx context.Context, now time.Time) (int64, error)
}

// CommentaryStore persists commentary entries.
type CommentaryStore interface {
	// CreateCommentary returns common.ErrNotFound when the match does not exist.
	CreateCommentary(ctx context.Context, c models.NewCommentary) (*models.Commentary, error)

	// ListCommentary returns the newest entries of a match first.
	ListCommentary(ctx context.Context, matchID int64, limit int) ([]*models.Commentary, error)
}

// ClampLimit applies the default and maximum list sizes.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
