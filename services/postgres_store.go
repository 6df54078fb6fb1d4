package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"sportz-service/pkg/common"
	"sportz-service/pkg/models"
)

const foreignKeyViolation = "23503"

const matchColumns = `id, sport, home_team, away_team, status, start_time, end_time,
	home_score, away_score, metadata, created_at`

const commentaryColumns = `id, match_id, minute, sequence, period, event_type, actor, team,
	message, metadata, tags, created_at`

// PostgresStore implements MatchStore and CommentaryStore on lib/pq.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	var (
		m        models.Match
		status   string
		metadata []byte
	)
	err := row.Scan(&m.ID, &m.Sport, &m.HomeTeam, &m.AwayTeam, &status, &m.StartTime, &m.EndTime,
		&m.HomeScore, &m.AwayScore, &metadata, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Status = models.MatchStatus(status)
	if metadata != nil {
		m.Metadata = json.RawMessage(metadata)
	}
	return &m, nil
}

func scanCommentary(row rowScanner) (*models.Commentary, error) {
	var (
		c        models.Commentary
		metadata []byte
	)
	err := row.Scan(&c.ID, &c.MatchID, &c.Minute, &c.Sequence, &c.Period, &c.EventType, &c.Actor,
		&c.Team, &c.Message, &metadata, pq.Array(&c.Tags), &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.Metadata = json.RawMessage(metadata)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return &c, nil
}

// jsonParam sends JSON as text so lib/pq does not encode it as bytea.
func jsonParam(raw json.RawMessage) interface{} {
	if raw == nil {
		return nil
	}
	return string(raw)
}

// FindMatch looks a match up by natural key
func (s *PostgresStore) FindMatch(ctx context.Context, sport, homeTeam, awayTeam string) (*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE sport = $1 AND home_team = $2 AND away_team = $3
		ORDER BY id
		LIMIT 1
	`

	m, err := scanMatch(s.db.QueryRowContext(ctx, query, sport, homeTeam, awayTeam))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find match: %v", common.ErrStorageFailed, err)
	}
	return m, nil
}

// CreateMatch inserts a match and returns the stored row
func (s *PostgresStore) CreateMatch(ctx context.Context, nm models.NewMatch) (*models.Match, error) {
	query := `
		INSERT INTO matches (sport, home_team, away_team, status, start_time, end_time, home_score, away_score, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb)
		RETURNING ` + matchColumns

	m, err := scanMatch(s.db.QueryRowContext(ctx, query, nm.Sport, nm.HomeTeam, nm.AwayTeam, string(nm.Status),
		nm.StartTime, nm.EndTime, nm.HomeScore, nm.AwayScore, jsonParam(nm.Metadata)))
	if err != nil {
		return nil, fmt.Errorf("%w: create match: %v", common.ErrStorageFailed, err)
	}
	return m, nil
}

// UpdateMatchScore overwrites the score; last writer wins
func (s *PostgresStore) UpdateMatchScore(ctx context.Context, id int64, homeScore, awayScore int, metadata json.RawMessage) (*models.Match, error) {
	query := `
		UPDATE matches
		SET home_score = $2,
		    away_score = $3,
		    metadata = COALESCE($4::jsonb, metadata)
		WHERE id = $1
		RETURNING ` + matchColumns

	m, err := scanMatch(s.db.QueryRowContext(ctx, query, id, homeScore, awayScore, jsonParam(metadata)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: update match %d: %v", common.ErrStorageFailed, id, err)
	}
	return m, nil
}

// GetMatch fetches one match by id
func (s *PostgresStore) GetMatch(ctx context.Context, id int64) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get match %d: %v", common.ErrStorageFailed, id, err)
	}
	return m, nil
}

// ListMatches returns matches newest first
func (s *PostgresStore) ListMatches(ctx context.Context, filter MatchFilter) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, string(filter.Status), ClampLimit(filter.Limit))
	if err != nil {
		return nil, fmt.Errorf("%w: list matches: %v", common.ErrStorageFailed, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan match: %v", common.ErrStorageFailed, err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list matches: %v", common.ErrStorageFailed, err)
	}
	return matches, nil
}

// SyncStatuses recomputes statuses from the match windows
func (s *PostgresStore) SyncStatuses(ctx context.Context, now time.Time) (int64, error) {
	query := `
		WITH computed AS (
			SELECT id,
			       CASE
			           WHEN $1 < start_time THEN 'scheduled'
			           WHEN $1 >= end_time THEN 'finished'
			           ELSE 'live'
			       END AS next_status
			FROM matches
		)
		UPDATE matches m
		SET status = c.next_status
		FROM computed c
		WHERE m.id = c.id AND m.status <> c.next_status
	`

	res, err := s.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("%w: sync statuses: %v", common.ErrStorageFailed, err)
	}
	return res.RowsAffected()
}

// CreateCommentary inserts a commentary entry for an existing match
func (s *PostgresStore) CreateCommentary(ctx context.Context, nc models.NewCommentary) (*models.Commentary, error) {
	query := `
		INSERT INTO commentary (match_id, minute, sequence, period, event_type, actor, team, message, metadata, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9::jsonb, '{}'::jsonb), $10)
		RETURNING ` + commentaryColumns

	tags := nc.Tags
	if tags == nil {
		tags = []string{}
	}

	c, err := scanCommentary(s.db.QueryRowContext(ctx, query, nc.MatchID, nc.Minute, nc.Sequence, nc.Period,
		nc.EventType, nc.Actor, nc.Team, nc.Message, jsonParam(nc.Metadata), pq.Array(tags)))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: create commentary: %v", common.ErrStorageFailed, err)
	}
	return c, nil
}

// ListCommentary returns the newest entries of a match first
func (s *PostgresStore) ListCommentary(ctx context.Context, matchID int64, limit int) ([]*models.Commentary, error) {
	query := `
		SELECT ` + commentaryColumns + `
		FROM commentary
		WHERE match_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, matchID, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: list commentary: %v", common.ErrStorageFailed, err)
	}
	defer rows.Close()

	entries := make([]*models.Commentary, 0)
	for rows.Next() {
		c, err := scanCommentary(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan commentary: %v", common.ErrStorageFailed, err)
		}
		entries = append(entries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list commentary: %v", common.ErrStorageFailed, err)
	}
	return entries, nil
}
