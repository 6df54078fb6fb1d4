package services

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"sportz-service/pkg/common"
	"sportz-service/pkg/models"
)

// MemoryStore keeps matches and commentary in process memory. It backs the service when no
// DATABASE_URL is configured.
type MemoryStore struct {
	mu            sync.RWMutex
	clock         clockwork.Clock
	matches       map[int64]*models.Match
	commentary    map[int64][]*models.Commentary
	nextMatchID   int64
	nextCommentID int64
}

func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{
		clock:      clock,
		matches:    make(map[int64]*models.Match),
		commentary: make(map[int64][]*models.Commentary),
	}
}

func copyMatch(m *models.Match) *models.Match {
	c := *m
	if m.Metadata != nil {
		c.Metadata = append(json.RawMessage(nil), m.Metadata...)
	}
	return &c
}

func (s *MemoryStore) FindMatch(ctx context.Context, sport, homeTeam, awayTeam string) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *models.Match
	for _, m := range s.matches {
		if m.Sport != sport || m.HomeTeam != homeTeam || m.AwayTeam != awayTeam {
			continue
		}
		if found == nil || m.ID < found.ID {
			found = m
		}
	}
	if found == nil {
		return nil, common.ErrNotFound
	}
	return copyMatch(found), nil
}

func (s *MemoryStore) CreateMatch(ctx context.Context, nm models.NewMatch) (*models.Match, error) {
	if !nm.EndTime.After(nm.StartTime) {
		return nil, common.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMatchID++
	m := &models.Match{
		ID:        s.nextMatchID,
		Sport:     nm.Sport,
		HomeTeam:  nm.HomeTeam,
		AwayTeam:  nm.AwayTeam,
		Status:    nm.Status,
		StartTime: nm.StartTime,
		EndTime:   nm.EndTime,
		HomeScore: nm.HomeScore,
		AwayScore: nm.AwayScore,
		Metadata:  nm.Metadata,
		CreatedAt: s.clock.Now(),
	}
	s.matches[m.ID] = m
	return copyMatch(m), nil
}

func (s *MemoryStore) UpdateMatchScore(ctx context.Context, id int64, homeScore, awayScore int, metadata json.RawMessage) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	m.HomeScore = homeScore
	m.AwayScore = awayScore
	if metadata != nil {
		m.Metadata = append(json.RawMessage(nil), metadata...)
	}
	return copyMatch(m), nil
}

func (s *MemoryStore) GetMatch(ctx context.Context, id int64) (*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return copyMatch(m), nil
}

func (s *MemoryStore) ListMatches(ctx context.Context, filter MatchFilter) ([]*models.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]*models.Match, 0, len(s.matches))
	for _, m := range s.matches {
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		matches = append(matches, copyMatch(m))
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID > matches[j].ID
	})

	if limit := ClampLimit(filter.Limit); len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *MemoryStore) SyncStatuses(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed int64
	for _, m := range s.matches {
		next := models.StatusAt(m.StartTime, m.EndTime, now)
		if m.Status != next {
			m.Status = next
			changed++
		}
	}
	return changed, nil
}

func (s *MemoryStore) CreateCommentary(ctx context.Context, nc models.NewCommentary) (*models.Commentary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[nc.MatchID]; !ok {
		return nil, common.ErrNotFound
	}

	metadata := nc.Metadata
	if metadata == nil {
		metadata = json.RawMessage(`{}`)
	}
	tags := nc.Tags
	if tags == nil {
		tags = []string{}
	}

	s.nextCommentID++
	c := &models.Commentary{
		ID:        s.nextCommentID,
		MatchID:   nc.MatchID,
		Minute:    nc.Minute,
		Sequence:  nc.Sequence,
		Period:    nc.Period,
		EventType: nc.EventType,
		Actor:     nc.Actor,
		Team:      nc.Team,
		Message:   nc.Message,
		Metadata:  metadata,
		Tags:      tags,
		CreatedAt: s.clock.Now(),
	}
	s.commentary[nc.MatchID] = append(s.commentary[nc.MatchID], c)

	out := *c
	return &out, nil
}

func (s *MemoryStore) ListCommentary(ctx context.Context, matchID int64, limit int) ([]*models.Commentary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.commentary[matchID]
	limit = ClampLimit(limit)

	out := make([]*models.Commentary, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		c := *entries[i]
		out = append(out, &c)
	}
	return out, nil
}
