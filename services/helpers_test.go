package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"sportz-service/pkg/models"
)

var testEpoch = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

// recordingPublisher collects every event it is handed.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.BroadcastEvent
}

func (p *recordingPublisher) Publish(evt *models.BroadcastEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) Events() []*models.BroadcastEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*models.BroadcastEvent(nil), p.events...)
}

func (p *recordingPublisher) Types() []models.EventType {
	var types []models.EventType
	for _, evt := range p.Events() {
		types = append(types, evt.Type)
	}
	return types
}

// failingStore wraps a MatchStore and fails selected operations.
type failingStore struct {
	MatchStore
	findErr   error
	createErr error
	updateErr error
}

func (s *failingStore) FindMatch(ctx context.Context, sport, homeTeam, awayTeam string) (*models.Match, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.MatchStore.FindMatch(ctx, sport, homeTeam, awayTeam)
}

func (s *failingStore) CreateMatch(ctx context.Context, m models.NewMatch) (*models.Match, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.MatchStore.CreateMatch(ctx, m)
}

func (s *failingStore) UpdateMatchScore(ctx context.Context, id int64, homeScore, awayScore int, metadata json.RawMessage) (*models.Match, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.MatchStore.UpdateMatchScore(ctx, id, homeScore, awayScore, metadata)
}

var errBoom = errors.New("boom")
