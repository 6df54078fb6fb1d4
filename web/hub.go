package web

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jonboulle/clockwork"

	"sportz-service/pkg/common"
	"sportz-service/pkg/metrics"
	"sportz-service/pkg/models"
)

const broadcastQueueSize = 256

type eviction struct {
	session *Session
	reason  string
}

// Hub tracks subscriber sessions and fans broadcast events out to them. All membership
// changes and deliveries happen on the Run goroutine, so each session sees events in
// broadcast order.
type Hub struct {
	sessions   map[*Session]struct{}
	register   chan *Session
	unregister chan eviction
	broadcast  chan []byte
	done       chan struct{}
	clock      clockwork.Clock
	logger     common.Logger
	mu         sync.RWMutex
}

func NewHub(clock clockwork.Clock) *Hub {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Hub{
		sessions:   make(map[*Session]struct{}),
		register:   make(chan *Session),
		unregister: make(chan eviction),
		broadcast:  make(chan []byte, broadcastQueueSize),
		done:       make(chan struct{}),
		clock:      clock,
		logger:     common.NewLogger("Hub"),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then closes every session.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case s := <-h.register:
			h.mu.Lock()
			h.sessions[s] = struct{}{}
			total := len(h.sessions)
			h.mu.Unlock()
			metrics.SubscriberSessions.Set(float64(total))
			h.logger.Info("Session %s registered. Total sessions: %d", s.ID, total)

		case ev := <-h.unregister:
			h.remove(ev.session, ev.reason)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Register adds s to the broadcast set.
func (h *Hub) Register(s *Session) {
	select {
	case h.register <- s:
	case <-h.done:
		s.close()
	}
}

// Unregister removes s and closes it. Unknown or already removed sessions are ignored.
func (h *Hub) Unregister(s *Session) {
	h.evict(s, "")
}

func (h *Hub) evict(s *Session, reason string) {
	select {
	case h.unregister <- eviction{session: s, reason: reason}:
	case <-h.done:
		s.close()
	}
}

// Broadcast serializes evt once and queues it for every registered session.
func (h *Hub) Broadcast(evt *models.BroadcastEvent) {
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("Failed to marshal %s event: %v", evt.Type, err)
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// Publish implements services.EventPublisher.
func (h *Hub) Publish(evt *models.BroadcastEvent) {
	h.Broadcast(evt)
}

// Count returns the number of registered sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) deliver(msg []byte) {
	h.mu.RLock()
	var closed, slow []*Session
	for s := range h.sessions {
		switch {
		case !s.Alive():
			closed = append(closed, s)
		case !s.Send(msg):
			slow = append(slow, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range closed {
		h.remove(s, "")
	}
	for _, s := range slow {
		h.remove(s, "slow")
	}
}

func (h *Hub) remove(s *Session, reason string) {
	h.mu.Lock()
	_, ok := h.sessions[s]
	if ok {
		delete(h.sessions, s)
	}
	total := len(h.sessions)
	h.mu.Unlock()

	s.close()
	if !ok {
		return
	}

	metrics.SubscriberSessions.Set(float64(total))
	if reason != "" {
		metrics.SubscriberEvictions.WithLabelValues(reason).Inc()
		h.logger.Warn("Session %s evicted (%s). Total sessions: %d", s.ID, reason, total)
		return
	}
	h.logger.Info("Session %s unregistered. Total sessions: %d", s.ID, total)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.sessions {
		s.close()
		delete(h.sessions, s)
	}
	metrics.SubscriberSessions.Set(0)
}
