package web

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"sportz-service/pkg/metrics"
)

const (
	writeDeadline    = 5 * time.Second
	pingInterval     = 30 * time.Second
	pongDeadline     = 60 * time.Second
	maxClientMessage = 4096

	// sessionBacklog is how many queued messages a session may hold before its writer
	// must show progress within writeDeadline.
	sessionBacklog = 64
	// maxSessionBacklog is the hard cap on queued messages per session.
	maxSessionBacklog = 4096
)

// wsConn is the part of *websocket.Conn a session uses.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// ClientMessage is a control message sent by a subscriber.
type ClientMessage struct {
	Type string `json:"type"`
}

// Session is one connected subscriber. Only its write pump writes to the connection.
type Session struct {
	ID string

	hub   *Hub
	conn  wsConn
	clock clockwork.Clock
	done  chan struct{}
	alive atomic.Bool
	once  sync.Once

	mu       sync.Mutex
	pending  [][]byte
	progress time.Time
	wake     chan struct{}
}

func newSession(hub *Hub, conn wsConn, clock clockwork.Clock) *Session {
	s := &Session{
		ID:    uuid.NewString(),
		hub:   hub,
		conn:  conn,
		clock: clock,
		done:  make(chan struct{}),
		wake:  make(chan struct{}, 1),
	}
	s.alive.Store(true)
	return s
}

// Alive reports whether the session is still open.
func (s *Session) Alive() bool {
	return s.alive.Load()
}

// Send queues data without blocking. It returns false when the session is closed, when the
// backlog hits maxSessionBacklog, or when the backlog is over sessionBacklog and the writer has
// not taken a message for writeDeadline.
func (s *Session) Send(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Alive() {
		return false
	}
	backlog := len(s.pending)
	if backlog >= maxSessionBacklog {
		return false
	}
	if backlog >= sessionBacklog && s.clock.Since(s.progress) > writeDeadline {
		return false
	}
	if backlog == 0 {
		s.progress = s.clock.Now()
	}
	s.pending = append(s.pending, data)

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// next pops the oldest queued message and marks writer progress.
func (s *Session) next() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil, false
	}
	msg := s.pending[0]
	s.pending[0] = nil
	s.pending = s.pending[1:]
	if len(s.pending) == 0 {
		s.pending = nil
	}
	s.progress = s.clock.Now()
	return msg, true
}

// SendJSON encodes v and queues it.
func (s *Session) SendJSON(v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		s.hub.logger.Error("Failed to marshal message for session %s: %v", s.ID, err)
		return false
	}
	return s.Send(data)
}

// start launches the read and write pumps.
func (s *Session) start() {
	go s.writePump()
	go s.readPump()
}

// close is idempotent.
func (s *Session) close() {
	s.once.Do(func() {
		s.alive.Store(false)
		close(s.done)
		_ = s.conn.Close()
	})
}

func (s *Session) writePump() {
	ticker := s.clock.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
			if !s.flush() {
				return
			}
		case <-ticker.Chan():
			_ = s.conn.SetWriteDeadline(s.clock.Now().Add(writeDeadline))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.hub.evict(s, "write_error")
				return
			}
		}
	}
}

// flush writes every queued message. It returns false once the session has been evicted.
func (s *Session) flush() bool {
	for {
		select {
		case <-s.done:
			return false
		default:
		}

		msg, ok := s.next()
		if !ok {
			return true
		}
		_ = s.conn.SetWriteDeadline(s.clock.Now().Add(writeDeadline))
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			s.hub.logger.Warn("Write to session %s failed: %v", s.ID, err)
			s.hub.evict(s, "write_error")
			return false
		}
		metrics.SubscriberDeliveries.Inc()
	}
}

func (s *Session) readPump() {
	defer s.hub.Unregister(s)

	s.conn.SetReadLimit(maxClientMessage)
	_ = s.conn.SetReadDeadline(s.clock.Now().Add(pongDeadline))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(s.clock.Now().Add(pongDeadline))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.hub.logger.Debug("Session %s read error: %v", s.ID, err)
			}
			return
		}
		s.handleMessage(data)
	}
}

func (s *Session) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.SendJSON(map[string]string{"type": "error", "message": "invalid JSON"})
		return
	}

	switch msg.Type {
	case "ping":
		s.SendJSON(map[string]string{"type": "pong"})
	default:
		s.hub.logger.Debug("Ignoring %q message from session %s", msg.Type, s.ID)
	}
}
