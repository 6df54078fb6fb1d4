package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"sportz-service/config"
	"sportz-service/pkg/common"
	"sportz-service/services"
)

const staticDir = "./public"

// FeedStatus reports the state of the upstream feed connection.
type FeedStatus interface {
	IsConnected() bool
}

type Server struct {
	config     *config.Config
	matches    services.MatchStore
	commentary services.CommentaryStore
	notifier   services.Notifier
	applier    *services.StateApplier
	wsHub      *Hub
	feed       FeedStatus
	clock      clockwork.Clock
	httpServer *http.Server
	upgrader   websocket.Upgrader
	logger     common.Logger
}

func NewServer(cfg *config.Config, matches services.MatchStore, commentary services.CommentaryStore,
	notifier services.Notifier, hub *Hub) *Server {
	return &Server{
		config:     cfg,
		matches:    matches,
		commentary: commentary,
		notifier:   notifier,
		applier:    services.NewStateApplier(matches, notifier),
		wsHub:      hub,
		clock:      hub.clock,
		logger:     common.NewLogger("HTTP"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// SetFeedStatus makes /api/health report the upstream feed. Without it the feed is reported as disabled.
func (s *Server) SetFeedStatus(feed FeedStatus) {
	s.feed = feed
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	matches := router.PathPrefix("/matches").Subrouter()
	matches.HandleFunc("", s.handleListMatches).Methods("GET")
	matches.HandleFunc("", s.handleCreateMatch).Methods("POST")
	matches.HandleFunc("/{id}", s.handleGetMatch).Methods("GET")
	matches.HandleFunc("/{id}/score", s.handleUpdateScore).Methods("PATCH")
	matches.HandleFunc("/{id}/commentary", s.handleListCommentary).Methods("GET")
	matches.HandleFunc("/{id}/commentary", s.handleCreateCommentary).Methods("POST")

	router.HandleFunc("/ws", s.handleWebSocket)

	router.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	return c.Handler(router)
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Server is running on http://%s", s.config.Addr())
	s.logger.Info("WebSocket Server is running on ws://%s/ws", s.config.Addr())

	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop() {
	if s.httpServer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server shutdown error: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	feed := "disabled"
	if s.feed != nil {
		feed = "disconnected"
		if s.feed.IsConnected() {
			feed = "connected"
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"time":     s.clock.Now().Unix(),
		"sessions": s.wsHub.Count(),
		"feed":     feed,
	})
}
