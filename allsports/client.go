package allsports

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"sportz-service/pkg/common"
	"sportz-service/pkg/metrics"
)

const (
	// DefaultFeedURL is the AllSportsAPI live events endpoint
	DefaultFeedURL = "wss://wss.allsportsapi.com/live_events"

	// ReconnectDelay is the fixed wait between a lost connection and the next attempt
	ReconnectDelay = 5 * time.Second

	handshakeTimeout = 15 * time.Second
)

// FrameHandler consumes raw frames read from the feed. It owns decoding and error reporting;
// nothing it does can close the connection.
type FrameHandler interface {
	HandleFrame(ctx context.Context, data []byte)
}

// FrameHandlerFunc adapts a function to FrameHandler
type FrameHandlerFunc func(ctx context.Context, data []byte)

func (f FrameHandlerFunc) HandleFrame(ctx context.Context, data []byte) {
	f(ctx, data)
}

// Conn is the read side of an upstream connection
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Dialer opens upstream connections
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Conn, error)
}

type websocketDialer struct {
	dialer *websocket.Dialer
}

func (d websocketDialer) Dial(ctx context.Context, endpoint string) (Conn, error) {
	conn, _, err := d.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// FeedClient owns the single push connection to AllSportsAPI and keeps it open for the
// lifetime of the process.
type FeedClient struct {
	feedURL        string
	apiKey         string
	handler        FrameHandler
	dialer         Dialer
	clock          clockwork.Clock
	reconnectDelay time.Duration
	logger         common.Logger

	mu        sync.RWMutex
	connected bool
}

// Option configures a FeedClient
type Option func(*FeedClient)

// WithDialer replaces the websocket dialer
func WithDialer(d Dialer) Option {
	return func(c *FeedClient) { c.dialer = d }
}

// WithClock replaces the clock used for reconnect delays
func WithClock(clock clockwork.Clock) Option {
	return func(c *FeedClient) { c.clock = clock }
}

// WithReconnectDelay overrides ReconnectDelay
func WithReconnectDelay(d time.Duration) Option {
	return func(c *FeedClient) {
		if d > 0 {
			c.reconnectDelay = d
		}
	}
}

// WithLogger sets the component logger
func WithLogger(l common.Logger) Option {
	return func(c *FeedClient) { c.logger = l }
}

// NewFeedClient creates a client for feedURL authenticated with apiKey.
func NewFeedClient(feedURL, apiKey string, handler FrameHandler, opts ...Option) *FeedClient {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	c := &FeedClient{
		feedURL:        feedURL,
		apiKey:         apiKey,
		handler:        handler,
		dialer:         websocketDialer{dialer: &websocket.Dialer{HandshakeTimeout: handshakeTimeout}},
		clock:          clockwork.NewRealClock(),
		reconnectDelay: ReconnectDelay,
		logger:         common.NewLogger("Feed"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run connects and re-connects until ctx is cancelled. Without an API key the feed is
// disabled and Run returns immediately.
func (c *FeedClient) Run(ctx context.Context) {
	if c.apiKey == "" {
		c.logger.Warn("ALLSPORTS_API_KEY is missing, live feed disabled")
		return
	}

	c.logger.Info("Starting live feed service")

	for {
		if err := c.connectAndRead(ctx); err != nil {
			c.logger.Error("Feed connection error: %v", err)
		}
		if ctx.Err() != nil {
			c.logger.Info("Live feed stopped")
			return
		}

		metrics.FeedReconnects.Inc()
		c.logger.Info("Connection closed, reconnecting in %v", c.reconnectDelay)

		select {
		case <-ctx.Done():
			c.logger.Info("Live feed stopped")
			return
		case <-c.clock.After(c.reconnectDelay):
		}
	}
}

// IsConnected reports whether the upstream connection is currently open
func (c *FeedClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *FeedClient) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()

	if v {
		metrics.FeedConnected.Set(1)
	} else {
		metrics.FeedConnected.Set(0)
	}
}

// connectAndRead runs one connection until it fails or closes. A nil return means the
// connection ended because ctx was cancelled.
func (c *FeedClient) connectAndRead(ctx context.Context) error {
	metrics.FeedConnectAttempts.Inc()
	c.logger.Info("Connecting to AllSportsAPI...")

	endpoint, err := c.endpoint()
	if err != nil {
		return err
	}

	conn, err := c.dialer.Dial(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.setConnected(true)
	c.logger.Info("Connected to AllSportsAPI")

	// ReadMessage has no context; closing the connection is what unblocks it on shutdown
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	defer func() {
		close(done)
		conn.Close()
		c.setConnected(false)
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read failed: %w", err)
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}

		metrics.FeedFramesReceived.Inc()
		c.handler.HandleFrame(ctx, data)
	}
}

func (c *FeedClient) endpoint() (string, error) {
	u, err := url.Parse(c.feedURL)
	if err != nil {
		return "", fmt.Errorf("invalid feed url: %w", err)
	}
	q := u.Query()
	q.Set("APIkey", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
