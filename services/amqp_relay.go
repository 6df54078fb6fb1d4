package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/streadway/amqp"

	"sportz-service/pkg/common"
	"sportz-service/pkg/metrics"
	"sportz-service/pkg/models"
)

const (
	// DefaultRelayBufferSize bounds events waiting for the broker
	DefaultRelayBufferSize = 1024

	relayExchangeKind = "topic"
)

// ReconnectConfig controls broker reconnect backoff
type ReconnectConfig struct {
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultReconnectConfig 1s doubling up to 60s
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		InitialDelay:  1 * time.Second,
		MaxDelay:      60 * time.Second,
		BackoffFactor: 2.0,
	}
}

// Next returns the delay that follows current.
func (c ReconnectConfig) Next(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * c.BackoffFactor)
	if next > c.MaxDelay {
		return c.MaxDelay
	}
	if next < c.InitialDelay {
		return c.InitialDelay
	}
	return next
}

// relayChannel is the part of *amqp.Channel the relay uses.
type relayChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// relayConnection is the part of *amqp.Connection the relay uses.
type relayConnection interface {
	Channel() (relayChannel, error)
	NotifyClose(receiver chan *amqp.Error) chan *amqp.Error
	Close() error
}

type relayDialer func(url string) (relayConnection, error)

type amqpConnection struct {
	*amqp.Connection
}

func (c amqpConnection) Channel() (relayChannel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dialAMQP(url string) (relayConnection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{Heartbeat: 60 * time.Second, Locale: "en_US"})
	if err != nil {
		return nil, err
	}
	return amqpConnection{conn}, nil
}

// RoutingKey is the topic key an event is published under, e.g. match.score_updated.
func RoutingKey(t models.EventType) string {
	return "match." + string(t)
}

// AMQPRelay republishes broadcast events to a topic exchange. Publish never blocks: when the
// broker is unreachable events queue up to the buffer size and are then dropped.
type AMQPRelay struct {
	url       string
	exchange  string
	queue     chan *models.BroadcastEvent
	reconnect ReconnectConfig
	clock     clockwork.Clock
	dial      relayDialer
	logger    common.Logger

	conn    relayConnection
	channel relayChannel
}

func NewAMQPRelay(url, exchange string, bufferSize int) *AMQPRelay {
	if bufferSize <= 0 {
		bufferSize = DefaultRelayBufferSize
	}
	return &AMQPRelay{
		url:       url,
		exchange:  exchange,
		queue:     make(chan *models.BroadcastEvent, bufferSize),
		reconnect: DefaultReconnectConfig(),
		clock:     clockwork.NewRealClock(),
		dial:      dialAMQP,
		logger:    common.NewLogger("AMQPRelay"),
	}
}

// Publish enqueues evt for the broker.
func (r *AMQPRelay) Publish(evt *models.BroadcastEvent) {
	select {
	case r.queue <- evt:
	default:
		metrics.RelayDropped.WithLabelValues("buffer_full").Inc()
		r.logger.Warn("Relay buffer full, dropping %s event", evt.Type)
	}
}

// Run connects, publishes queued events and reconnects with backoff until ctx is cancelled.
func (r *AMQPRelay) Run(ctx context.Context) {
	delay := r.reconnect.InitialDelay

	for {
		if err := r.connect(); err != nil {
			r.logger.Error("Connect failed: %v", err)
		} else {
			delay = r.reconnect.InitialDelay
			closed := r.conn.NotifyClose(make(chan *amqp.Error, 1))
			err = r.pump(ctx, closed)
			r.cleanup()
			if ctx.Err() != nil {
				r.logger.Info("Relay stopped")
				return
			}
			r.logger.Error("Connection lost: %v", err)
		}

		r.logger.Info("Reconnecting in %v", delay)
		select {
		case <-ctx.Done():
			r.cleanup()
			return
		case <-r.clock.After(delay):
		}
		delay = r.reconnect.Next(delay)
	}
}

func (r *AMQPRelay) connect() error {
	r.logger.Info("Connecting to broker, exchange %s", r.exchange)

	conn, err := r.dial(r.url)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		r.exchange,
		relayExchangeKind,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	r.conn = conn
	r.channel = channel
	r.logger.Info("Connected to broker")
	return nil
}

func (r *AMQPRelay) pump(ctx context.Context, closed <-chan *amqp.Error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr, ok := <-closed:
			if !ok || amqpErr == nil {
				return common.ErrNotConnected
			}
			return amqpErr
		case evt := <-r.queue:
			if err := r.publish(evt); err != nil {
				metrics.RelayDropped.WithLabelValues("publish_error").Inc()
				r.logger.Error("Failed to publish %s: %v", evt.Type, err)
				continue
			}
			metrics.RelayPublished.Inc()
		}
	}
}

func (r *AMQPRelay) publish(evt *models.BroadcastEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return r.channel.Publish(r.exchange, RoutingKey(evt.Type), false, false, amqp.Publishing{
		ContentType: "application/json",
		Type:        string(evt.Type),
		Timestamp:   evt.Timestamp,
		Body:        body,
	})
}

func (r *AMQPRelay) cleanup() {
	if r.channel != nil {
		r.channel.Close()
		r.channel = nil
	}
	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}
}
