package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Feed connection metrics
var (
	FeedConnectAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportz_feed_connect_attempts_total",
		Help: "Total attempts to open the upstream feed connection",
	})

	FeedReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportz_feed_reconnects_total",
		Help: "Total scheduled reconnects after the feed connection failed or closed",
	})

	FeedConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sportz_feed_connected",
		Help: "1 while the upstream feed connection is open",
	})

	FeedFramesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportz_feed_frames_received_total",
		Help: "Total frames read from the upstream feed",
	})
)

// Feed processing metrics
var (
	// FeedEventsProcessed counts records by outcome: applied, skipped, failed, not_found
	FeedEventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportz_feed_events_processed_total",
		Help: "Feed records processed by outcome",
	}, []string{"outcome"})

	FeedFrameErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportz_feed_frame_errors_total",
		Help: "Frames that could not be used, by reason",
	}, []string{"reason"})

	MatchesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportz_matches_created_total",
		Help: "Matches created, by origin (feed or api)",
	}, []string{"origin"})
)

// Broadcast metrics
var (
	BroadcastEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportz_broadcast_events_total",
		Help: "Broadcast events published, by type",
	}, []string{"type"})

	SubscriberSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sportz_subscriber_sessions",
		Help: "Currently registered subscriber sessions",
	})

	SubscriberDeliveries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportz_subscriber_deliveries_total",
		Help: "Messages written to subscriber sessions",
	})

	SubscriberEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportz_subscriber_evictions_total",
		Help: "Sessions dropped by the hub, by reason (slow, write_error)",
	}, []string{"reason"})
)

// Relay metrics
var (
	RelayPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sportz_relay_published_total",
		Help: "Events published to the AMQP exchange",
	})

	RelayDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sportz_relay_dropped_total",
		Help: "Events the AMQP relay could not publish, by reason",
	}, []string{"reason"})
)
