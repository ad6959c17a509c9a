package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckinsAccepted counts accepted check-ins.
	CheckinsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huddle_checkins_accepted_total",
		Help: "Total number of accepted check-ins",
	})

	// CheckinsRejected counts rejected check-ins by reason.
	CheckinsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huddle_checkins_rejected_total",
		Help: "Total number of rejected check-ins by reason",
	}, []string{"reason"})

	// ScoreRecomputeLatency records how long a full score recomputation takes.
	ScoreRecomputeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "huddle_score_recompute_latency_seconds",
		Help:    "Engagement score recomputation latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// BroadcastFailures counts score broadcasts that could not be published.
	BroadcastFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "huddle_broadcast_failures_total",
		Help: "Total number of failed score broadcasts",
	})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huddle_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// WebSocketConnectionsTotal is the gauge of active WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "huddle_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketChannelConnections is the gauge of connections per channel.
	WebSocketChannelConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "huddle_websocket_channel_connections",
		Help: "Number of WebSocket connections per channel",
	}, []string{"channel"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "huddle_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// ObserveRecompute records the latency of a score recomputation.
func ObserveRecompute(start time.Time) {
	ScoreRecomputeLatency.Observe(time.Since(start).Seconds())
}
