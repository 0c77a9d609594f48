package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsCreated counts created posts by type.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelroom_posts_created_total",
		Help: "Posts created by post type",
	}, []string{"post_type"})

	// LikeToggles counts like toggles by resulting state.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelroom_like_toggles_total",
		Help: "Like toggles by result (liked, unliked)",
	}, []string{"result"})

	// NotificationsPublished counts realtime notification deliveries by type.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelroom_notifications_published_total",
		Help: "Notifications published to the realtime channel",
	}, []string{"type"})

	// AssistantRequests counts assistant calls by outcome.
	AssistantRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelroom_assistant_requests_total",
		Help: "Assistant requests by outcome (ok, error, limited, open)",
	}, []string{"outcome"})

	// MediaOperations counts media backend calls by operation and outcome.
	MediaOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelroom_media_operations_total",
		Help: "Media store operations",
	}, []string{"backend", "operation", "outcome"})

	// WebSocketConnectionsTotal tracks connected realtime clients.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reelroom_websocket_connections_total",
		Help: "Connected notification clients",
	})

	// WebSocketBackpressureDrops counts messages dropped for slow clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reelroom_websocket_backpressure_drops_total",
		Help: "Messages dropped because a client send buffer was full",
	}, []string{"hub", "reason"})
)

// Outcome labels a call result for counters.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
