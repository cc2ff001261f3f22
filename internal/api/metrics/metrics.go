// Package metrics defines and registers all custom Prometheus metrics for the
// messenger API. It is the single source of truth for metric names, labels,
// and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "messenger"

// ── Social graph metrics ──────────────────────────────────────────────────────

// FriendRequestsTotal counts friend-request operations by outcome.
// Label:
//   - outcome: "created", "accepted", "declined", "auto_accepted"
var FriendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "friend_requests_total",
		Help:      "Total number of friend-request operations, by outcome.",
	},
	[]string{"outcome"},
)

// ── Messaging metrics ─────────────────────────────────────────────────────────

// MessagesSentTotal counts persisted messages.
// Label:
//   - kind: "text" or "attachment"
var MessagesSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_sent_total",
		Help:      "Total number of messages persisted, by content kind.",
	},
	[]string{"kind"},
)

// ── Realtime delivery metrics ─────────────────────────────────────────────────

// RealtimePushesTotal counts realtime delivery attempts.
// Label:
//   - result: "delivered", "skipped" (peer offline), "failed", "dropped" (queue full)
var RealtimePushesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_pushes_total",
		Help:      "Total number of realtime push attempts, by result.",
	},
	[]string{"result"},
)

// PushQueueDepth tracks the current number of events waiting in each delivery
// worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var PushQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "push_queue_depth",
		Help:      "Current number of events pending in each push worker channel.",
	},
	[]string{"worker_id"},
)

// WebsocketConnections tracks the number of live websocket sessions on this
// gateway instance.
var WebsocketConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_connections",
		Help:      "Current number of open websocket connections.",
	},
)
