package ports

import "context"

// PushEvent is a realtime event addressed to a single user.
type PushEvent struct {
	UserID  string
	Event   string
	Payload any
}

// Event names pushed over the realtime channel.
const (
	EventMessage      = "message"
	EventNotification = "notification"
)

// RealtimeNotifier delivers events to currently connected clients. Delivery
// is best-effort: the core never retries, queues, or fails an operation on a
// push error, and a peer that is not reachable is skipped silently.
type RealtimeNotifier interface {
	IsReachable(ctx context.Context, userID string) bool
	Push(ctx context.Context, userID, event string, payload any) error
}
