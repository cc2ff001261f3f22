package ports

import (
	"context"
	"time"

	"github.com/pingloop/messenger/internal/core/domain"
)

// NotificationItem is a notification enriched with the referenced peer's
// public profile.
type NotificationItem struct {
	Kind      domain.NotificationKind `json:"kind"`
	From      domain.Profile          `json:"from"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"created_at"`
}

// PendingRequestItem is a pending friend request enriched with the sender's
// public profile.
type PendingRequestItem struct {
	From      domain.Profile `json:"from"`
	CreatedAt time.Time      `json:"created_at"`
}

// NotificationList is the read-only projection returned to a user.
type NotificationList struct {
	Notifications   []NotificationItem   `json:"notifications"`
	PendingRequests []PendingRequestItem `json:"pending_requests"`
}

// NotificationService creates, lists and marks-read notification records, and
// hands successful writes to the realtime layer for best-effort delivery.
type NotificationService interface {
	Notify(ctx context.Context, userID string, kind domain.NotificationKind, from string) error
	ListNotifications(ctx context.Context, userID string) (*NotificationList, error)
	MarkAllRead(ctx context.Context, userID string) error
}
