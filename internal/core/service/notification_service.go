package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pingloop/messenger/internal/core/domain"
	"github.com/pingloop/messenger/internal/core/ports"
)

// Pusher hands realtime events to the delivery pipeline. Enqueue never
// blocks; delivery happens asynchronously and is best-effort.
type Pusher interface {
	Enqueue(event ports.PushEvent)
}

// NotificationService stores notification records and forwards them to the
// realtime layer.
type NotificationService struct {
	users  ports.UserRepository
	pusher Pusher
	logger zerolog.Logger
}

func NewNotificationService(users ports.UserRepository, pusher Pusher, logger zerolog.Logger) *NotificationService {
	return &NotificationService{users: users, pusher: pusher, logger: logger}
}

// Notify appends a notification record for userID and enqueues a realtime
// push. The record is durable regardless of whether the push is delivered;
// a missed push is still visible via ListNotifications.
func (s *NotificationService) Notify(ctx context.Context, userID string, kind domain.NotificationKind, from string) error {
	n := domain.Notification{
		Kind:      kind,
		From:      from,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.AppendNotification(ctx, userID, n); err != nil {
		return err
	}

	if s.pusher != nil {
		s.pusher.Enqueue(ports.PushEvent{
			UserID:  userID,
			Event:   ports.EventNotification,
			Payload: n,
		})
	}
	return nil
}

// ListNotifications returns the user's notification feed and pending friend
// requests, each enriched with the referenced peer's public profile.
func (s *NotificationService) ListNotifications(ctx context.Context, userID string) (*ports.NotificationList, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	peerIDs := make([]string, 0, len(user.Notifications)+len(user.FriendRequests))
	seen := make(map[string]bool)
	for _, n := range user.Notifications {
		if !seen[n.From] {
			seen[n.From] = true
			peerIDs = append(peerIDs, n.From)
		}
	}
	for _, r := range user.FriendRequests {
		if !seen[r.From] {
			seen[r.From] = true
			peerIDs = append(peerIDs, r.From)
		}
	}

	profiles := make(map[string]domain.Profile, len(peerIDs))
	if len(peerIDs) > 0 {
		peers, err := s.users.FindByIDs(ctx, peerIDs)
		if err != nil {
			return nil, err
		}
		for _, p := range peers {
			profiles[p.ID] = p.Public()
		}
	}

	list := &ports.NotificationList{
		Notifications:   make([]ports.NotificationItem, 0, len(user.Notifications)),
		PendingRequests: make([]ports.PendingRequestItem, 0, len(user.FriendRequests)),
	}
	for _, n := range user.Notifications {
		list.Notifications = append(list.Notifications, ports.NotificationItem{
			Kind:      n.Kind,
			From:      s.profileOrStub(profiles, n.From),
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	for _, r := range user.FriendRequests {
		list.PendingRequests = append(list.PendingRequests, ports.PendingRequestItem{
			From:      s.profileOrStub(profiles, r.From),
			CreatedAt: r.CreatedAt,
		})
	}
	return list, nil
}

// MarkAllRead flips every currently-unread notification for userID.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.users.MarkNotificationsRead(ctx, userID)
}

// profileOrStub falls back to an id-only profile when the peer document is
// no longer resolvable.
func (s *NotificationService) profileOrStub(profiles map[string]domain.Profile, id string) domain.Profile {
	if p, ok := profiles[id]; ok {
		return p
	}
	s.logger.Debug().Str("peer", id).Msg("notification references unknown peer")
	return domain.Profile{ID: id}
}
