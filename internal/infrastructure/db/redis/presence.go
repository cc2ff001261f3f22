package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// presenceTTL bounds how stale an online marker can get when a gateway dies
// without cleaning up. Connected clients refresh well inside this window.
const presenceTTL = 60 * time.Second

// Presence is the process-wide online-user registry backed by Redis.
// Key format: presence:<user_id>
//
// The websocket gateway populates and clears it on connect/disconnect and
// refreshes it on heartbeats; the core only ever reads it through the
// realtime notifier.
type Presence struct {
	client *redis.Client
}

// NewPresence creates a Presence registry wrapping the given Redis client.
func NewPresence(client *redis.Client) *Presence {
	return &Presence{client: client}
}

// MarkOnline records that the user has at least one live connection.
func (p *Presence) MarkOnline(ctx context.Context, userID string) error {
	return p.client.Set(ctx, p.key(userID), "1", presenceTTL).Err()
}

// Refresh extends the online marker; called on connection heartbeats.
func (p *Presence) Refresh(ctx context.Context, userID string) error {
	return p.client.Expire(ctx, p.key(userID), presenceTTL).Err()
}

// MarkOffline clears the online marker once the last connection is gone.
func (p *Presence) MarkOffline(ctx context.Context, userID string) error {
	return p.client.Del(ctx, p.key(userID)).Err()
}

// IsOnline reports whether the user currently holds an online marker.
func (p *Presence) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := p.client.Exists(ctx, p.key(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("presence check: %w", err)
	}
	return n > 0, nil
}

func (p *Presence) key(userID string) string {
	return fmt.Sprintf("presence:%s", userID)
}
