package ports

import (
	"context"
	"time"

	"github.com/pingloop/messenger/internal/core/domain"
)

// SidebarEntry is one conversation row in a user's sidebar.
type SidebarEntry struct {
	Friend          domain.Profile `json:"friend"`
	LastInteraction time.Time      `json:"last_interaction"` // zero when never messaged
	Pinned          bool           `json:"pinned"`
}

// SidebarService computes sidebar ordering: pinned conversations first, then
// recency descending within each partition. A friend with no recorded
// interaction sorts as if its timestamp were the epoch. Ties keep a stable,
// deterministic order for a fixed snapshot.
type SidebarService interface {
	Sidebar(ctx context.Context, userID string) ([]SidebarEntry, error)
}
