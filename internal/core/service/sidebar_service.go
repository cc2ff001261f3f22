package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/pingloop/messenger/internal/core/ports"
)

// SidebarService computes the conversation list ordering for a user.
type SidebarService struct {
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewSidebarService(users ports.UserRepository, logger zerolog.Logger) *SidebarService {
	return &SidebarService{users: users, logger: logger}
}

// Sidebar returns the user's conversations: pinned entries first, then by
// last interaction descending within each partition. Pin-set membership, not
// pin order, decides the pinned partition. A friend never messaged carries a
// zero timestamp and therefore sorts last within its partition. The sort is
// stable, so ties keep the repository's name ordering.
func (s *SidebarService) Sidebar(ctx context.Context, userID string) ([]ports.SidebarEntry, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]ports.SidebarEntry, 0, len(user.Friends))
	if len(user.Friends) > 0 {
		friends, err := s.users.FindByIDs(ctx, user.Friends)
		if err != nil {
			return nil, err
		}
		for _, f := range friends {
			entries = append(entries, ports.SidebarEntry{
				Friend:          f.Public(),
				LastInteraction: user.LastInteraction[f.ID],
				Pinned:          user.IsPinned(f.ID),
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Pinned != entries[j].Pinned {
			return entries[i].Pinned
		}
		return entries[i].LastInteraction.After(entries[j].LastInteraction)
	})

	return entries, nil
}
