package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pingloop/messenger/internal/core/domain"
	"github.com/pingloop/messenger/internal/core/ports"
)

// SocialService implements friendship formation, removal and pin state on top
// of the directory store. Business-rule checks run optimistically here; the
// repository writes carry the same guards, so a race between check and write
// surfaces as the specific domain error instead of a violated invariant.
type SocialService struct {
	users    ports.UserRepository
	notifier ports.NotificationService
	logger   zerolog.Logger
}

func NewSocialService(users ports.UserRepository, notifier ports.NotificationService, logger zerolog.Logger) *SocialService {
	return &SocialService{users: users, notifier: notifier, logger: logger}
}

// SearchUsers returns public profiles matching query, excluding the caller.
func (s *SocialService) SearchUsers(ctx context.Context, query, excludeID string) ([]domain.Profile, error) {
	matches, err := s.users.SearchByName(ctx, query, excludeID)
	if err != nil {
		return nil, err
	}
	profiles := make([]domain.Profile, 0, len(matches))
	for _, u := range matches {
		profiles = append(profiles, u.Public())
	}
	return profiles, nil
}

// SendFriendRequest creates a pending request from 'from' on 'to'. When 'to'
// had already requested 'from', both requests collapse into a friendship in a
// single atomic transition (reciprocal auto-accept).
func (s *SocialService) SendFriendRequest(ctx context.Context, from, to string) (*ports.FriendRequestResult, error) {
	if from == to {
		return nil, domain.ErrSelfAction
	}

	target, err := s.users.FindByID(ctx, to)
	if err != nil {
		return nil, err
	}
	if target.IsFriend(from) {
		return nil, domain.ErrAlreadyFriends
	}
	if target.HasPendingRequestFrom(from) {
		return nil, domain.ErrDuplicateRequest
	}

	// Both sides requested each other: resolve atomically instead of
	// creating a second pending request.
	resolved, err := s.users.ResolveReciprocal(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if resolved {
		s.notifyPeer(ctx, to, domain.NotificationFriendAccepted, from)
		s.logger.Info().Str("from", from).Str("to", to).Msg("reciprocal friend requests auto-accepted")
		return &ports.FriendRequestResult{AutoAccepted: true}, nil
	}

	if err := s.users.CreateFriendRequest(ctx, to, from, time.Now().UTC()); err != nil {
		return nil, err
	}

	// The opposite request may have landed between the reciprocal check and
	// the create: the two writes touch different documents, so nothing above
	// conflicts. Re-running the resolution after the create closes that
	// window. It consumes both requests in one transaction, so of two racing
	// senders at most one observes it succeed.
	resolved, err = s.users.ResolveReciprocal(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if resolved {
		s.notifyPeer(ctx, to, domain.NotificationFriendAccepted, from)
		s.logger.Info().Str("from", from).Str("to", to).Msg("reciprocal friend requests auto-accepted")
		return &ports.FriendRequestResult{AutoAccepted: true}, nil
	}

	s.notifyPeer(ctx, to, domain.NotificationFriendRequest, from)
	s.logger.Info().Str("from", from).Str("to", to).Msg("friend request created")
	return &ports.FriendRequestResult{}, nil
}

// AcceptFriendRequest resolves a pending request into a friendship and
// notifies the original requester.
func (s *SocialService) AcceptFriendRequest(ctx context.Context, accepter, requester string) error {
	if err := s.users.AcceptRequest(ctx, accepter, requester); err != nil {
		return err
	}

	s.notifyPeer(ctx, requester, domain.NotificationFriendAccepted, accepter)
	s.logger.Info().Str("accepter", accepter).Str("requester", requester).Msg("friend request accepted")
	return nil
}

// DeclineFriendRequest removes a pending request with no notification and no
// retained record; the requester may immediately request again.
func (s *SocialService) DeclineFriendRequest(ctx context.Context, accepter, requester string) error {
	if err := s.users.DeclineRequest(ctx, accepter, requester); err != nil {
		return err
	}
	s.logger.Info().Str("accepter", accepter).Str("requester", requester).Msg("friend request declined")
	return nil
}

// RemoveFriend deletes the edge from both sides. Historical messages and
// last-interaction entries are kept.
func (s *SocialService) RemoveFriend(ctx context.Context, userID, friendID string) error {
	if userID == friendID {
		return domain.ErrSelfAction
	}
	if err := s.users.RemoveFriendEdge(ctx, userID, friendID); err != nil {
		return err
	}
	s.logger.Info().Str("user", userID).Str("friend", friendID).Msg("friendship removed")
	return nil
}

// PinChat pins a friend's conversation, capped at domain.MaxPinnedChats.
func (s *SocialService) PinChat(ctx context.Context, userID, friendID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsFriend(friendID) {
		return domain.ErrNotFriends
	}
	if user.IsPinned(friendID) {
		return domain.ErrAlreadyPinned
	}
	if len(user.PinnedChats) >= domain.MaxPinnedChats {
		return domain.ErrPinLimitExceeded
	}

	// The repository write re-checks all three guards; a concurrent pin that
	// slipped in between the read above and the write fails here rather than
	// overflowing the limit.
	return s.users.PinChat(ctx, userID, friendID)
}

// UnpinChat removes the pin. Unpinning a chat that is not pinned succeeds.
func (s *SocialService) UnpinChat(ctx context.Context, userID, friendID string) error {
	return s.users.UnpinChat(ctx, userID, friendID)
}

// notifyPeer appends a notification record. A failed append is logged and
// swallowed: the triggering state transition has already committed.
func (s *SocialService) notifyPeer(ctx context.Context, userID string, kind domain.NotificationKind, from string) {
	if err := s.notifier.Notify(ctx, userID, kind, from); err != nil {
		s.logger.Warn().Err(err).Str("user", userID).Str("kind", string(kind)).Msg("failed to append notification")
	}
}
