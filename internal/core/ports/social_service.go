package ports

import (
	"context"

	"github.com/pingloop/messenger/internal/core/domain"
)

// FriendRequestResult reports how a send-request call was resolved.
type FriendRequestResult struct {
	// AutoAccepted is true when the target had already requested the caller,
	// so the two pending requests collapsed directly into a friendship.
	AutoAccepted bool
}

// SocialService owns friendship edges, the friend-request lifecycle and pin
// state.
//
// The request state machine per user pair is: no relation -> pending ->
// friends (accept, or reciprocal auto-accept), pending -> no relation
// (decline), friends -> no relation (remove). Two simultaneous pending
// requests between the same pair never persist; the reciprocal rule resolves
// them in one transition.
type SocialService interface {
	SearchUsers(ctx context.Context, query, excludeID string) ([]domain.Profile, error)
	SendFriendRequest(ctx context.Context, from, to string) (*FriendRequestResult, error)
	AcceptFriendRequest(ctx context.Context, accepter, requester string) error
	DeclineFriendRequest(ctx context.Context, accepter, requester string) error
	RemoveFriend(ctx context.Context, userID, friendID string) error
	PinChat(ctx context.Context, userID, friendID string) error
	UnpinChat(ctx context.Context, userID, friendID string) error
}
