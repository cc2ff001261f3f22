package ports

import (
	"context"
	"time"

	"github.com/pingloop/messenger/internal/core/domain"
)

// UserRepository is the directory-store port. Every cross-document invariant
// (symmetric friend edges, symmetric last-interaction entries, the pin limit,
// the single-pending-request rule) is enforced by the implementation through
// conditional writes, so two racing callers can never observe a half-applied
// transition.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// SearchByName returns users whose name contains query (case-insensitive),
	// excluding excludeID. Results are sorted by name, then id, so a fixed
	// input set always yields the same order.
	SearchByName(ctx context.Context, query, excludeID string) ([]*domain.User, error)

	// CreateFriendRequest appends a pending request from 'from' onto 'to'.
	// The write carries its own guards and fails with ErrUserNotFound,
	// ErrAlreadyFriends or ErrDuplicateRequest when a guard does not hold,
	// even if the caller's optimistic checks passed moments earlier.
	CreateFriendRequest(ctx context.Context, to, from string, at time.Time) error

	// ResolveReciprocal atomically resolves the both-sides-requested state:
	// when requester currently holds a pending request from target, both
	// pending requests are cleared and the symmetric edge is created in a
	// single transition. Returns true when the reciprocal request existed
	// and the pair is now friends, false when there was nothing to resolve.
	ResolveReciprocal(ctx context.Context, requester, target string) (bool, error)

	// AcceptRequest removes the pending request from requester on accepter
	// and creates the symmetric edge atomically. ErrRequestNotFound when no
	// matching pending request exists.
	AcceptRequest(ctx context.Context, accepter, requester string) error

	// DeclineRequest removes the pending request silently.
	// ErrRequestNotFound when no matching pending request exists.
	DeclineRequest(ctx context.Context, accepter, requester string) error

	// RemoveFriendEdge deletes the edge from both sides and drops any pin
	// either user holds on the other. ErrNotFriends when no edge exists.
	RemoveFriendEdge(ctx context.Context, a, b string) error

	// PinChat appends target to the user's pinned chats. The write is
	// conditional on friendship, non-membership and the pin limit; it fails
	// with ErrNotFriends, ErrAlreadyPinned or ErrPinLimitExceeded when the
	// corresponding guard lost a race.
	PinChat(ctx context.Context, userID, target string) error

	// UnpinChat removes target from the user's pinned chats. Removing a
	// target that is not pinned is a no-op success.
	UnpinChat(ctx context.Context, userID, target string) error

	// SetLastInteraction records the activity timestamp on both users'
	// per-peer entries in one logical operation.
	SetLastInteraction(ctx context.Context, a, b string, at time.Time) error

	AppendNotification(ctx context.Context, userID string, n domain.Notification) error

	// MarkNotificationsRead flips every currently-unread notification to
	// read. An entry appended concurrently may legitimately stay unread.
	MarkNotificationsRead(ctx context.Context, userID string) error
}
