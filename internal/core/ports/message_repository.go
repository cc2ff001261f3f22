package ports

import (
	"context"

	"github.com/pingloop/messenger/internal/core/domain"
)

// MessageRepository persists direct messages. Records are immutable once
// inserted.
type MessageRepository interface {
	Insert(ctx context.Context, m *domain.Message) error
	// FindConversation returns all messages exchanged between a and b,
	// regardless of direction, in creation order.
	FindConversation(ctx context.Context, a, b string) ([]*domain.Message, error)
}
