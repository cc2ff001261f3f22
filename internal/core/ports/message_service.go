package ports

import (
	"context"

	"github.com/pingloop/messenger/internal/core/domain"
)

// SendMessageInput carries one outbound message. At least one of Text or
// Attachment must be set.
type SendMessageInput struct {
	Sender     string
	Receiver   string
	Text       string
	Attachment *AttachmentUpload
}

// MessageService persists direct messages and maintains recency state.
// Current policy does not require sender and receiver to be friends.
type MessageService interface {
	SendMessage(ctx context.Context, in SendMessageInput) (*domain.Message, error)
	GetConversation(ctx context.Context, userA, userB string) ([]*domain.Message, error)
}
