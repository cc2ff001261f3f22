package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pingloop/messenger/internal/core/domain"
	"github.com/pingloop/messenger/internal/core/ports"
)

// MessageService persists direct messages and keeps recency state current.
type MessageService struct {
	messages    ports.MessageRepository
	users       ports.UserRepository
	attachments ports.AttachmentStore
	pusher      Pusher
	logger      zerolog.Logger
}

func NewMessageService(
	messages ports.MessageRepository,
	users ports.UserRepository,
	attachments ports.AttachmentStore,
	pusher Pusher,
	logger zerolog.Logger,
) *MessageService {
	return &MessageService{
		messages:    messages,
		users:       users,
		attachments: attachments,
		pusher:      pusher,
		logger:      logger,
	}
}

// SendMessage persists an immutable message record, updates both users'
// last-interaction entries to the message's creation time, and enqueues a
// best-effort realtime push to the receiver. Friendship is not required by
// current policy. An attachment is uploaded before anything is persisted, so
// a failed upload leaves no message behind.
func (s *MessageService) SendMessage(ctx context.Context, in ports.SendMessageInput) (*domain.Message, error) {
	if in.Text == "" && in.Attachment == nil {
		return nil, domain.ErrEmptyMessage
	}

	if _, err := s.users.FindByID(ctx, in.Sender); err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, in.Receiver); err != nil {
		return nil, err
	}

	var attachment *domain.Attachment
	if in.Attachment != nil {
		uploaded, err := s.attachments.Upload(ctx, *in.Attachment)
		if err != nil {
			s.logger.Error().Err(err).Str("sender", in.Sender).Str("name", in.Attachment.Name).Msg("attachment upload failed")
			return nil, domain.ErrUploadFailed
		}
		attachment = uploaded
	}

	now := time.Now().UTC()
	msg := &domain.Message{
		Sender:     in.Sender,
		Receiver:   in.Receiver,
		Text:       in.Text,
		Attachment: attachment,
		CreatedAt:  now,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("sender", in.Sender).Str("receiver", in.Receiver).Msg("failed to persist message")
		return nil, err
	}

	// The message is already durable; a failed recency update is logged and
	// not surfaced. The repository applies both entries in one transition.
	if err := s.users.SetLastInteraction(ctx, in.Sender, in.Receiver, now); err != nil {
		s.logger.Warn().Err(err).Str("sender", in.Sender).Str("receiver", in.Receiver).Msg("failed to update last interaction")
	}

	if s.pusher != nil {
		s.pusher.Enqueue(ports.PushEvent{
			UserID:  in.Receiver,
			Event:   ports.EventMessage,
			Payload: msg,
		})
	}

	s.logger.Info().Str("sender", in.Sender).Str("receiver", in.Receiver).Bool("attachment", attachment != nil).Msg("message sent")
	return msg, nil
}

// GetConversation returns every message exchanged between the two users in
// creation order.
func (s *MessageService) GetConversation(ctx context.Context, userA, userB string) ([]*domain.Message, error) {
	return s.messages.FindConversation(ctx, userA, userB)
}
