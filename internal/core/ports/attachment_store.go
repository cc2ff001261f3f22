package ports

import (
	"context"

	"github.com/pingloop/messenger/internal/core/domain"
)

// AttachmentUpload is a raw payload handed to the attachment store.
type AttachmentUpload struct {
	Name string
	Type string // optional; sniffed from the payload when empty
	Data []byte
}

// AttachmentStore persists message attachments. Upload failures abort the
// surrounding send before any message record is written.
type AttachmentStore interface {
	Upload(ctx context.Context, in AttachmentUpload) (*domain.Attachment, error)
}
