package domain

import (
	"errors"
	"time"
)

var ErrEmptyMessage = errors.New("message requires text or an attachment")
var ErrUploadFailed = errors.New("attachment upload failed")
var ErrAttachmentNotFound = errors.New("attachment not found")

// Attachment describes an uploaded binary linked to a message.
type Attachment struct {
	URL  string `json:"url" bson:"url"`
	Type string `json:"type" bson:"type"`
	Name string `json:"name" bson:"name"`
	Size int64  `json:"size" bson:"size"`
}

// Message is an immutable record of one direct message between two users.
type Message struct {
	ID         string      `json:"id" bson:"_id,omitempty"`
	Sender     string      `json:"sender" bson:"sender"`
	Receiver   string      `json:"receiver" bson:"receiver"`
	Text       string      `json:"text,omitempty" bson:"text,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty" bson:"attachment,omitempty"`
	CreatedAt  time.Time   `json:"created_at" bson:"created_at"`
}
