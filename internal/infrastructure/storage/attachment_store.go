package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pingloop/messenger/internal/core/domain"
	"github.com/pingloop/messenger/internal/core/ports"
)

// AttachmentStore keeps message attachments in GridFS and serves them back by
// id. Upload runs before any message record is written, so a failure here
// aborts the whole send.
type AttachmentStore struct {
	bucket *gridfs.Bucket
}

func NewAttachmentStore(db *mongo.Database) (*AttachmentStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("attachments"))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return &AttachmentStore{bucket: bucket}, nil
}

// Upload stores the raw payload and returns the attachment descriptor linked
// from the message. The content type is sniffed when the caller did not
// provide one.
func (s *AttachmentStore) Upload(ctx context.Context, in ports.AttachmentUpload) (*domain.Attachment, error) {
	if len(in.Data) == 0 {
		return nil, fmt.Errorf("empty attachment payload")
	}

	contentType := in.Type
	if contentType == "" {
		contentType = http.DetectContentType(in.Data)
	}

	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": contentType})
	stream, err := s.bucket.OpenUploadStream(in.Name, opts)
	if err != nil {
		return nil, fmt.Errorf("open upload stream: %w", err)
	}
	if _, err := stream.Write(in.Data); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("write attachment: %w", err)
	}
	if err := stream.Close(); err != nil {
		return nil, fmt.Errorf("close upload stream: %w", err)
	}

	id, ok := stream.FileID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected gridfs file id type %T", stream.FileID)
	}

	return &domain.Attachment{
		URL:  "/v1/attachments/" + id.Hex(),
		Type: contentType,
		Name: in.Name,
		Size: int64(len(in.Data)),
	}, nil
}

// Open streams a stored attachment by hex id, returning its payload, name and
// content type.
func (s *AttachmentStore) Open(ctx context.Context, hexID string) (io.Reader, string, string, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, "", "", domain.ErrAttachmentNotFound
	}

	var buf bytes.Buffer
	stream, err := s.bucket.OpenDownloadStream(id)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, "", "", domain.ErrAttachmentNotFound
		}
		return nil, "", "", err
	}
	defer stream.Close()

	if _, err := io.Copy(&buf, stream); err != nil {
		return nil, "", "", err
	}

	file := stream.GetFile()
	contentType := "application/octet-stream"
	if file.Metadata != nil {
		var meta struct {
			ContentType string `bson:"content_type"`
		}
		if err := bson.Unmarshal(file.Metadata, &meta); err == nil && meta.ContentType != "" {
			contentType = meta.ContentType
		}
	}
	return &buf, file.Name, contentType, nil
}
