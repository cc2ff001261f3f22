package handler

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pingloop/messenger/internal/api/metrics"
	"github.com/pingloop/messenger/internal/core/domain"
	"github.com/pingloop/messenger/internal/core/ports"
)

// attachmentOpener streams a stored attachment back out. Satisfied by the
// GridFS store.
type attachmentOpener interface {
	Open(ctx context.Context, id string) (io.Reader, string, string, error)
}

type MessageHandler struct {
	messageService ports.MessageService
	attachments    attachmentOpener
}

func NewMessageHandler(messageService ports.MessageService, attachments attachmentOpener) *MessageHandler {
	return &MessageHandler{messageService: messageService, attachments: attachments}
}

type attachmentBody struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type"`
	Data string `json:"data" validate:"required"` // base64-encoded payload
}

type sendMessageRequest struct {
	To         string          `json:"to" validate:"required"`
	Text       string          `json:"text"`
	Attachment *attachmentBody `json:"attachment,omitempty"`
}

// SendMessage persists a direct message and pushes it to the receiver when
// reachable. Sender and receiver do not need to be friends.
//
// @Summary      Send a direct message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        body  body      sendMessageRequest  true  "Message payload"
// @Success      201   {object}  domain.Message
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/messages [post]
func (h *MessageHandler) SendMessage(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	in := ports.SendMessageInput{
		Sender:   caller,
		Receiver: req.To,
		Text:     req.Text,
	}

	if req.Attachment != nil {
		data, err := base64.StdEncoding.DecodeString(req.Attachment.Data)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "attachment data must be base64")
		}
		in.Attachment = &ports.AttachmentUpload{
			Name: req.Attachment.Name,
			Type: req.Attachment.Type,
			Data: data,
		}
	}

	msg, err := h.messageService.SendMessage(c.Request().Context(), in)
	if err != nil {
		return err
	}

	kind := "text"
	if msg.Attachment != nil {
		kind = "attachment"
	}
	metrics.MessagesSentTotal.WithLabelValues(kind).Inc()

	return c.JSON(http.StatusCreated, msg)
}

// GetConversation returns the full message history between the caller and the
// peer in the path, oldest first.
//
// @Summary      Conversation history with a peer
// @Tags         messages
// @Produce      json
// @Param        peerID  path      string  true  "Peer user id"
// @Success      200     {array}   domain.Message
// @Failure      404     {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/messages/{peerID} [get]
func (h *MessageHandler) GetConversation(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	msgs, err := h.messageService.GetConversation(c.Request().Context(), caller, c.Param("peerID"))
	if err != nil {
		return err
	}
	if msgs == nil {
		msgs = []*domain.Message{}
	}
	return c.JSON(http.StatusOK, msgs)
}

// DownloadAttachment streams a stored attachment.
//
// @Summary      Download an attachment
// @Tags         messages
// @Produce      octet-stream
// @Param        id   path  string  true  "Attachment id"
// @Success      200  {file}  binary
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/attachments/{id} [get]
func (h *MessageHandler) DownloadAttachment(c echo.Context) error {
	if _, err := callerID(c); err != nil {
		return err
	}

	reader, name, contentType, err := h.attachments.Open(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="`+name+`"`)
	return c.Stream(http.StatusOK, contentType, reader)
}
