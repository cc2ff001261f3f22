package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pingloop/messenger/internal/core/ports"
)

type NotificationHandler struct {
	notificationService ports.NotificationService
}

func NewNotificationHandler(notificationService ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// ListNotifications returns the caller's notifications and pending friend
// requests, each enriched with the peer's public profile.
//
// @Summary      List notifications and pending requests
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  ports.NotificationList
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/notifications [get]
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	list, err := h.notificationService.ListNotifications(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// MarkAllRead flags every unread notification of the caller as read.
//
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Success      204  "marked"
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/notifications/read [post]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	if err := h.notificationService.MarkAllRead(c.Request().Context(), caller); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
