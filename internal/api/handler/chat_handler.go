package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pingloop/messenger/internal/core/ports"
)

type ChatHandler struct {
	socialService  ports.SocialService
	sidebarService ports.SidebarService
}

func NewChatHandler(socialService ports.SocialService, sidebarService ports.SidebarService) *ChatHandler {
	return &ChatHandler{socialService: socialService, sidebarService: sidebarService}
}

// PinChat pins the conversation with the friend in the path. At most two
// chats can be pinned at a time.
//
// @Summary      Pin a chat
// @Tags         chats
// @Produce      json
// @Param        id   path      string  true  "Friend user id"
// @Success      204  "pinned"
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/chats/{id}/pin [post]
func (h *ChatHandler) PinChat(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	if err := h.socialService.PinChat(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UnpinChat removes a pin. Unpinning a chat that is not pinned is a no-op.
//
// @Summary      Unpin a chat
// @Tags         chats
// @Produce      json
// @Param        id   path      string  true  "Friend user id"
// @Success      204  "unpinned"
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/chats/{id}/unpin [post]
func (h *ChatHandler) UnpinChat(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	if err := h.socialService.UnpinChat(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Sidebar returns the caller's conversation list, pinned chats first, then
// most recent interaction first.
//
// @Summary      Conversation sidebar
// @Tags         chats
// @Produce      json
// @Success      200  {array}   ports.SidebarEntry
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/chats/sidebar [get]
func (h *ChatHandler) Sidebar(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	entries, err := h.sidebarService.Sidebar(c.Request().Context(), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}
