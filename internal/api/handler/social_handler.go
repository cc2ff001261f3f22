package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pingloop/messenger/internal/api/metrics"
	"github.com/pingloop/messenger/internal/core/ports"
)

type SocialHandler struct {
	socialService ports.SocialService
}

func NewSocialHandler(socialService ports.SocialService) *SocialHandler {
	return &SocialHandler{socialService: socialService}
}

type friendRequestBody struct {
	To string `json:"to" validate:"required"`
}

type friendRequestResponse struct {
	Status string `json:"status"`
}

// SearchUsers finds users by name, excluding the caller.
//
// @Summary      Search users by name
// @Tags         friends
// @Produce      json
// @Param        q  query     string  true  "Name fragment, case-insensitive"
// @Success      200  {array}  domain.Profile
// @Failure      400  {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/users/search [get]
func (h *SocialHandler) SearchUsers(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	profiles, err := h.socialService.SearchUsers(c.Request().Context(), query, caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profiles)
}

// SendFriendRequest sends a friend request from the caller to another user.
// When the target already had a pending request from the caller's side of the
// pair, the two requests collapse straight into a friendship.
//
// @Summary      Send a friend request
// @Tags         friends
// @Accept       json
// @Produce      json
// @Param        body  body      friendRequestBody  true  "Target user"
// @Success      201   {object}  friendRequestResponse
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/friends/requests [post]
func (h *SocialHandler) SendFriendRequest(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	var req friendRequestBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.socialService.SendFriendRequest(c.Request().Context(), caller, req.To)
	if err != nil {
		return err
	}

	if result.AutoAccepted {
		metrics.FriendRequestsTotal.WithLabelValues("auto_accepted").Inc()
		return c.JSON(http.StatusCreated, friendRequestResponse{Status: "accepted"})
	}
	metrics.FriendRequestsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, friendRequestResponse{Status: "pending"})
}

// AcceptFriendRequest accepts a pending request from the user in the path.
//
// @Summary      Accept a friend request
// @Tags         friends
// @Produce      json
// @Param        id   path      string  true  "Requester user id"
// @Success      204  "accepted"
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/friends/requests/{id}/accept [post]
func (h *SocialHandler) AcceptFriendRequest(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	if err := h.socialService.AcceptFriendRequest(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	metrics.FriendRequestsTotal.WithLabelValues("accepted").Inc()
	return c.NoContent(http.StatusNoContent)
}

// DeclineFriendRequest declines a pending request. No record of the request
// survives; the requester may send a new one later.
//
// @Summary      Decline a friend request
// @Tags         friends
// @Produce      json
// @Param        id   path      string  true  "Requester user id"
// @Success      204  "declined"
// @Failure      404  {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/friends/requests/{id}/decline [post]
func (h *SocialHandler) DeclineFriendRequest(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	if err := h.socialService.DeclineFriendRequest(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	metrics.FriendRequestsTotal.WithLabelValues("declined").Inc()
	return c.NoContent(http.StatusNoContent)
}

// RemoveFriend dissolves the friendship between the caller and the user in
// the path, dropping any pins either side held on the chat.
//
// @Summary      Remove a friend
// @Tags         friends
// @Produce      json
// @Param        id   path      string  true  "Friend user id"
// @Success      204  "removed"
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/friends/{id} [delete]
func (h *SocialHandler) RemoveFriend(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	if err := h.socialService.RemoveFriend(c.Request().Context(), caller, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
