package handler

import (
	"context"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/pingloop/messenger/internal/infrastructure/realtime"
)

type WebsocketHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func NewWebsocketHandler(hub *realtime.Hub, logger zerolog.Logger) *WebsocketHandler {
	return &WebsocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
}

// Connect upgrades the request to a websocket session for the authenticated
// user. The middleware accepts the token as a query parameter here, since
// browsers cannot attach headers to upgrade requests.
//
// @Summary      Open a realtime event stream
// @Tags         realtime
// @Param        token  query  string  false  "JWT, alternative to the Authorization header"
// @Success      101    "switching protocols"
// @Failure      401    {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/ws [get]
func (h *WebsocketHandler) Connect(c echo.Context) error {
	caller, err := callerID(c)
	if err != nil {
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the handshake failure to the client.
		h.logger.Debug().Err(err).Str("user", caller).Msg("websocket upgrade failed")
		return nil
	}

	// The session outlives the HTTP request, whose context is cancelled once
	// this handler returns.
	ctx := context.Background()
	client := h.hub.Register(ctx, caller, conn)
	go client.WriteLoop()
	go client.ReadLoop(ctx, h.hub)

	return nil
}
