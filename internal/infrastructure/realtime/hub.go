package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/pingloop/messenger/internal/api/metrics"
	redisdb "github.com/pingloop/messenger/internal/infrastructure/db/redis"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = 40 * time.Second // must be shorter than pongWait
	maxFrameSize  = 4 << 10
	sendQueueSize = 64
)

// envelope is the JSON frame pushed to connected clients.
type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Client is one websocket session bound to an authenticated user. A user may
// hold several sessions (multiple devices); each keeps its own send queue
// drained by a single writer goroutine.
type Client struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// Hub tracks live websocket sessions per user and implements the realtime
// notifier consumed by the core. It also maintains the Redis presence
// registry so reachability survives across gateway instances.
type Hub struct {
	mu       sync.RWMutex
	byUser   map[string]map[*Client]struct{}
	presence *redisdb.Presence // nil disables cross-instance presence
	logger   zerolog.Logger
}

func NewHub(presence *redisdb.Presence, logger zerolog.Logger) *Hub {
	return &Hub{
		byUser:   make(map[string]map[*Client]struct{}),
		presence: presence,
		logger:   logger,
	}
}

// Register adds a new authenticated session for userID and marks the user
// online in the presence registry.
func (h *Hub) Register(ctx context.Context, userID string, conn *websocket.Conn) *Client {
	c := &Client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
	}

	h.mu.Lock()
	if h.byUser[userID] == nil {
		h.byUser[userID] = make(map[*Client]struct{})
	}
	h.byUser[userID][c] = struct{}{}
	h.mu.Unlock()

	metrics.WebsocketConnections.Inc()

	if h.presence != nil {
		if err := h.presence.MarkOnline(ctx, userID); err != nil {
			h.logger.Warn().Err(err).Str("user", userID).Msg("failed to mark user online")
		}
	}

	h.logger.Debug().Str("user", userID).Msg("websocket session registered")
	return c
}

// Unregister drops the session and clears the presence marker once the user's
// last local session is gone.
func (h *Hub) Unregister(ctx context.Context, c *Client) {
	h.mu.Lock()
	sessions := h.byUser[c.userID]
	if _, ok := sessions[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(sessions, c)
	last := len(sessions) == 0
	if last {
		delete(h.byUser, c.userID)
	}
	h.mu.Unlock()

	close(c.send)
	metrics.WebsocketConnections.Dec()

	if last && h.presence != nil {
		if err := h.presence.MarkOffline(ctx, c.userID); err != nil {
			h.logger.Warn().Err(err).Str("user", c.userID).Msg("failed to mark user offline")
		}
	}

	h.logger.Debug().Str("user", c.userID).Msg("websocket session unregistered")
}

// IsReachable reports whether the user holds a session on this instance or an
// online marker in the presence registry. Registry errors degrade to
// unreachable; delivery is best-effort either way.
func (h *Hub) IsReachable(ctx context.Context, userID string) bool {
	h.mu.RLock()
	local := len(h.byUser[userID]) > 0
	h.mu.RUnlock()
	if local {
		return true
	}
	if h.presence == nil {
		return false
	}
	online, err := h.presence.IsOnline(ctx, userID)
	if err != nil {
		h.logger.Warn().Err(err).Str("user", userID).Msg("presence lookup failed")
		return false
	}
	return online
}

// Push fans the event out to every local session of userID. A session whose
// queue is full has the frame dropped; the durable notification record is the
// source of truth, not the socket.
func (h *Hub) Push(_ context.Context, userID, event string, payload any) error {
	frame, err := json.Marshal(envelope{Event: event, Payload: payload})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byUser[userID] {
		select {
		case c.send <- frame:
		default:
			metrics.RealtimePushesTotal.WithLabelValues("dropped").Inc()
			h.logger.Debug().Str("user", userID).Str("event", event).Msg("send queue full, frame dropped")
		}
	}
	return nil
}

// ReadLoop consumes inbound frames until the peer goes away. The transport
// offers no client-to-server operations, so frames are discarded; pongs
// refresh the read deadline and the presence marker.
func (c *Client) ReadLoop(ctx context.Context, h *Hub) {
	defer func() {
		h.Unregister(ctx, c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if h.presence != nil {
			if err := h.presence.Refresh(ctx, c.userID); err != nil {
				h.logger.Debug().Err(err).Str("user", c.userID).Msg("presence refresh failed")
			}
		}
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// WriteLoop drains the send queue onto the socket and keeps the connection
// alive with periodic pings.
func (c *Client) WriteLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
