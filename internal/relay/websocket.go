package relay

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/keyrelay/internal/domain"
	"github.com/coder/websocket"
)

// RoleHeader carries the client role at connect time.
const RoleHeader = "client-type"

// WebSocketHandler upgrades relay connections and feeds them to a Hub.
type WebSocketHandler struct {
	hub           *Hub
	allowedOrigin string
	queueSize     int
	writeTimeout  time.Duration
	logger        *slog.Logger
}

// HandlerOptions configures a WebSocketHandler.
type HandlerOptions struct {
	AllowedOrigin string
	SendQueueSize int
	WriteTimeout  time.Duration
	Logger        *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler.
func NewWebSocketHandler(hub *Hub, opts HandlerOptions) *WebSocketHandler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SendQueueSize <= 0 {
		opts.SendQueueSize = 256
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "*"
	}
	return &WebSocketHandler{
		hub:           hub,
		allowedOrigin: opts.AllowedOrigin,
		queueSize:     opts.SendQueueSize,
		writeTimeout:  opts.WriteTimeout,
		logger:        opts.Logger,
	}
}

// RoleFromRequest reads the declared role from the client-type header, or
// the client-type query parameter for browsers that cannot set headers.
func RoleFromRequest(r *http.Request) (domain.Role, error) {
	tag := r.Header.Get(RoleHeader)
	if tag == "" {
		tag = r.URL.Query().Get(RoleHeader)
	}
	role, err := domain.ParseRole(tag)
	if err != nil {
		return domain.RoleUnknown, ErrUnknownRole
	}
	return role, nil
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	role, roleErr := RoleFromRequest(r)
	h.logger.Info("WebSocket connection request", "role", role.String(), "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("Failed to accept WebSocket", "error", err)
		return
	}

	if roleErr != nil {
		h.logger.Warn("Closing connection with unrecognized client type", "ip", r.RemoteAddr)
		_ = ws.Close(websocket.StatusPolicyViolation, roleErr.Error())
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	peer := newWSPeer(ctx, ws, role, h.queueSize, h.writeTimeout, h.logger)
	go peer.writeLoop(cancel)

	// Leave is a no-op unless this peer was admitted.
	defer h.hub.Leave(role, peer)

	if err := h.hub.Admit(ctx, role, peer); err != nil {
		h.logger.Warn("Connection rejected", "role", role.String(), "error", err)
		_ = ws.Close(websocket.StatusPolicyViolation, err.Error())
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "connection ended"); closeErr != nil {
			h.logger.Debug("Failed to close websocket", "error", closeErr, "role", role.String())
		}
	}()

	h.readLoop(ctx, ws, role, peer)
	h.logger.Info("Relay connection ended", "role", role.String())
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	h.logger.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, role domain.Role, peer Peer) {
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				h.logger.Debug("WebSocket closed by client", "role", role.String())
			} else if ctx.Err() == nil {
				h.logger.Warn("WebSocket read error", "error", err, "role", role.String())
			}
			return
		}
		if typ != websocket.MessageText {
			h.logger.Debug("Dropping binary frame", "role", role.String())
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Event == "" {
			h.logger.Debug("Dropping undecodable frame", "role", role.String(), "error", err)
			continue
		}

		if err := h.hub.Deliver(ctx, role, peer, msg); err != nil {
			return
		}
	}
}
