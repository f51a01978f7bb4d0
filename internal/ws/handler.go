package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

// authWait is how long a freshly upgraded connection has to present its auth
// frame before the server hangs up.
const authWait = 10 * time.Second

// authFrame is the first message a client must send after the upgrade.
// Browser websocket clients cannot set an Authorization header, so the
// access token travels in the payload instead.
type authFrame struct {
	Token string `json:"token"`
}

// Handler upgrades HTTP requests to websocket connections, authenticates
// them and hands them to the hub.
type Handler struct {
	hub        *Hub
	jwtService auth.JWTService
	logger     *slog.Logger
	upgrader   websocket.Upgrader
}

// NewHandler creates a websocket Handler. All dependencies are required.
func NewHandler(hub *Hub, jwtService auth.JWTService, logger *slog.Logger) *Handler {
	if hub == nil {
		panic("ws.NewHandler: hub cannot be nil")
	}
	if jwtService == nil {
		panic("ws.NewHandler: jwtService cannot be nil")
	}
	if logger == nil {
		panic("ws.NewHandler: logger cannot be nil")
	}
	return &Handler{
		hub:        hub,
		jwtService: jwtService,
		logger:     logger.With(slog.String("component", "ws_handler")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Token auth happens after the upgrade, so origin checks add
			// nothing here. Credentials never ride on cookies.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP performs the upgrade and the token handshake. Connections that
// fail to authenticate are closed without ever reaching the hub.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response.
		h.logger.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	userID, ok := h.authenticate(conn)
	if !ok {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "authentication failed"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	client := newClient(h.hub, conn, userID, h.logger)
	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		_ = conn.Close()
		return
	}
	client.start()
}

// authenticate reads the auth frame and validates the access token. It
// returns the authenticated user ID on success.
func (h *Handler) authenticate(conn *websocket.Conn) (string, bool) {
	if err := conn.SetReadDeadline(time.Now().Add(authWait)); err != nil {
		return "", false
	}
	conn.SetReadLimit(maxMessageSize)

	var frame authFrame
	if err := conn.ReadJSON(&frame); err != nil {
		h.logger.Debug("failed to read websocket auth frame", slog.String("error", err.Error()))
		return "", false
	}
	if frame.Token == "" {
		h.logger.Debug("websocket auth frame missing token")
		return "", false
	}

	ctx, cancel := context.WithTimeout(context.Background(), authWait)
	defer cancel()

	claims, err := h.jwtService.ValidateAccessToken(ctx, frame.Token)
	if err != nil {
		h.logger.Debug("websocket token rejected", slog.String("error", err.Error()))
		return "", false
	}
	return claims.UserID.String(), true
}
