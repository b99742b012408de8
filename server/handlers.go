package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"termchat/auth"
	"termchat/domain"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Terminal clients carry no Origin header.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWebSocket authenticates the handshake, upgrades the connection
// and starts the pumps. Authentication failures are rejected before the
// upgrade so the client sees a plain 401.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ValidateToken(bearerToken(r))
	if err != nil {
		http.Error(w, "Authentication error", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", slog.Any("error", err))
		return
	}

	connID := uuid.NewString()
	sink := NewSink(s.bufferSize)
	identity := domain.Identity{Username: claims.Username, Role: claims.Role}
	s.chat.Connect(connID, identity, sink)

	// The pumps outlive r.Context(), which dies with the handler.
	ctx, cancel := context.WithCancel(s.ctx)
	c := &client{
		connID:   connID,
		username: claims.Username,
		conn:     conn,
		sink:     sink,
		chat:     s.chat,
		log:      s.log,
		cancel:   cancel,
	}
	go c.writePump(ctx)
	go c.readPump(ctx)
}

// bearerToken pulls the token from the Authorization header, falling
// back to the token query parameter for clients that cannot set headers.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		return token
	}
	return r.URL.Query().Get("token")
}
