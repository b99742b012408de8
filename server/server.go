// Package server exposes the chat engine over HTTP: a websocket endpoint
// for live connections and a small JSON API for authentication and room
// discovery.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"termchat/repositories"
	"termchat/services"
)

type Server struct {
	ctx        context.Context
	log        *slog.Logger
	chat       services.IChatService
	auth       services.IAuthService
	rooms      repositories.IRoomRepository
	bufferSize int
	httpServer *http.Server
}

// New builds the HTTP server. ctx is the process base context; the pumps
// of every accepted connection are bound to it so shutdown reaches them.
func New(ctx context.Context, log *slog.Logger, host string, port int,
	chat services.IChatService, authService services.IAuthService,
	rooms repositories.IRoomRepository, bufferSize int) *Server {

	s := &Server{
		ctx:        ctx,
		log:        log,
		chat:       chat,
		auth:       authService,
		rooms:      rooms,
		bufferSize: bufferSize,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, "Backend is running")
	})
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("GET /api/rooms", s.handleRooms)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	s.log.Info("HTTP server listening", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
