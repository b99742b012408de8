package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"termchat/auth"
	apperrors "termchat/errors"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  loginUser `json:"user"`
}

type loginUser struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, identity, err := s.auth.Login(req.Username, req.Password)
	if errors.Is(err, apperrors.ErrInvalidCredentials) {
		writeJSONError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		s.log.Error("Login failed", slog.Any("error", err))
		writeJSONError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: string(token),
		User:  loginUser{Username: identity.Username, Role: identity.Role},
	})
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleRegister creates accounts. Only admins may call it.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ValidateToken(bearerToken(r))
	if err != nil || claims.Role != "admin" {
		writeJSONError(w, http.StatusForbidden, "Admin access required")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch err := s.auth.Register(req.Username, req.Password); {
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		writeJSONError(w, http.StatusBadRequest, "User already exists")
	case err != nil:
		writeJSONError(w, http.StatusBadRequest, "Invalid username or password")
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
	}
}

func (s *Server) handleRooms(w http.ResponseWriter, _ *http.Request) {
	rooms, err := s.rooms.ListRooms()
	if err != nil {
		s.log.Error("Room listing failed", slog.Any("error", err))
		writeJSONError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	if rooms == nil {
		rooms = []string{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
