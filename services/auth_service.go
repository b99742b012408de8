package services

import (
	"errors"
	"log/slog"
	"time"

	"termchat/auth"
	"termchat/domain"
	apperrors "termchat/errors"
	"termchat/repositories"

	"github.com/dgraph-io/badger/v4"
)

type Token string

type IAuthService interface {
	Login(username, password string) (Token, domain.Identity, error)
	Register(username, password string) error
}

type AuthService struct {
	log           *slog.Logger
	users         repositories.IUserRepository
	tokenDuration time.Duration
}

func NewAuthService(log *slog.Logger, users repositories.IUserRepository, tokenDuration time.Duration) IAuthService {
	return &AuthService{log: log, users: users, tokenDuration: tokenDuration}
}

// Login verifies the credentials and mints a token carrying the identity.
// Unknown usernames and wrong passwords both map to ErrInvalidCredentials
// so callers cannot probe for accounts.
func (s *AuthService) Login(username, password string) (Token, domain.Identity, error) {
	if err := auth.ValidateLogin(auth.LoginRequest{Username: username, Password: password}); err != nil {
		return "", domain.Identity{}, apperrors.ErrInvalidCredentials
	}

	user, err := s.users.GetUserByUsername(username)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", domain.Identity{}, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.Identity{}, err
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", domain.Identity{}, apperrors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.Username, user.Role, s.tokenDuration)
	if err != nil {
		s.log.Error("Token generation failed", slog.Any("error", err))
		return "", domain.Identity{}, apperrors.ErrTokenGeneration
	}

	return Token(token), domain.Identity{Username: user.Username, Role: user.Role}, nil
}

// Register creates a non-admin account after validating the request.
func (s *AuthService) Register(username, password string) error {
	if err := auth.ValidateRegister(auth.RegisterRequest{Username: username, Password: password}); err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	return s.users.CreateUser(username, hash, "user")
}
