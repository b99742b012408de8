// Seed provisions the demo accounts and rooms so a fresh install can be
// exercised immediately. Running it twice is safe.
package main

import (
	"errors"
	"fmt"
	"os"

	"termchat/auth"
	apperrors "termchat/errors"
	"termchat/internal"
	"termchat/repositories"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
)

type seedUser struct {
	username string
	password string
	role     string
}

var users = []seedUser{
	{username: "abc", password: "pass1", role: "user"},
	{username: "xyz", password: "pass2", role: "user"},
	{username: "admin", password: "admin123", role: "admin"},
}

var rooms = []repositories.StoredRoom{
	{Name: "general", AllowedUsers: []string{"admin", "abc", "xyz"}},
	{Name: "private", AllowedUsers: []string{"admin", "abc"}},
}

func main() {
	if err := run(); err != nil {
		color.Red.Printf("Seeding failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	options := badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(options)
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() { _ = db.Close() }()

	userRepository := repositories.NewUserRepository(db)
	for _, u := range users {
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			return fmt.Errorf("hashing password for %s: %w", u.username, err)
		}
		err = userRepository.CreateUser(u.username, hash, u.role)
		if errors.Is(err, apperrors.ErrUserAlreadyExists) {
			color.Yellow.Printf("User %s already exists, skipping.\n", u.username)
			continue
		}
		if err != nil {
			return fmt.Errorf("creating user %s: %w", u.username, err)
		}
		color.Green.Printf("Created user %s (%s)\n", u.username, u.role)
	}

	roomRepository := repositories.NewRoomRepository(db)
	for _, room := range rooms {
		if err := roomRepository.UpsertRoom(room); err != nil {
			return fmt.Errorf("upserting room %s: %w", room.Name, err)
		}
		color.Green.Printf("Room %s ready (%d allowed users)\n", room.Name, len(room.AllowedUsers))
	}

	color.Green.Println("Seeding complete.")
	return nil
}
