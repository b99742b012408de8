package errors

import "fmt"

var (
	ErrAuthenticationFailed = fmt.Errorf("authentication failed")
	ErrRoomNotFound         = fmt.Errorf("room does not exist")
	ErrAccessDenied         = fmt.Errorf("user is not allowed to join this room")
	ErrRecipientOffline     = fmt.Errorf("recipient is not online")
	ErrUnknownConnection    = fmt.Errorf("unknown connection")
	ErrInvalidDestination   = fmt.Errorf("message needs exactly one destination")
	ErrInvalidCredentials   = fmt.Errorf("invalid credentials")
	ErrUserAlreadyExists    = fmt.Errorf("user already exists")
	ErrTokenGeneration      = fmt.Errorf("token generation failed")
	ErrInvalidPassword      = fmt.Errorf("invalid password")
	ErrEmptyWords           = fmt.Errorf("no words have been found")
)
