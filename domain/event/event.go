// Package event defines the server-to-client notifications carried over a
// live connection. Each event knows its wire name; the transport wraps the
// event into a frame and the terminal client dispatches on that name.
package event

import "time"

type Event interface {
	Name() string
}

type JoinRoomSuccess struct {
	Room string `json:"room"`
}

func (JoinRoomSuccess) Name() string { return "join-room-success" }

type JoinRoomError struct {
	Msg string `json:"msg"`
}

func (JoinRoomError) Name() string { return "join-room-error" }

// HistoryEntry is one replayed message. Exactly one of Room and To is set,
// mirroring the stored message shape.
type HistoryEntry struct {
	From string    `json:"from"`
	To   string    `json:"to,omitempty"`
	Room string    `json:"room,omitempty"`
	Text string    `json:"text"`
	At   time.Time `json:"timestamp"`
}

// RoomHistory is sent to the requester right after a successful join,
// oldest message first.
type RoomHistory []HistoryEntry

func (RoomHistory) Name() string { return "room-history" }

type DMHistory []HistoryEntry

func (DMHistory) Name() string { return "dm-history" }

// RoomUsers is the membership snapshot broadcast after every join, leave
// and disconnect.
type RoomUsers []string

func (RoomUsers) Name() string { return "room-users" }

// UsersList answers an explicit get-users query.
type UsersList []string

func (UsersList) Name() string { return "users-list" }

type RoomMessage struct {
	Room string `json:"room"`
	User string `json:"user"`
	Msg  string `json:"msg"`
}

func (RoomMessage) Name() string { return "room-message" }

type DirectMessage struct {
	To   string `json:"to"`
	From string `json:"from"`
	Msg  string `json:"msg"`
}

func (DirectMessage) Name() string { return "dm" }

type DMError struct {
	Msg string `json:"msg"`
}

func (DMError) Name() string { return "dm-error" }
