// Package domain contains core concepts of the chat system.
// This file defines Message and related rules.
// Messages are immutable once created.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event. Exactly one of Room and To
// is set: Room for broadcast messages, To for direct ones.
type Message struct {
	ID   uuid.UUID
	From string
	To   string
	Room string
	Text string
	At   time.Time
}

func (m Message) IsDirect() bool {
	return m.To != ""
}
