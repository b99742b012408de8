package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	apperrors "termchat/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	StoreMessage(message DiskMessage) error
	RoomHistory(room string) ([]DiskMessage, error)
	DMHistory(userA, userB string) ([]DiskMessage, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages int
	ttl           time.Duration
}

// NewMessageRepository returns a repository whose history queries are
// truncated to limitMessages entries (0 disables the limit) and whose
// writes expire after ttl (0 disables expiry).
func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages int, ttl time.Duration) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages, ttl: ttl}
}

// DiskMessage is the storage-level representation of a chat message.
// Exactly one of Room and To is set.
type DiskMessage struct {
	ID   uuid.UUID `json:"id"`
	From string    `json:"from"`
	To   string    `json:"to,omitempty"`
	Room string    `json:"room,omitempty"`
	Text string    `json:"text"`
	At   time.Time `json:"timestamp"`
}

// StoreMessage persists a message under the retention TTL.
// Keys embed a 19-digit zero-padded UnixNano so a prefix scan returns
// messages in chronological order; the uuid suffix disambiguates two
// messages written in the same nanosecond.
func (m MessageRepository) StoreMessage(message DiskMessage) error {
	key, err := messageKey(message)
	if err != nil {
		return err
	}
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, bytes)
		if m.ttl > 0 {
			entry = entry.WithTTL(m.ttl)
		}
		return txn.SetEntry(entry)
	})
}

func messageKey(message DiskMessage) ([]byte, error) {
	switch {
	case message.Room != "" && message.To == "":
		return []byte(fmt.Sprintf("msg:room:%s:%019d:%s",
			message.Room, message.At.UnixNano(), message.ID)), nil
	case message.To != "" && message.Room == "":
		return []byte(fmt.Sprintf("msg:dm:%s:%019d:%s",
			pairKey(message.From, message.To), message.At.UnixNano(), message.ID)), nil
	default:
		return nil, apperrors.ErrInvalidDestination
	}
}

// pairKey is direction-independent so both sides of a conversation share
// one key range.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// RoomHistory returns messages for a room in ascending timestamp order,
// truncated to the configured limit. Combined with the store-side TTL
// this yields the oldest surviving messages of the retention window.
func (m MessageRepository) RoomHistory(room string) ([]DiskMessage, error) {
	return m.scan(fmt.Sprintf("msg:room:%s:", room))
}

// DMHistory returns the messages exchanged between two users in both
// directions, ascending, truncated to the configured limit.
func (m MessageRepository) DMHistory(userA, userB string) ([]DiskMessage, error) {
	return m.scan(fmt.Sprintf("msg:dm:%s:", pairKey(userA, userB)))
}

func (m MessageRepository) scan(prefixStr string) ([]DiskMessage, error) {
	var byteMessages [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(prefixStr)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages > 0 && len(byteMessages) == m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", m.limitMessages))
				break
			}
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			byteMessages = append(byteMessages, value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]DiskMessage, 0, len(byteMessages))
	for _, b := range byteMessages {
		var message DiskMessage
		if err = json.Unmarshal(b, &message); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}
