package repositories

import (
	"encoding/json"
	"errors"
	"fmt"

	apperrors "termchat/errors"

	"github.com/dgraph-io/badger/v4"
)

type IRoomRepository interface {
	UpsertRoom(room StoredRoom) error
	GetRoom(name string) (StoredRoom, error)
	ListRooms() ([]string, error)
}

type RoomRepository struct {
	db *badger.DB
}

func NewRoomRepository(db *badger.DB) IRoomRepository {
	return &RoomRepository{db: db}
}

// StoredRoom is the storage-level representation of a room. The core only
// reads the allow-list; writes happen through seeding or administration.
type StoredRoom struct {
	Name         string   `json:"name"`
	AllowedUsers []string `json:"allowed_users"`
}

func (r RoomRepository) UpsertRoom(room StoredRoom) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("room:"+room.Name), data)
	})
}

// GetRoom fails with ErrRoomNotFound for unknown names.
func (r RoomRepository) GetRoom(name string) (StoredRoom, error) {
	var room StoredRoom

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("room:" + name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &room)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return StoredRoom{}, apperrors.ErrRoomNotFound
	}
	if err != nil {
		return StoredRoom{}, err
	}
	return room, nil
}

func (r RoomRepository) ListRooms() ([]string, error) {
	var names []string
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte("room:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	return names, err
}
