package runtime

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"termchat/domain"
	"termchat/domain/event"
	apperrors "termchat/errors"
	"termchat/moderation"
	"termchat/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

// recordingSink captures every event delivered to one connection.
type recordingSink struct {
	events []event.Event
}

func (s *recordingSink) Consume(ctx context.Context, e event.Event) error {
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) names() []string {
	names := make([]string, 0, len(s.events))
	for _, e := range s.events {
		names = append(names, e.Name())
	}
	return names
}

func newTestHub(t *testing.T) (*Hub, repositories.MessageRepository) {
	t.Helper()
	req := require.New(t)

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	messages := repositories.NewMessageRepository(db, logger, 20, 0)
	rooms := repositories.NewRoomRepository(db)
	req.NoError(rooms.UpsertRoom(repositories.StoredRoom{Name: "general", AllowedUsers: []string{"admin", "abc", "xyz"}}))
	req.NoError(rooms.UpsertRoom(repositories.StoredRoom{Name: "private", AllowedUsers: []string{"admin", "abc"}}))

	hub := NewHub(logger, NewRegistry(), rooms, messages, nil)
	return hub, messages
}

func connect(hub *Hub, connID, username string) *recordingSink {
	sink := &recordingSink{}
	hub.Connect(connID, domain.Identity{Username: username, Role: "user"}, sink)
	return sink
}

func TestHub_Join_Success_Event_Order(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub, _ := newTestHub(t)
	sink := connect(hub, "c1", "abc")

	// When the user joins an allowed room
	req.NoError(hub.Join(ctx, "c1", "general"))

	// Then the acknowledgement arrives first, then the history, then the snapshot
	req.Equal([]string{"join-room-success", "room-history", "room-users"}, sink.names())
	req.Equal(event.JoinRoomSuccess{Room: "general"}, sink.events[0])
	req.Empty(sink.events[1].(event.RoomHistory))
	req.Equal(event.RoomUsers{"abc"}, sink.events[2])
}

func TestHub_Join_Unknown_Room(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub, _ := newTestHub(t)
	sink := connect(hub, "c1", "abc")

	// When the user joins a room that does not exist
	err := hub.Join(ctx, "c1", "nowhere")

	// Then only an error event is delivered and the session stays roomless
	req.ErrorIs(err, apperrors.ErrRoomNotFound)
	req.Equal([]string{"join-room-error"}, sink.names())
	req.Equal(event.JoinRoomError{Msg: "Room does not exist."}, sink.events[0])

	session, _ := hub.registry.ByConnection("c1")
	req.Empty(session.Room)
}

func TestHub_Join_Denied_By_AllowList(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub, _ := newTestHub(t)
	sink := connect(hub, "c1", "xyz")

	// When a user outside the allow-list joins
	err := hub.Join(ctx, "c1", "private")

	// Then access is denied and membership is unchanged
	req.ErrorIs(err, apperrors.ErrAccessDenied)
	req.Equal([]string{"join-room-error"}, sink.names())
	req.Equal(event.JoinRoomError{Msg: "You are not allowed to join this room."}, sink.events[0])
	req.Empty(hub.registry.MembersOf("private"))
}

func TestHub_Join_Switches_Room(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub, _ := newTestHub(t)
	abcSink := connect(hub, "c1", "abc")
	adminSink := connect(hub, "c2", "admin")
	req.NoError(hub.Join(ctx, "c1", "general"))
	req.NoError(hub.Join(ctx, "c2", "general"))
	abcSink.events = nil
	adminSink.events = nil

	// When abc switches to another room
	req.NoError(hub.Join(ctx, "c1", "private"))

	// Then the old room gets a snapshot without abc
	req.Equal([]string{"room-users"}, adminSink.names())
	req.Equal(event.RoomUsers{"admin"}, adminSink.events[0])

	// And abc only belongs to the new room
	req.Equal([]string{"abc"}, hub.registry.MembersOf("private"))
	req.Equal([]string{"admin"}, hub.registry.MembersOf("general"))
}

func TestHub_Leave(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub, _ := newTestHub(t)
	sink := connect(hub, "c1", "abc")
	req.NoError(hub.Join(ctx, "c1", "general"))
	sink.events = nil

	// When the user leaves a room it is not in
	req.NoError(hub.Leave(ctx, "c1", "private"))

	// Then nothing happens
	req.Empty(sink.events)
	req.Equal([]string{"abc"}, hub.registry.MembersOf("general"))

	// When the user leaves its actual room
	req.NoError(hub.Leave(ctx, "c1", "general"))

	// Then the membership is cleared
	req.Empty(hub.registry.MembersOf("general"))
	session, _ := hub.registry.ByConnection("c1")
	req.Empty(session.Room)
}

func TestHub_RoomMessage_Broadcast_Includes_Sender(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub, messages := newTestHub(t)
	abcSink := connect(hub, "c1", "abc")
	adminSink := connect(hub, "c2", "admin")
	req.NoError(hub.Join(ctx, "c1", "general"))
	req.NoError(hub.Join(ctx, "c2", "general"))
	abcSink.events = nil
	adminSink.events = nil

	// When abc posts into the room
	req.NoError(hub.RoomMessage(ctx, "c1", "general", "hello"))

	// Then everyone in the room gets it, abc included
	expected := event.RoomMessage{Room: "general", User: "abc", Msg: "hello"}
	req.Equal([]event.Event{expected}, abcSink.events)
	req.Equal([]event.Event{expected}, adminSink.events)

	// And the message is persisted
	history, err := messages.RoomHistory("general")
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("hello", history[0].Text)
}

func TestHub_RoomMessage_Stale_Room_Is_Dropped(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub, messages := newTestHub(t)
	abcSink := connect(hub, "c1", "abc")
	adminSink := connect(hub, "c2", "admin")
	req.NoError(hub.Join(ctx, "c2", "general"))
	abcSink.events = nil
	adminSink.events = nil

	// When abc posts into a room it never joined
	req.NoError(hub.RoomMessage(ctx, "c1", "general", "ghost"))

	// Then nothing is delivered and nothing is stored
	req.Empty(abcSink.events)
	req.Empty(adminSink.events)

	history, err := messages.RoomHistory("general")
	req.NoError(err)
	req.Empty(history)
}

func TestHub_Direct_Offline_Recipient(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub, messages := newTestHub(t)
	sink := connect(hub, "c1", "abc")

	// When abc messages someone who is not connected
	err := hub.Direct(ctx, "c1", "xyz", "hi")

	// Then abc gets exactly one error event and nothing is stored
	req.ErrorIs(err, apperrors.ErrRecipientOffline)
	req.Equal([]string{"dm-error"}, sink.names())
	req.Equal(event.DMError{Msg: "User xyz is not online."}, sink.events[0])

	history, err := messages.DMHistory("abc", "xyz")
	req.NoError(err)
	req.Empty(history)
}

func TestHub_Direct_Delivers_And_Echoes(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub, messages := newTestHub(t)
	abcSink := connect(hub, "c1", "abc")
	xyzSink := connect(hub, "c2", "xyz")

	// When abc messages xyz
	req.NoError(hub.Direct(ctx, "c1", "xyz", "hi"))

	// Then both sides receive the same event
	expected := event.DirectMessage{To: "xyz", From: "abc", Msg: "hi"}
	req.Equal([]event.Event{expected}, xyzSink.events)
	req.Equal([]event.Event{expected}, abcSink.events)

	// And one message is stored, reachable from both directions
	history, err := messages.DMHistory("abc", "xyz")
	req.NoError(err)
	req.Len(history, 1)
	req.Equal("abc", history[0].From)
	req.Equal("xyz", history[0].To)

	reversed, err := messages.DMHistory("xyz", "abc")
	req.NoError(err)
	req.Equal(history, reversed)
}

func TestHub_DMHistory_Replay(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub, _ := newTestHub(t)
	abcSink := connect(hub, "c1", "abc")
	connect(hub, "c2", "xyz")
	req.NoError(hub.Direct(ctx, "c1", "xyz", "first"))
	req.NoError(hub.Direct(ctx, "c1", "xyz", "second"))
	abcSink.events = nil

	// When abc asks for the conversation
	req.NoError(hub.DMHistory(ctx, "c1", "abc", "xyz"))

	// Then the messages come back oldest first
	req.Equal([]string{"dm-history"}, abcSink.names())
	history := abcSink.events[0].(event.DMHistory)
	req.Len(history, 2)
	req.Equal("first", history[0].Text)
	req.Equal("second", history[1].Text)
}

func TestHub_UsersIn(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub, _ := newTestHub(t)
	sink := connect(hub, "c1", "abc")
	connect(hub, "c2", "admin")
	req.NoError(hub.Join(ctx, "c1", "general"))
	req.NoError(hub.Join(ctx, "c2", "general"))
	sink.events = nil

	// When abc asks who is in the room
	req.NoError(hub.UsersIn(ctx, "c1", "general"))

	req.Equal([]event.Event{event.UsersList{"abc", "admin"}}, sink.events)
}

func TestHub_Disconnect_Updates_Room(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub, _ := newTestHub(t)
	connect(hub, "c1", "abc")
	adminSink := connect(hub, "c2", "admin")
	req.NoError(hub.Join(ctx, "c1", "general"))
	req.NoError(hub.Join(ctx, "c2", "general"))
	adminSink.events = nil

	// When abc drops
	hub.Disconnect(ctx, "c1")

	// Then the remaining members get a fresh snapshot
	req.Equal([]event.Event{event.RoomUsers{"admin"}}, adminSink.events)
	_, ok := hub.registry.ByUsername("abc")
	req.False(ok)

	// And a second disconnect is a no-op
	adminSink.events = nil
	hub.Disconnect(ctx, "c1")
	req.Empty(adminSink.events)
}

func TestHub_Logout_Clears_Session(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub, _ := newTestHub(t)
	connect(hub, "c1", "abc")
	req.NoError(hub.Join(ctx, "c1", "general"))

	// When abc logs out
	hub.Logout(ctx, "c1")

	// Then the session is gone
	_, ok := hub.registry.ByUsername("abc")
	req.False(ok)
	req.Empty(hub.registry.MembersOf("general"))
}

func TestHub_RoomMessage_Is_Censored(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	hub, messages := newTestHub(t)

	censor, err := moderation.NewModerator([]string{"idiot"}, '*')
	req.NoError(err)
	hub.censor = censor

	sink := connect(hub, "c1", "abc")
	req.NoError(hub.Join(ctx, "c1", "general"))
	sink.events = nil

	// When the message contains a blacklisted word
	req.NoError(hub.RoomMessage(ctx, "c1", "general", "you Idiot"))

	// Then the delivered and stored text are both masked
	req.Equal([]event.Event{event.RoomMessage{Room: "general", User: "abc", Msg: "you *****"}}, sink.events)

	history, err := messages.RoomHistory("general")
	req.NoError(err)
	req.Equal("you *****", history[0].Text)
}
