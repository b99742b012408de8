package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"termchat/contract"
	"termchat/domain"
	"termchat/domain/event"
	apperrors "termchat/errors"
	"termchat/moderation"
	"termchat/repositories"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Hub coordinates every live connection: room membership, broadcast and
// direct routing, history replay and cleanup. It owns no goroutines;
// every method runs on the caller's goroutine and fans events out through
// the registered sinks.
type Hub struct {
	log      *slog.Logger
	registry *Registry
	rooms    repositories.IRoomRepository
	messages repositories.IMessageRepository
	censor   *moderation.Moderator
}

// NewHub wires the hub. censor may be nil when moderation is disabled.
func NewHub(log *slog.Logger, registry *Registry, rooms repositories.IRoomRepository,
	messages repositories.IMessageRepository, censor *moderation.Moderator) *Hub {
	return &Hub{
		log:      log,
		registry: registry,
		rooms:    rooms,
		messages: messages,
		censor:   censor,
	}
}

// Connect registers an authenticated connection. The session starts
// outside any room.
func (h *Hub) Connect(connID string, identity domain.Identity, sink contract.EventSink) domain.Session {
	session := h.registry.Open(connID, identity, sink)
	h.log.Info("Connection opened",
		slog.String("conn_id", connID),
		slog.String("username", identity.Username))
	return session
}

// Join moves the connection into a room after checking its allow-list.
// On success the requester receives the acknowledgement, then the room
// history, then everyone in the room gets a fresh membership snapshot.
// A join into a new room implicitly leaves the previous one.
func (h *Hub) Join(ctx context.Context, connID, roomName string) error {
	session, ok := h.registry.ByConnection(connID)
	if !ok {
		return apperrors.ErrUnknownConnection
	}

	stored, err := h.rooms.GetRoom(roomName)
	if err != nil {
		h.send(ctx, connID, event.JoinRoomError{Msg: "Room does not exist."})
		return err
	}

	room := domain.Room{Name: stored.Name, AllowedUsers: stored.AllowedUsers}
	if !room.Allows(session.Username) {
		h.send(ctx, connID, event.JoinRoomError{Msg: "You are not allowed to join this room."})
		return apperrors.ErrAccessDenied
	}

	if session.Room != "" && session.Room != roomName {
		h.leaveCurrent(ctx, session)
	}

	h.registry.SetRoom(connID, roomName)
	h.send(ctx, connID, event.JoinRoomSuccess{Room: roomName})

	history, err := h.messages.RoomHistory(roomName)
	if err != nil {
		h.log.Error("History replay failed",
			slog.String("room", roomName), slog.Any("error", err))
	} else {
		h.send(ctx, connID, toHistory[event.RoomHistory](history))
	}

	h.broadcastMembers(ctx, roomName)
	h.log.Info("User joined room",
		slog.String("username", session.Username), slog.String("room", roomName))
	return nil
}

// Leave removes the connection from the named room. A request naming a
// room the connection is not in is a no-op.
func (h *Hub) Leave(ctx context.Context, connID, roomName string) error {
	session, ok := h.registry.ByConnection(connID)
	if !ok {
		return apperrors.ErrUnknownConnection
	}
	if session.Room != roomName {
		return nil
	}
	h.leaveCurrent(ctx, session)
	return nil
}

// RoomMessage persists a broadcast message and delivers it to every
// member of the room, the sender included. A message naming a room the
// sender is no longer in is dropped silently; the sender has stale state
// and the next snapshot corrects it.
func (h *Hub) RoomMessage(ctx context.Context, connID, roomName, text string) error {
	session, ok := h.registry.ByConnection(connID)
	if !ok {
		return apperrors.ErrUnknownConnection
	}
	if session.Room != roomName {
		h.log.Debug("Dropping message for a room the sender is not in",
			slog.String("username", session.Username), slog.String("room", roomName))
		return nil
	}

	if h.censor != nil {
		text = h.censor.Censor(text)
	}

	message := domain.Message{
		ID:   uuid.New(),
		From: session.Username,
		Room: roomName,
		Text: text,
		At:   time.Now().UTC(),
	}
	if err := h.messages.StoreMessage(toDiskMessage(message)); err != nil {
		return fmt.Errorf("store room message: %w", err)
	}

	h.broadcast(ctx, roomName, event.RoomMessage{
		Room: roomName,
		User: message.From,
		Msg:  message.Text,
	})
	return nil
}

// Direct persists a direct message and delivers it to the recipient, with
// an identical echo back to the sender. When the recipient is offline
// nothing is persisted and the sender gets a dm-error.
func (h *Hub) Direct(ctx context.Context, connID, to, text string) error {
	session, ok := h.registry.ByConnection(connID)
	if !ok {
		return apperrors.ErrUnknownConnection
	}

	target, online := h.registry.ByUsername(to)
	if !online {
		h.send(ctx, connID, event.DMError{Msg: fmt.Sprintf("User %s is not online.", to)})
		return apperrors.ErrRecipientOffline
	}

	if h.censor != nil {
		text = h.censor.Censor(text)
	}

	message := domain.Message{
		ID:   uuid.New(),
		From: session.Username,
		To:   to,
		Text: text,
		At:   time.Now().UTC(),
	}
	if err := h.messages.StoreMessage(toDiskMessage(message)); err != nil {
		return fmt.Errorf("store direct message: %w", err)
	}

	payload := event.DirectMessage{To: to, From: message.From, Msg: message.Text}
	h.send(ctx, target.ConnID, payload)
	if target.ConnID != connID {
		h.send(ctx, connID, payload)
	}
	return nil
}

// DMHistory replays the conversation between the requester and another
// user, oldest first.
func (h *Hub) DMHistory(ctx context.Context, connID, userA, userB string) error {
	if _, ok := h.registry.ByConnection(connID); !ok {
		return apperrors.ErrUnknownConnection
	}
	history, err := h.messages.DMHistory(userA, userB)
	if err != nil {
		return err
	}
	h.send(ctx, connID, toHistory[event.DMHistory](history))
	return nil
}

// UsersIn answers an explicit membership query with a users-list event.
func (h *Hub) UsersIn(ctx context.Context, connID, roomName string) error {
	if _, ok := h.registry.ByConnection(connID); !ok {
		return apperrors.ErrUnknownConnection
	}
	h.send(ctx, connID, event.UsersList(h.registry.MembersOf(roomName)))
	return nil
}

// Logout behaves exactly like the connection dropping.
func (h *Hub) Logout(ctx context.Context, connID string) {
	h.Disconnect(ctx, connID)
}

// Disconnect removes the connection from the registry and, if it was in
// a room, pushes an updated snapshot to the remaining members. Calling
// it twice for the same connection is a no-op.
func (h *Hub) Disconnect(ctx context.Context, connID string) {
	session, ok := h.registry.Close(connID)
	if !ok {
		return
	}
	if session.Room != "" {
		h.broadcastMembers(ctx, session.Room)
	}
	h.log.Info("Connection closed",
		slog.String("conn_id", connID),
		slog.String("username", session.Username))
}

func (h *Hub) leaveCurrent(ctx context.Context, session domain.Session) {
	room := session.Room
	h.registry.SetRoom(session.ConnID, "")
	h.broadcastMembers(ctx, room)
	h.log.Info("User left room",
		slog.String("username", session.Username), slog.String("room", room))
}

func (h *Hub) send(ctx context.Context, connID string, e event.Event) {
	sink, ok := h.registry.SinkFor(connID)
	if !ok {
		return
	}
	if err := sink.Consume(ctx, e); err != nil {
		h.log.Warn("Event dropped",
			slog.String("conn_id", connID),
			slog.String("event", e.Name()),
			slog.Any("error", err))
	}
}

func (h *Hub) broadcast(ctx context.Context, room string, e event.Event) {
	for _, sink := range h.registry.SinksForRoom(room) {
		if err := sink.Consume(ctx, e); err != nil {
			h.log.Warn("Event dropped during broadcast",
				slog.String("room", room),
				slog.String("event", e.Name()),
				slog.Any("error", err))
		}
	}
}

func (h *Hub) broadcastMembers(ctx context.Context, room string) {
	h.broadcast(ctx, room, event.RoomUsers(h.registry.MembersOf(room)))
}

func toDiskMessage(m domain.Message) repositories.DiskMessage {
	return repositories.DiskMessage{
		ID:   m.ID,
		From: m.From,
		To:   m.To,
		Room: m.Room,
		Text: m.Text,
		At:   m.At,
	}
}

func toHistory[T ~[]event.HistoryEntry](messages []repositories.DiskMessage) T {
	return lo.Map(messages, func(m repositories.DiskMessage, _ int) event.HistoryEntry {
		return event.HistoryEntry{
			From: m.From,
			To:   m.To,
			Room: m.Room,
			Text: m.Text,
			At:   m.At,
		}
	})
}
