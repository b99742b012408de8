package services

import (
	"context"

	"termchat/contract"
	"termchat/domain"
	"termchat/runtime"
)

// IChatService is the surface the transport talks to. It mirrors the hub
// one to one so handlers never reach into runtime state directly.
type IChatService interface {
	Connect(connID string, identity domain.Identity, sink contract.EventSink) domain.Session
	Join(ctx context.Context, connID, room string) error
	Leave(ctx context.Context, connID, room string) error
	RoomMessage(ctx context.Context, connID, room, text string) error
	Direct(ctx context.Context, connID, to, text string) error
	DMHistory(ctx context.Context, connID, userA, userB string) error
	UsersIn(ctx context.Context, connID, room string) error
	Logout(ctx context.Context, connID string)
	Disconnect(ctx context.Context, connID string)
}

type ChatService struct {
	hub *runtime.Hub
}

func NewChatService(hub *runtime.Hub) IChatService {
	return &ChatService{hub: hub}
}

func (s *ChatService) Connect(connID string, identity domain.Identity, sink contract.EventSink) domain.Session {
	return s.hub.Connect(connID, identity, sink)
}

func (s *ChatService) Join(ctx context.Context, connID, room string) error {
	return s.hub.Join(ctx, connID, room)
}

func (s *ChatService) Leave(ctx context.Context, connID, room string) error {
	return s.hub.Leave(ctx, connID, room)
}

func (s *ChatService) RoomMessage(ctx context.Context, connID, room, text string) error {
	return s.hub.RoomMessage(ctx, connID, room, text)
}

func (s *ChatService) Direct(ctx context.Context, connID, to, text string) error {
	return s.hub.Direct(ctx, connID, to, text)
}

func (s *ChatService) DMHistory(ctx context.Context, connID, userA, userB string) error {
	return s.hub.DMHistory(ctx, connID, userA, userB)
}

func (s *ChatService) UsersIn(ctx context.Context, connID, room string) error {
	return s.hub.UsersIn(ctx, connID, room)
}

func (s *ChatService) Logout(ctx context.Context, connID string) {
	s.hub.Logout(ctx, connID)
}

func (s *ChatService) Disconnect(ctx context.Context, connID string) {
	s.hub.Disconnect(ctx, connID)
}
