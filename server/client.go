package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"termchat/services"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// client glues one websocket to the chat service. The read pump turns
// inbound frames into service calls; the write pump drains the sink.
type client struct {
	connID   string
	username string
	conn     *websocket.Conn
	sink     *Sink
	chat     services.IChatService
	log      *slog.Logger
	cancel   context.CancelFunc
}

// readPump owns the connection teardown: whatever ends the read loop
// also disconnects the session and stops the write pump.
func (c *client) readPump(ctx context.Context) {
	defer func() {
		c.chat.Disconnect(ctx, c.connID)
		c.cancel()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("Unexpected close",
					slog.String("username", c.username), slog.Any("error", err))
			}
			return
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			c.log.Debug("Discarding malformed frame",
				slog.String("username", c.username), slog.Any("error", err))
			continue
		}

		if done := c.dispatch(ctx, frame); done {
			return
		}
	}
}

// dispatch routes one inbound frame. Service errors are logged, not
// returned to the peer; the hub already pushed the relevant error event.
func (c *client) dispatch(ctx context.Context, frame Frame) bool {
	var err error
	switch frame.Event {
	case "join-room":
		var p joinRoomPayload
		if err = json.Unmarshal(frame.Payload, &p); err == nil {
			err = c.chat.Join(ctx, c.connID, p.Room)
		}
	case "leave-room":
		var p leaveRoomPayload
		if err = json.Unmarshal(frame.Payload, &p); err == nil {
			err = c.chat.Leave(ctx, c.connID, p.Room)
		}
	case "room-message":
		var p roomMessagePayload
		if err = json.Unmarshal(frame.Payload, &p); err == nil {
			err = c.chat.RoomMessage(ctx, c.connID, p.Room, p.Msg)
		}
	case "dm":
		var p dmPayload
		if err = json.Unmarshal(frame.Payload, &p); err == nil {
			err = c.chat.Direct(ctx, c.connID, p.To, p.Msg)
		}
	case "get-dm-history":
		var p dmHistoryPayload
		if err = json.Unmarshal(frame.Payload, &p); err == nil {
			err = c.chat.DMHistory(ctx, c.connID, p.User1, p.User2)
		}
	case "get-users":
		var p getUsersPayload
		if err = json.Unmarshal(frame.Payload, &p); err == nil {
			err = c.chat.UsersIn(ctx, c.connID, p.Room)
		}
	case "logout":
		c.chat.Logout(ctx, c.connID)
		return true
	default:
		c.log.Debug("Unknown event",
			slog.String("username", c.username), slog.String("event", frame.Event))
	}

	if err != nil {
		c.log.Debug("Frame handling failed",
			slog.String("username", c.username),
			slog.String("event", frame.Event),
			slog.Any("error", err))
	}
	return false
}

func (c *client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case e := <-c.sink.Events:
			data, err := EncodeEvent(e)
			if err != nil {
				c.log.Error("Event encoding failed",
					slog.String("event", e.Name()), slog.Any("error", err))
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
