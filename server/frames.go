package server

import (
	"encoding/json"
	"fmt"

	"termchat/domain/event"
)

// Frame is the wire envelope. Event selects the handler, Payload carries
// the event-specific body.
type Frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EncodeEvent wraps a server-side event into its wire frame.
func EncodeEvent(e event.Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: e.Name(), Payload: payload})
}

// DecodeFrame parses an inbound frame, rejecting frames without an event
// name.
func DecodeFrame(data []byte) (Frame, error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return Frame{}, err
	}
	if frame.Event == "" {
		return Frame{}, fmt.Errorf("frame has no event name")
	}
	return frame, nil
}

type joinRoomPayload struct {
	Room string `json:"room"`
}

type leaveRoomPayload struct {
	Room string `json:"room"`
}

type roomMessagePayload struct {
	Room string `json:"room"`
	Msg  string `json:"msg"`
}

type dmPayload struct {
	To  string `json:"to"`
	Msg string `json:"msg"`
}

type dmHistoryPayload struct {
	User1 string `json:"user1"`
	User2 string `json:"user2"`
}

type getUsersPayload struct {
	Room string `json:"room"`
}
