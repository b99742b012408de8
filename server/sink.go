package server

import (
	"context"
	"fmt"

	"termchat/domain/event"
)

// Sink buffers outgoing events for one connection. Consume never blocks:
// when the buffer is full the event is rejected and the caller decides
// whether that matters. The write pump drains Events until the connection
// context is cancelled.
type Sink struct {
	Events chan event.Event
}

func NewSink(bufferSize int) *Sink {
	return &Sink{Events: make(chan event.Event, bufferSize)}
}

func (s *Sink) Consume(ctx context.Context, e event.Event) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("connection buffer full, dropping %s", e.Name())
	}
}
