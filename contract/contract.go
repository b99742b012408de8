package contract

import (
	"context"

	"termchat/domain/event"
)

// EventSink is the delivery end of one live connection. Implementations
// must not block the caller: delivery is best-effort and an overloaded
// consumer loses events rather than stalling the router.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}
