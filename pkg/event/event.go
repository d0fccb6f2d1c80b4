// pkg/event/event.go
package event

import (
	"context"
	"fmt"
)

// Topic is the routing key events are published and subscribed under.
// Membership is decided by equality only; there is no pattern matching.
type Topic string

// String implements fmt.Stringer.
func (t Topic) String() string { return string(t) }

// noData is the type of the NoData sentinel.
type noData struct{}

func (noData) String() string { return "<no data>" }

// NoData is the payload of events emitted without data (see Emitter.Notify).
// It is distinct from a nil payload, which is an intentionally emitted value.
var NoData any = noData{}

// Event is the immutable message unit passed through the router.
// Two events are equal when their topics and payloads are equal.
type Event struct {
	Topic   Topic
	Payload any
}

// New builds an Event. Use Emitter to also publish it.
func New(topic Topic, payload any) Event {
	return Event{Topic: topic, Payload: payload}
}

// HasData reports whether the event carries a payload, including nil.
func (e Event) HasData() bool {
	_, none := e.Payload.(noData)
	return !none
}

// String renders the event for logs.
func (e Event) String() string {
	if !e.HasData() {
		return fmt.Sprintf("%s()", e.Topic)
	}
	return fmt.Sprintf("%s(%v)", e.Topic, e.Payload)
}

// Handler processes a single event inside a subscription's processing loop.
// A returned error or a panic is reported and swallowed; the loop continues.
type Handler func(ctx context.Context, e Event) error

// ErrorHandler receives every failure contained by a processing loop.
// err is a *HandlerError or a *PanicError.
type ErrorHandler func(e Event, err error)
