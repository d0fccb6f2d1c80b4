package event

import "context"

// Emitter is the emission entry point bound to one Router.
type Emitter struct {
	router *Router
}

// NewEmitter returns an emitter publishing to r.
func NewEmitter(r *Router) *Emitter {
	return &Emitter{router: r}
}

// Router returns the router the emitter publishes to.
func (em *Emitter) Router() *Router { return em.router }

// Emit publishes an event carrying payload and returns it. It blocks only
// while a subscriber's mailbox is full. Emitting after the router was closed
// delivers nothing.
func (em *Emitter) Emit(topic Topic, payload any) Event {
	e := New(topic, payload)
	if err := em.router.Publish(context.Background(), e); err != nil {
		em.router.logger.Debug().Err(err).Str("topic", string(topic)).Msg("emit not delivered")
	}
	return e
}

// Notify publishes an event without data.
func (em *Emitter) Notify(topic Topic) Event {
	return em.Emit(topic, NoData)
}

// EmitContext is Emit with cancellation: it stops waiting on full mailboxes
// when ctx ends and returns ctx.Err(). It returns ErrRouterClosed once the
// router has been closed.
func (em *Emitter) EmitContext(ctx context.Context, topic Topic, payload any) (Event, error) {
	e := New(topic, payload)
	return e, em.router.Publish(ctx, e)
}
