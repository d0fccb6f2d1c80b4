package event

import (
	"runtime/debug"
)

// Subscribe registers a fresh mailbox under topic and starts its processing
// loop, which calls h for every event delivered to it. It returns
// immediately; the mailbox is the handle for Unsubscribe.
func (r *Router) Subscribe(topic Topic, h Handler) *Mailbox {
	return r.SubscribeMailbox(NewMailbox(r.cfg.mailboxSize), topic, h)
}

// SubscribeMailbox registers an existing mailbox under topic. Events still
// buffered in mb are processed first, in order.
//
// A mailbox has at most one processing loop. If one is already running,
// h replaces the handler for events taken after this call.
// After Close the router registers nothing and mb is returned unchanged.
func (r *Router) SubscribeMailbox(mb *Mailbox, topic Topic, h Handler) *Mailbox {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.logger.Warn().
			Str("mailbox", mb.ID()).
			Str("topic", string(topic)).
			Msg("subscribe on closed router ignored")
		return mb
	}

	r.register(topic, mb)
	mb.handler.Store(&h)
	if !mb.running.CompareAndSwap(false, true) {
		return mb
	}

	r.loops[mb] = struct{}{}
	r.wg.Add(1)
	r.stats.activeLoops.Add(1)
	go r.process(mb)

	r.logger.Debug().
		Str("mailbox", mb.ID()).
		Str("topic", string(topic)).
		Msg("processing loop started")
	return mb
}

// Unsubscribe removes one registration of mb under topic. The mailbox stays
// open and its loop keeps running. Unknown pairs are ignored.
func (r *Router) Unsubscribe(mb *Mailbox, topic Topic) {
	r.deregister(topic, mb)
}

// UnsubscribeAll removes every registration under topic.
func (r *Router) UnsubscribeAll(topic Topic) {
	r.deregisterAll(topic)
}

// process is the processing loop of one mailbox. It ends when the mailbox
// has been closed and drained.
func (r *Router) process(mb *Mailbox) {
	defer r.wg.Done()
	defer r.endLoop(mb)

	for e := range mb.queue {
		r.invoke(mb, *mb.handler.Load(), e)
	}
}

// endLoop drops every registration of mb and marks its loop stopped in one
// critical section, so a concurrent SubscribeMailbox either sees the loop
// running and its registration purged, or starts a new loop.
func (r *Router) endLoop(mb *Mailbox) {
	r.mu.Lock()
	r.purgeLocked(mb)
	delete(r.loops, mb)
	mb.running.Store(false)
	r.mu.Unlock()

	r.stats.activeLoops.Add(-1)
	r.logger.Debug().Str("mailbox", mb.ID()).Msg("processing loop ended")
}

func (r *Router) invoke(mb *Mailbox, h Handler, e Event) {
	defer func() {
		if v := recover(); v != nil {
			err := &PanicError{
				MailboxID: mb.ID(),
				Topic:     e.Topic,
				Value:     v,
				Stack:     debug.Stack(),
			}
			r.stats.panics.Add(1)
			r.logger.Error().
				Str("mailbox", mb.ID()).
				Str("topic", string(e.Topic)).
				Interface("panic", v).
				Bytes("stack", err.Stack).
				Msg("handler panicked")
			r.report(e, err)
		}
	}()

	if err := h(r.ctx, e); err != nil {
		r.stats.handlerErrors.Add(1)
		r.logger.Error().
			Err(err).
			Str("mailbox", mb.ID()).
			Str("topic", string(e.Topic)).
			Msg("handler failed")
		r.report(e, &HandlerError{MailboxID: mb.ID(), Topic: e.Topic, Err: err})
		return
	}
	r.stats.handled.Add(1)
}

func (r *Router) report(e Event, err error) {
	if r.cfg.onError == nil {
		return
	}
	defer func() {
		if v := recover(); v != nil {
			r.logger.Error().Interface("panic", v).Msg("error handler panicked")
		}
	}()
	r.cfg.onError(e, err)
}
