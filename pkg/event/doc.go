// Package event implements a topic-keyed, in-process publish/subscribe
// router.
//
// An Emitter publishes an Event to a Router, which copies it into the
// Mailbox of every subscription registered under the event's topic. Each
// mailbox is drained by its own goroutine that calls the subscriber's
// Handler, so a slow or failing subscriber never blocks or crashes another.
//
//	r := event.NewRouter(event.WithLogger(logger))
//	em := event.NewEmitter(r)
//
//	mb := r.Subscribe("click", func(ctx context.Context, e event.Event) error {
//		fmt.Println(e.Payload)
//		return nil
//	})
//	em.Emit("click", map[string]int{"x": 1})
//	r.Unsubscribe(mb, "click")
//
// Mailboxes are bounded: an emitter waits while a target mailbox is full.
// Unsubscribing removes a registration but leaves the mailbox open; closing
// a mailbox lets its loop finish the buffered events and end.
package event
