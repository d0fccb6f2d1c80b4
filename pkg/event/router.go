// pkg/event/router.go
package event

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Router keeps the topic registry and fans published events out to the
// mailboxes registered under the event's topic.
//
// Registration slices are replaced, never mutated in place, so Publish can
// deliver from a snapshot without holding the lock.
type Router struct {
	mu     sync.RWMutex
	subs   map[Topic][]*Mailbox
	loops  map[*Mailbox]struct{}
	closed bool

	cfg    routerConfig
	logger zerolog.Logger
	stats  counters

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRouter creates an empty router.
func NewRouter(opts ...Option) *Router {
	cfg := defaultRouterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx, cancel := context.WithCancel(cfg.baseCtx)
	return &Router{
		subs:   make(map[Topic][]*Mailbox),
		loops:  make(map[*Mailbox]struct{}),
		cfg:    cfg,
		logger: cfg.logger.With().Str("component", "event.router").Logger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// register appends mb to topic's registrations. Duplicates are kept.
// Callers hold r.mu.
func (r *Router) register(topic Topic, mb *Mailbox) {
	cur := r.subs[topic]
	next := make([]*Mailbox, len(cur), len(cur)+1)
	copy(next, cur)
	r.subs[topic] = append(next, mb)
}

// deregister removes the oldest registration of mb under topic.
func (r *Router) deregister(topic Topic, mb *Mailbox) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.subs[topic]
	for i, m := range cur {
		if m != mb {
			continue
		}
		if len(cur) == 1 {
			delete(r.subs, topic)
			return
		}
		next := make([]*Mailbox, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		r.subs[topic] = append(next, cur[i+1:]...)
		return
	}
}

// deregisterAll drops every registration under topic.
func (r *Router) deregisterAll(topic Topic) {
	r.mu.Lock()
	delete(r.subs, topic)
	r.mu.Unlock()
}

// purge removes mb from every topic. It reports whether anything was removed.
func (r *Router) purge(mb *Mailbox) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.purgeLocked(mb)
}

// purgeLocked is purge for callers holding r.mu.
func (r *Router) purgeLocked(mb *Mailbox) bool {
	removed := false
	for topic, cur := range r.subs {
		var next []*Mailbox
		for _, m := range cur {
			if m == mb {
				removed = true
				continue
			}
			next = append(next, m)
		}
		switch {
		case len(next) == len(cur):
		case len(next) == 0:
			delete(r.subs, topic)
		default:
			r.subs[topic] = next
		}
	}
	return removed
}

// Publish delivers e once per registration of its topic at the moment of
// the call. It waits while a target mailbox is full and returns once every
// target accepted the event or was found closed. Closed mailboxes are pruned.
//
// Publish returns ctx.Err() if ctx ends while a delivery is still waiting,
// and ErrRouterClosed after Close. No subscribers is not an error.
func (r *Router) Publish(ctx context.Context, e Event) error {
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return ErrRouterClosed
	}
	targets := r.subs[e.Topic]
	r.mu.RUnlock()

	r.stats.published.Add(1)
	if len(targets) == 0 {
		return nil
	}

	var pending []*Mailbox
	for _, mb := range targets {
		ok, err := mb.TryPut(e)
		switch {
		case err != nil:
			r.drop(mb, e)
		case ok:
			r.stats.delivered.Add(1)
		default:
			pending = append(pending, mb)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	r.logger.Debug().
		Str("topic", string(e.Topic)).
		Int("waiting", len(pending)).
		Msg("mailboxes full, waiting for space")

	var g errgroup.Group
	for _, mb := range pending {
		g.Go(func() error {
			err := mb.Put(ctx, e)
			switch {
			case err == nil:
				r.stats.delivered.Add(1)
				return nil
			case errors.Is(err, ErrMailboxClosed):
				r.drop(mb, e)
				return nil
			default:
				return err
			}
		})
	}
	return g.Wait()
}

func (r *Router) drop(mb *Mailbox, e Event) {
	r.stats.dropped.Add(1)
	if r.purge(mb) {
		r.logger.Debug().
			Str("mailbox", mb.ID()).
			Str("topic", string(e.Topic)).
			Msg("pruned closed mailbox")
	}
}

// Topics returns the topics with at least one registration, sorted.
func (r *Router) Topics() []Topic {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := make([]Topic, 0, len(r.subs))
	for t := range r.subs {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i] < topics[j] })
	return topics
}

// Registrations returns the number of registrations under topic,
// counting duplicates.
func (r *Router) Registrations(topic Topic) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[topic])
}

// Stats returns a snapshot of the router counters.
func (r *Router) Stats() Stats {
	s := r.stats.snapshot()
	r.mu.RLock()
	s.Topics = len(r.subs)
	for _, mbs := range r.subs {
		s.Registrations += len(mbs)
	}
	r.mu.RUnlock()
	return s
}

// Close stops accepting publishes, closes every mailbox whose processing
// loop this router started and waits for those loops to drain. If ctx ends
// first, the handler context is cancelled and ctx.Err() is returned.
// Calling Close again returns ErrRouterClosed.
func (r *Router) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRouterClosed
	}
	r.closed = true
	mailboxes := make([]*Mailbox, 0, len(r.loops))
	for mb := range r.loops {
		mailboxes = append(mailboxes, mb)
	}
	r.mu.Unlock()

	r.logger.Debug().Int("loops", len(mailboxes)).Msg("closing router")
	for _, mb := range mailboxes {
		mb.Close()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		r.logger.Warn().Msg("router close timed out, cancelled handler context")
		return ctx.Err()
	}
}
