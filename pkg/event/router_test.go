package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_RegisterKeepsDuplicates(t *testing.T) {
	r := newTestRouter(t)
	mb := NewMailbox(4)

	registerRaw(r, "a", mb)
	registerRaw(r, "a", mb)

	assert.Equal(t, 2, r.Registrations("a"))
	require.NoError(t, r.Publish(context.Background(), New("a", 1)))
	assert.Equal(t, 2, mb.Len(), "one copy per registration")
}

func TestRouter_DeregisterRemovesOldestOccurrence(t *testing.T) {
	r := newTestRouter(t)
	a, b := NewMailbox(1), NewMailbox(1)

	registerRaw(r, "t", a)
	registerRaw(r, "t", b)
	registerRaw(r, "t", a)

	r.deregister("t", a)
	assert.Equal(t, []*Mailbox{b, a}, registered(r, "t"))

	r.deregister("t", a)
	assert.Equal(t, []*Mailbox{b}, registered(r, "t"))

	r.deregister("t", a) // absent
	r.deregister("missing", a)
	assert.Equal(t, []*Mailbox{b}, registered(r, "t"))

	r.deregister("t", b)
	assert.Empty(t, r.Topics())
}

func TestRouter_DeregisterAll(t *testing.T) {
	r := newTestRouter(t)
	a, b := NewMailbox(1), NewMailbox(1)
	registerRaw(r, "t", a)
	registerRaw(r, "t", b)
	registerRaw(r, "u", a)

	r.deregisterAll("t")
	r.deregisterAll("t")

	assert.Equal(t, 0, r.Registrations("t"))
	assert.Equal(t, 1, r.Registrations("u"))
}

func TestRouter_SnapshotIsNotMutated(t *testing.T) {
	r := newTestRouter(t)
	a, b := NewMailbox(1), NewMailbox(1)
	registerRaw(r, "t", a)
	registerRaw(r, "t", b)

	snapshot := registered(r, "t")
	r.mu.RLock()
	live := r.subs["t"]
	r.mu.RUnlock()

	r.deregister("t", a)

	assert.Equal(t, snapshot, live, "published slice must not change under a reader")
	assert.Equal(t, []*Mailbox{b}, registered(r, "t"))
}

func TestRouter_PublishNoSubscribers(t *testing.T) {
	r := newTestRouter(t)

	require.NoError(t, r.Publish(context.Background(), New("nobody", 1)))

	s := r.Stats()
	assert.Equal(t, uint64(1), s.Published)
	assert.Equal(t, uint64(0), s.Delivered)
}

func TestRouter_PublishOnlyMatchingTopic(t *testing.T) {
	r := newTestRouter(t)
	a, b := NewMailbox(2), NewMailbox(2)
	registerRaw(r, "a", a)
	registerRaw(r, "b", b)

	require.NoError(t, r.Publish(context.Background(), New("a", "x")))

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 0, b.Len())
}

func TestRouter_PublishWaitsForSpace(t *testing.T) {
	r := newTestRouter(t)
	mb := NewMailbox(1)
	registerRaw(r, "t", mb)
	require.NoError(t, r.Publish(context.Background(), New("t", 1)))

	done := make(chan error, 1)
	go func() {
		done <- r.Publish(context.Background(), New("t", 2))
	}()

	select {
	case <-done:
		t.Fatal("publish to a full mailbox returned without waiting")
	case <-time.After(20 * time.Millisecond):
	}

	e, ok, err := mb.Take(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, e.Payload)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("publish still blocked after space was made")
	}

	e, _, _ = mb.Take(context.Background())
	assert.Equal(t, 2, e.Payload)
}

func TestRouter_FullMailboxDoesNotDelayOthers(t *testing.T) {
	r := newTestRouter(t)
	full, free := NewMailbox(1), NewMailbox(4)
	registerRaw(r, "t", full)
	registerRaw(r, "t", free)
	require.NoError(t, full.Put(context.Background(), New("t", 0)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Publish(ctx, New("t", 1))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, free.Len(), "free mailbox is served before waiting on the full one")
}

func TestRouter_PublishPrunesClosedMailbox(t *testing.T) {
	r := newTestRouter(t)
	closed, open := NewMailbox(1), NewMailbox(1)
	registerRaw(r, "a", closed)
	registerRaw(r, "b", closed)
	registerRaw(r, "a", open)
	closed.Close()

	require.NoError(t, r.Publish(context.Background(), New("a", 1)))

	assert.Equal(t, []*Mailbox{open}, registered(r, "a"))
	assert.Equal(t, 0, r.Registrations("b"))
	assert.Equal(t, uint64(1), r.Stats().Dropped)
	assert.Equal(t, uint64(1), r.Stats().Delivered)
}

func TestRouter_CloseTimeoutCancelsHandlers(t *testing.T) {
	r := NewRouter()
	started := make(chan struct{})
	r.Subscribe("t", func(ctx context.Context, e Event) error {
		close(started)
		<-ctx.Done()
		return nil
	})

	require.NoError(t, r.Publish(context.Background(), New("t", 1)))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Close(ctx), context.DeadlineExceeded)

	assert.Eventually(t, func() bool {
		return r.Stats().ActiveLoops == 0
	}, time.Second, 5*time.Millisecond)
}

func TestRouter_Topics(t *testing.T) {
	r := newTestRouter(t)
	noop := func(context.Context, Event) error { return nil }
	r.Subscribe("b", noop)
	r.Subscribe("a", noop)
	r.Subscribe("c", noop)

	assert.Equal(t, []Topic{"a", "b", "c"}, r.Topics())

	s := r.Stats()
	assert.Equal(t, 3, s.Topics)
	assert.Equal(t, 3, s.Registrations)
	assert.Equal(t, int64(3), s.ActiveLoops)
}

func TestRouter_CloseDrainsBufferedEvents(t *testing.T) {
	r := NewRouter(WithMailboxSize(16))
	em := NewEmitter(r)

	gate := make(chan struct{})
	var got []any
	r.Subscribe("t", func(_ context.Context, e Event) error {
		<-gate
		got = append(got, e.Payload)
		return nil
	})

	for i := 0; i < 10; i++ {
		em.Emit("t", i)
	}
	close(gate)

	require.NoError(t, r.Close(context.Background()))
	assert.Equal(t, []any{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
	assert.Equal(t, int64(0), r.Stats().ActiveLoops)
	assert.Empty(t, r.Topics())
}

func TestRouter_CloseTwice(t *testing.T) {
	r := NewRouter()
	require.NoError(t, r.Close(context.Background()))
	assert.ErrorIs(t, r.Close(context.Background()), ErrRouterClosed)
	assert.ErrorIs(t, r.Publish(context.Background(), New("t", nil)), ErrRouterClosed)
}

func TestRouter_CloseLeavesForeignMailboxesOpen(t *testing.T) {
	r := NewRouter()
	mb := NewMailbox(1)
	registerRaw(r, "t", mb)

	require.NoError(t, r.Close(context.Background()))
	assert.False(t, mb.Closed(), "router only closes mailboxes whose loops it started")
}
