package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitter_EmitWithoutSubscribers(t *testing.T) {
	r := newTestRouter(t)
	em := NewEmitter(r)

	e := em.Emit("nobody", 42)

	assert.Equal(t, New("nobody", 42), e)
	assert.Equal(t, r, em.Router())
	assert.Empty(t, r.Topics())
}

func TestEmitter_NotifyAndNilPayload(t *testing.T) {
	r := newTestRouter(t)
	em := NewEmitter(r)
	rec := &recorder{}
	r.Subscribe("t", rec.handle)

	none := em.Notify("t")
	null := em.Emit("t", nil)

	assert.False(t, none.HasData())
	assert.True(t, null.HasData())
	assert.Nil(t, null.Payload)
	assert.NotEqual(t, none, null)

	require.Eventually(t, func() bool { return rec.len() == 2 }, waitFor, time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.False(t, rec.events[0].HasData())
	assert.True(t, rec.events[1].HasData())
}

func TestEmitter_EmitContextAfterClose(t *testing.T) {
	r := NewRouter()
	em := NewEmitter(r)
	require.NoError(t, r.Close(context.Background()))

	e, err := em.EmitContext(context.Background(), "t", 1)
	assert.ErrorIs(t, err, ErrRouterClosed)
	assert.Equal(t, New("t", 1), e)

	// Emit swallows the error and still returns the event
	assert.Equal(t, New("t", 2), em.Emit("t", 2))
}

func TestEmitter_EmitContextGivesUpOnFullMailbox(t *testing.T) {
	r := newTestRouter(t, WithMailboxSize(1))
	em := NewEmitter(r)

	gate := make(chan struct{})
	defer close(gate)
	r.Subscribe("t", func(ctx context.Context, e Event) error {
		select {
		case <-gate:
		case <-ctx.Done():
		}
		return nil
	})

	em.Emit("t", 1) // taken by the blocked handler
	em.Emit("t", 2) // fills the mailbox

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := em.EmitContext(ctx, "t", 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "tick(3)", New("tick", 3).String())
	assert.Equal(t, "ready()", New("ready", NoData).String())
	assert.Equal(t, "t(<nil>)", New("t", nil).String())
}

func TestEvent_HasDataWithUncomparablePayload(t *testing.T) {
	assert.True(t, New("t", []int{1}).HasData())
	assert.True(t, New("t", map[string]int{}).HasData())
}
