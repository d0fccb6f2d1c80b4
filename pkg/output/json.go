package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/vulntor/relay/pkg/event"
)

// Record is the JSON form of an event. Payload is omitted for events
// emitted without data and encoded as null for a nil payload.
type Record struct {
	Topic   event.Topic     `json:"topic"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewRecord converts e to its JSON form.
func NewRecord(e event.Event) (Record, error) {
	rec := Record{Topic: e.Topic}
	if !e.HasData() {
		return rec, nil
	}
	raw, err := json.Marshal(e.Payload)
	if err != nil {
		return rec, fmt.Errorf("encode payload of %q: %w", e.Topic, err)
	}
	rec.Payload = raw
	return rec, nil
}

// Event converts the record back into an event. A record without a payload
// field yields an event without data.
func (r Record) Event() (event.Event, error) {
	if r.Payload == nil {
		return event.New(r.Topic, event.NoData), nil
	}
	var payload any
	if err := json.Unmarshal(r.Payload, &payload); err != nil {
		return event.Event{}, fmt.Errorf("decode payload of %q: %w", r.Topic, err)
	}
	return event.New(r.Topic, payload), nil
}

// JSONLinesHandler writes every event as one JSON object per line.
func JSONLinesHandler(w io.Writer) event.Handler {
	var mu sync.Mutex
	enc := json.NewEncoder(w)
	return func(_ context.Context, e event.Event) error {
		rec, err := NewRecord(e)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		return enc.Encode(rec)
	}
}
