package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vulntor/relay/pkg/event"
)

func TestNewRecord(t *testing.T) {
	rec, err := NewRecord(event.New("click", map[string]int{"x": 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1}`, string(rec.Payload))

	rec, err = NewRecord(event.New("ready", event.NoData))
	require.NoError(t, err)
	assert.Nil(t, rec.Payload)

	_, err = NewRecord(event.New("bad", make(chan int)))
	assert.Error(t, err)
}

func TestRecord_Event(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		hasData  bool
		expected any
	}{
		{"object payload", `{"topic":"click","payload":{"x":1}}`, true, map[string]any{"x": float64(1)}},
		{"missing payload", `{"topic":"ready"}`, false, event.NoData},
		{"null payload", `{"topic":"reset","payload":null}`, true, nil},
		{"number payload", `{"topic":"tick","payload":3}`, true, float64(3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec Record
			require.NoError(t, json.Unmarshal([]byte(tt.line), &rec))

			e, err := rec.Event()
			require.NoError(t, err)
			assert.Equal(t, tt.hasData, e.HasData())
			assert.Equal(t, tt.expected, e.Payload)
		})
	}
}

func TestJSONLinesHandler(t *testing.T) {
	var buf bytes.Buffer
	h := JSONLinesHandler(&buf)

	require.NoError(t, h(context.Background(), event.New("click", map[string]int{"x": 1})))
	require.NoError(t, h(context.Background(), event.New("ready", event.NoData)))
	require.NoError(t, h(context.Background(), event.New("reset", nil)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"topic":"click","payload":{"x":1}}`, lines[0])
	assert.JSONEq(t, `{"topic":"ready"}`, lines[1])
	assert.JSONEq(t, `{"topic":"reset","payload":null}`, lines[2])
}

func TestPayloadText(t *testing.T) {
	assert.Equal(t, "(no data)", PayloadText(event.New("t", event.NoData)))
	assert.Equal(t, "null", PayloadText(event.New("t", nil)))
	assert.Equal(t, "42", PayloadText(event.New("t", 42)))
	assert.Equal(t, "1.5", PayloadText(event.New("t", 1.5)))
	assert.Equal(t, "hello", PayloadText(event.New("t", "hello")))
	assert.Equal(t, "true", PayloadText(event.New("t", true)))
	assert.Equal(t, `{"x":1}`, PayloadText(event.New("t", map[string]any{"x": 1})))
	assert.Equal(t, `[1,"a"]`, PayloadText(event.New("t", []any{1, "a"})))
}

func TestStyledHandler_Plain(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	h := styledHandler(&buf, false, func() time.Time { return at })

	require.NoError(t, h(context.Background(), event.New("tick", 3)))
	require.NoError(t, h(context.Background(), event.New("ready", event.NoData)))

	assert.Equal(t, "15:04:05 tick 3\n15:04:05 ready (no data)\n", buf.String())
}

func TestFormatLine_ColorKeepsText(t *testing.T) {
	line := FormatLine(event.New("click", "left"), time.Now(), true)
	assert.Contains(t, line, "click")
	assert.Contains(t, line, "left")
}

func TestFormatLine_CutsLongPayload(t *testing.T) {
	long := strings.Repeat("x", MaxPayloadWidth*2)
	line := FormatLine(event.New("blob", long), time.Time{}, false)
	assert.Equal(t, "00:00:00 blob "+strings.Repeat("x", MaxPayloadWidth-3)+"...", line)

	line = FormatLine(event.New("multi", "a\nb"), time.Time{}, false)
	assert.Equal(t, "00:00:00 multi a b", line)
}

func TestTopicColor_Stable(t *testing.T) {
	assert.Equal(t, topicColor("click"), topicColor("click"))
}

func TestAttach_OneMailboxForAllTopics(t *testing.T) {
	r := event.NewRouter()
	em := event.NewEmitter(r)

	var buf bytes.Buffer
	mb := Attach(r, JSONLinesHandler(&buf), "a", "b")
	require.NotNil(t, mb)
	assert.Equal(t, 1, r.Registrations("a"))
	assert.Equal(t, 1, r.Registrations("b"))
	assert.Equal(t, int64(1), r.Stats().ActiveLoops)

	em.Emit("a", 1)
	em.Emit("b", 2)
	em.Emit("c", 3)
	require.NoError(t, r.Close(context.Background()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"topic":"a","payload":1}`, lines[0])
	assert.JSONEq(t, `{"topic":"b","payload":2}`, lines[1])

	assert.Nil(t, Attach(event.NewRouter(), JSONLinesHandler(&buf)))
}
