// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package output

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cast"

	"github.com/vulntor/relay/pkg/event"
	"github.com/vulntor/relay/pkg/stringutil"
)

// Lipgloss styles for console output
var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")) // Gray

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	payloadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	// topics get a stable color from this palette
	topicPalette = []lipgloss.Color{"39", "10", "11", "13", "14", "208", "33", "170"}
)

// MaxPayloadWidth is the longest payload text FormatLine prints.
const MaxPayloadWidth = 240

// StyledHandler writes one human-readable line per event:
//
//	15:04:05 click {"x":1}
//
// With color enabled the topic is colored consistently per topic name.
func StyledHandler(w io.Writer, color bool) event.Handler {
	return styledHandler(w, color, time.Now)
}

func styledHandler(w io.Writer, color bool, now func() time.Time) event.Handler {
	var mu sync.Mutex
	return func(_ context.Context, e event.Event) error {
		line := FormatLine(e, now(), color)
		mu.Lock()
		defer mu.Unlock()
		_, err := io.WriteString(w, line+"\n")
		return err
	}
}

// FormatLine renders e as a single console line. Long or multi-line
// payloads are flattened and cut to MaxPayloadWidth.
func FormatLine(e event.Event, at time.Time, color bool) string {
	ts := at.Format("15:04:05")
	topic := string(e.Topic)
	payload := stringutil.Ellipsis(PayloadText(e), MaxPayloadWidth)

	if !color {
		return strings.Join([]string{ts, topic, payload}, " ")
	}

	style := lipgloss.NewStyle().Bold(true).Foreground(topicColor(e.Topic))
	body := payloadStyle.Render(payload)
	if !e.HasData() {
		body = noDataStyle.Render(payload)
	}
	return strings.Join([]string{timeStyle.Render(ts), style.Render(topic), body}, " ")
}

// PayloadText renders the payload of e as text. Scalars are printed as is,
// composite values as compact JSON.
func PayloadText(e event.Event) string {
	if !e.HasData() {
		return "(no data)"
	}
	if e.Payload == nil {
		return "null"
	}
	switch e.Payload.(type) {
	case map[string]any, []any:
	default:
		if s, err := cast.ToStringE(e.Payload); err == nil {
			return s
		}
	}
	if raw, err := json.Marshal(e.Payload); err == nil {
		return string(raw)
	}
	return fmt.Sprintf("%v", e.Payload)
}

func topicColor(t event.Topic) lipgloss.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(t))
	return topicPalette[h.Sum32()%uint32(len(topicPalette))]
}
