// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package output renders events from the router for humans and machines.
// Sinks are ordinary event handlers, so a console or a pipe is just
// another subscriber.
package output

import (
	"github.com/vulntor/relay/pkg/event"
)

// Attach subscribes one mailbox to every topic and routes its events to h.
// Events therefore reach h in emission order across all topics. It returns
// nil when no topic is given.
func Attach(r *event.Router, h event.Handler, topics ...event.Topic) *event.Mailbox {
	var mb *event.Mailbox
	for _, topic := range topics {
		if mb == nil {
			mb = r.Subscribe(topic, h)
			continue
		}
		r.SubscribeMailbox(mb, topic, h)
	}
	return mb
}
