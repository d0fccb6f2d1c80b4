package event

import "sync/atomic"

// Stats is a point-in-time snapshot of router counters.
type Stats struct {
	Published     uint64 `json:"published"`
	Delivered     uint64 `json:"delivered"`
	Dropped       uint64 `json:"dropped"`
	Handled       uint64 `json:"handled"`
	HandlerErrors uint64 `json:"handler_errors"`
	Panics        uint64 `json:"panics"`
	ActiveLoops   int64  `json:"active_loops"`
	Topics        int    `json:"topics"`
	Registrations int    `json:"registrations"`
}

type counters struct {
	published     atomic.Uint64
	delivered     atomic.Uint64
	dropped       atomic.Uint64
	handled       atomic.Uint64
	handlerErrors atomic.Uint64
	panics        atomic.Uint64
	activeLoops   atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Published:     c.published.Load(),
		Delivered:     c.delivered.Load(),
		Dropped:       c.dropped.Load(),
		Handled:       c.handled.Load(),
		HandlerErrors: c.handlerErrors.Load(),
		Panics:        c.panics.Load(),
		ActiveLoops:   c.activeLoops.Load(),
	}
}
