// pkg/hook/manager.go
// Package hook provides named lifecycle hooks for the application core.
// Hooks run in their own goroutines; a panicking hook is logged and does
// not affect other hooks.
package hook

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

// Lifecycle hook names used by core.AppManager.
const (
	OnStart        = "onStart"
	OnShutdown     = "onShutdown"
	OnConfigChange = "onConfigChange"
)

// HookFunc represents a function that can be triggered by a hook event.
type HookFunc func(ctx context.Context)

// Manager stores and manages hooks for different named events.
type Manager struct {
	mu        sync.RWMutex
	hooks     map[string][]HookFunc
	triggered map[string]int
	logger    zerolog.Logger
}

// NewManager creates and returns a new hook manager.
func NewManager() *Manager {
	return &Manager{
		hooks:     make(map[string][]HookFunc),
		triggered: make(map[string]int),
		logger:    zerolog.Nop(),
	}
}

// SetLogger sets the logger used to report panicking hooks.
func (m *Manager) SetLogger(l zerolog.Logger) {
	m.mu.Lock()
	m.logger = l.With().Str("component", "hook").Logger()
	m.mu.Unlock()
}

// Register adds a hook function to a named event.
func (m *Manager) Register(event string, fn HookFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[event] = append(m.hooks[event], fn)
}

func (m *Manager) snapshot(event string) ([]HookFunc, zerolog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggered[event]++
	return m.hooks[event], m.logger
}

// Trigger starts every hook registered to event and returns immediately.
func (m *Manager) Trigger(ctx context.Context, event string) {
	fns, logger := m.snapshot(event)
	for _, fn := range fns {
		go run(ctx, logger, event, fn)
	}
}

// TriggerWait runs every hook registered to event concurrently and waits
// for all of them to return.
func (m *Manager) TriggerWait(ctx context.Context, event string) {
	fns, logger := m.snapshot(event)

	var wg sync.WaitGroup
	for _, fn := range fns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(ctx, logger, event, fn)
		}()
	}
	wg.Wait()
}

func run(ctx context.Context, logger zerolog.Logger, event string, fn HookFunc) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("hook", event).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("hook panicked")
		}
	}()
	fn(ctx)
}

// IsTriggered checks if a specific event has been triggered.
func (m *Manager) IsTriggered(event string) bool {
	return m.TriggerCount(event) > 0
}

// TriggerCount returns how many times event has been triggered.
func (m *Manager) TriggerCount(event string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.triggered[event]
}
