// pkg/core/app.go

// Package core is the composition root of relay. AppManager builds the
// event router and its emitter from configuration, owns lifecycle hooks and
// publishes lifecycle events on the router.
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vulntor/relay/pkg/config"
	"github.com/vulntor/relay/pkg/event"
	"github.com/vulntor/relay/pkg/hook"
	"github.com/vulntor/relay/pkg/version"
)

// Lifecycle topics published by AppManager.
const (
	TopicAppStarted    event.Topic = "app.started"
	TopicAppStopping   event.Topic = "app.stopping"
	TopicConfigChanged event.Topic = "config.changed"
)

// ErrNotInitialized is returned when the router is used before Init.
var ErrNotInitialized = errors.New("core: app manager not initialized")

// AppManager is the central controller for the application's lifecycle.
type AppManager struct {
	ctx    context.Context    // shared context for all subsystems
	cancel context.CancelFunc // cancellation for graceful shutdown

	HookManager *hook.Manager
	Router      *event.Router
	Emitter     *event.Emitter
	Version     version.Struct

	mu     sync.RWMutex
	cfg    config.Config
	logger zerolog.Logger

	once         sync.Once
	shutdownOnce sync.Once
	shutdownErr  error
}

// Option configures an AppManager.
type Option func(*AppManager)

// WithLogger sets the logger handed to the router and hooks.
func WithLogger(l zerolog.Logger) Option {
	return func(a *AppManager) { a.logger = l }
}

// NewAppManager creates an AppManager for cfg with an isolated context.
func NewAppManager(cfg config.Config, opts ...Option) *AppManager {
	ctx, cancel := context.WithCancel(context.Background())
	a := &AppManager{
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init builds the hook manager, the router and the default emitter.
// It is safe to call more than once.
func (a *AppManager) Init() error {
	a.once.Do(func() {
		cfg := a.Config()

		a.HookManager = hook.NewManager()
		a.HookManager.SetLogger(a.logger)

		a.Router = event.NewRouter(
			event.WithLogger(a.logger),
			event.WithMailboxSize(cfg.Router.MailboxSize),
			event.WithBaseContext(a.ctx),
		)
		a.Emitter = event.NewEmitter(a.Router)

		a.Version = version.Get()
	})
	return nil
}

// Start runs the start hooks and publishes TopicAppStarted with the
// version information as payload.
func (a *AppManager) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.HookManager.TriggerWait(a.ctx, hook.OnStart)
	if _, err := a.Emitter.EmitContext(a.ctx, TopicAppStarted, a.Version); err != nil {
		return fmt.Errorf("publish %s: %w", TopicAppStarted, err)
	}
	a.logger.Debug().Str("version", a.Version.Version).Msg("application started")
	return nil
}

// Context returns the shared application context.
func (a *AppManager) Context() context.Context {
	return a.ctx
}

// Config returns the current configuration.
func (a *AppManager) Config() config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// ApplyConfig replaces the current configuration, runs the config change
// hooks and publishes TopicConfigChanged with cfg as payload. The mailbox
// size applies to subscriptions made after the router was built, so a new
// value takes effect on restart.
func (a *AppManager) ApplyConfig(cfg config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()

	if a.Router == nil {
		return
	}
	a.HookManager.TriggerWait(a.ctx, hook.OnConfigChange)
	if _, err := a.Emitter.EmitContext(a.ctx, TopicConfigChanged, cfg); err != nil {
		a.logger.Warn().Err(err).Msg("config change not published")
	}
}

// WatchConfig reloads the configuration file of m on change and applies it
// until Shutdown. It returns config.ErrNoConfigFile when m was loaded
// without a file.
func (a *AppManager) WatchConfig(m *config.Manager) error {
	w, err := config.NewWatcher(m, a.logger, a.ApplyConfig)
	if err != nil {
		return err
	}
	go func() {
		if err := w.Start(a.ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn().Err(err).Msg("config watcher stopped")
		}
	}()
	return nil
}

// Shutdown publishes TopicAppStopping, runs the shutdown hooks and closes
// the router. The whole sequence is bounded by router.shutdown_timeout, so a
// stuck subscriber cannot block it. Later calls return the first result.
func (a *AppManager) Shutdown() error {
	a.shutdownOnce.Do(func() {
		defer a.cancel()
		if a.Router == nil {
			return
		}

		timeout := a.Config().Router.ShutdownTimeout
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if _, err := a.Emitter.EmitContext(ctx, TopicAppStopping, event.NoData); err != nil {
			a.logger.Warn().Err(err).Msg("app stopping not published")
		}
		a.HookManager.TriggerWait(ctx, hook.OnShutdown)

		if err := a.Router.Close(ctx); err != nil {
			a.shutdownErr = fmt.Errorf("close router: %w", err)
			a.logger.Warn().Err(err).Dur("timeout", timeout).Msg("subscribers did not drain in time")
			return
		}
		a.logger.Debug().Msg("application stopped")
	})
	return a.shutdownErr
}
