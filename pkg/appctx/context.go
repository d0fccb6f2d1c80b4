// Package appctx carries process-wide collaborators through a
// context.Context, so cobra command handlers can reach them without
// package-level singletons.
package appctx

import (
	"context"

	"github.com/vulntor/relay/pkg/config"
	"github.com/vulntor/relay/pkg/core"
)

type key string

const (
	configKey key = "relay.config.manager"
	appKey    key = "relay.app"
)

func with(ctx context.Context, k key, v any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, k, v)
}

func get[T any](ctx context.Context, k key) (T, bool) {
	var zero T
	if ctx == nil {
		return zero, false
	}
	v, ok := ctx.Value(k).(T)
	return v, ok
}

// WithConfig stores the shared config manager on ctx.
func WithConfig(ctx context.Context, manager *config.Manager) context.Context {
	return with(ctx, configKey, manager)
}

// Config retrieves the shared config manager from ctx.
func Config(ctx context.Context) (*config.Manager, bool) {
	mgr, ok := get[*config.Manager](ctx, configKey)
	return mgr, ok && mgr != nil
}

// WithApp stores the application manager on ctx.
func WithApp(ctx context.Context, app *core.AppManager) context.Context {
	return with(ctx, appKey, app)
}

// App retrieves the application manager from ctx.
func App(ctx context.Context) (*core.AppManager, bool) {
	app, ok := get[*core.AppManager](ctx, appKey)
	return app, ok && app != nil
}
