package event

import (
	"context"

	"github.com/rs/zerolog"
)

// Option configures a Router.
type Option func(*routerConfig)

type routerConfig struct {
	logger      zerolog.Logger
	onError     ErrorHandler
	mailboxSize int
	baseCtx     context.Context
}

func defaultRouterConfig() routerConfig {
	return routerConfig{
		logger:      zerolog.Nop(),
		mailboxSize: DefaultMailboxSize,
		baseCtx:     context.Background(),
	}
}

// WithLogger sets the logger used by the router and its processing loops.
func WithLogger(l zerolog.Logger) Option {
	return func(c *routerConfig) {
		c.logger = l
	}
}

// WithErrorHandler registers a callback for handler errors and panics.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *routerConfig) {
		c.onError = h
	}
}

// WithMailboxSize sets the capacity of mailboxes created by Subscribe.
func WithMailboxSize(size int) Option {
	return func(c *routerConfig) {
		if size > 0 {
			c.mailboxSize = size
		}
	}
}

// WithBaseContext sets the parent of the context handed to handlers.
// It is cancelled when Router.Close gives up waiting.
func WithBaseContext(ctx context.Context) Option {
	return func(c *routerConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}
