package dispatch

import (
	"log/slog"

	"github.com/xraph/relay/metadata"
	"github.com/xraph/relay/middleware"
)

// Option configures a Container.
type Option func(*Container) error

// WithTable sets the routing table. Required.
func WithTable(t *metadata.Table) Option {
	return func(c *Container) error {
		c.table = t
		return nil
	}
}

// WithSecurity sets the security provider. Required.
func WithSecurity(p SecurityProvider) Option {
	return func(c *Container) error {
		c.security = p
		return nil
	}
}

// WithLogger sets the structured logger for the container.
func WithLogger(l *slog.Logger) Option {
	return func(c *Container) error {
		c.logger = l
		return nil
	}
}

// WithService registers a service instance under id. Registration order
// defines lifecycle hook order.
func WithService(id string, svc any) Option {
	return func(c *Container) error {
		return c.services.Provide(id, svc)
	}
}

// WithMiddleware appends middleware around handler invocation, inside
// the built-in panic recovery.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(c *Container) error {
		c.userMW = append(c.userMW, mws...)
		return nil
	}
}
