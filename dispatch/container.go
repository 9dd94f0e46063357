package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/xraph/relay"
	"github.com/xraph/relay/auth"
	"github.com/xraph/relay/lifecycle"
	"github.com/xraph/relay/metadata"
	"github.com/xraph/relay/middleware"
	"github.com/xraph/relay/service"
	"github.com/xraph/relay/state"
)

// Container dispatches requests for a single application instance. It
// admits one request at a time through its state gate and runs every
// registered service's lifecycle hooks around each handler invocation.
type Container struct {
	application string
	gate        *state.Gate
	table       *metadata.Table
	services    *service.Registry
	security    SecurityProvider
	hooks       *lifecycle.Coordinator
	logger      *slog.Logger
	userMW      []middleware.Middleware
	mw          middleware.Middleware
}

// New builds a Container from configuration and options. A routing table
// and a security provider are required; everything else has defaults.
// The returned container is Pending until Prepare is called.
func New(cfg relay.Config, opts ...Option) (*Container, error) {
	c := &Container{
		application: cfg.Application,
		gate:        state.NewGate(),
		services:    service.NewRegistry(),
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.Level(),
		})),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.table == nil {
		return nil, errors.New("dispatch: routing table is required")
	}
	if c.security == nil {
		return nil, errors.New("dispatch: security provider is required")
	}

	c.hooks = lifecycle.New(c.logger)
	for _, name := range c.services.Names() {
		c.hooks.Register(name, c.services.MustGet(name))
	}

	chain := make([]middleware.Middleware, 0, len(c.userMW)+1)
	chain = append(chain, middleware.Recover(c.logger))
	chain = append(chain, c.userMW...)
	c.mw = middleware.Chain(chain...)
	return c, nil
}

// Prepare transitions the container from Pending to Ready exactly once.
// Calling it on a prepared container fails without disturbing the state.
func (c *Container) Prepare(ctx context.Context) error {
	if !c.gate.Prepare() {
		return relay.ErrNotPending
	}
	c.logger.InfoContext(ctx, "container ready",
		slog.String("application", c.application),
		slog.Int("routes", c.table.Len()),
		slog.Int("services", c.services.Len()),
	)
	return nil
}

// State returns the current admission state.
func (c *Container) State() state.State { return c.gate.Current() }

// Service returns the instance registered under id.
func (c *Container) Service(id string) (any, bool) {
	return c.services.Get(id)
}

// admit reserves the gate for one request, or reports why it cannot run.
func (c *Container) admit(op string) error {
	if c.gate.Reserve() {
		return nil
	}
	return &relay.StateError{Op: op, State: c.gate.Current()}
}

// occupy moves the held slot from Reserved to Busy. The calling request
// owns the reservation, so a failed swap is a dispatcher bug.
func (c *Container) occupy() {
	if !c.gate.Occupy() {
		panic("dispatch: occupy without reservation")
	}
}

// releaseAll runs every service's release hook. Failures are logged by
// the coordinator and never surfaced to the request's caller.
func (c *Container) releaseAll(ctx context.Context, ac *auth.Context) {
	if errs := c.hooks.Release(ctx, ac); len(errs) != 0 {
		c.logger.WarnContext(ctx, "service release incomplete",
			slog.Int("failed", len(errs)),
			slog.String("error", errs.Error()),
		)
	}
}
