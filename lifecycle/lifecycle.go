// Package lifecycle runs per-service activation and release hooks around
// every request, regardless of which service actually handles it.
//
// Each hook is a separate interface so services opt in only to the
// phases they care about.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xraph/relay/auth"
)

// Activator is the optional hook a service implements to run before each
// request. A failing activation aborts the request.
type Activator interface {
	Activate(ctx context.Context, ac *auth.Context) error
}

// Releaser is the optional hook a service implements to run after each
// request. Release failures never abort teardown of remaining services.
type Releaser interface {
	Release(ctx context.Context, ac *auth.Context) error
}

// Named entry types pair a hook implementation with the service name
// captured at registration time.
type activatorEntry struct {
	name string
	hook Activator
}

type releaserEntry struct {
	name string
	hook Releaser
}

// Coordinator iterates every registered service's hooks around a single
// request. Hooks are type-cached at registration so Activate and Release
// touch only services that implement them, in registration order.
type Coordinator struct {
	activators []activatorEntry
	releasers  []releaserEntry
	logger     *slog.Logger
}

// New creates a Coordinator. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{logger: logger}
}

// Register adds a service's optional hooks. Call order defines hook
// iteration order.
func (c *Coordinator) Register(name string, svc any) {
	if a, ok := svc.(Activator); ok {
		c.activators = append(c.activators, activatorEntry{name: name, hook: a})
	}
	if r, ok := svc.(Releaser); ok {
		c.releasers = append(c.releasers, releaserEntry{name: name, hook: r})
	}
}

// Activate runs every activation hook sequentially. The first failure is
// logged and returned, and the request's handler must not run; services
// activated so far are torn down by the caller's Release.
func (c *Coordinator) Activate(ctx context.Context, ac *auth.Context) error {
	for _, e := range c.activators {
		if err := e.hook.Activate(ctx, ac); err != nil {
			c.logger.Error("service activation failed",
				slog.String("service", e.name),
				slog.String("error", err.Error()),
			)
			return fmt.Errorf("activate %s: %w", e.name, err)
		}
	}
	return nil
}

// ReleaseError records one service's failed release hook.
type ReleaseError struct {
	Service string
	Err     error
}

func (e ReleaseError) Error() string {
	return fmt.Sprintf("release %s: %v", e.Service, e.Err)
}

func (e ReleaseError) Unwrap() error { return e.Err }

// ReleaseErrors aggregates release failures. The dispatcher observes it
// for logging and severity decisions but never surfaces it to callers.
type ReleaseErrors []ReleaseError

func (e ReleaseErrors) Error() string {
	msgs := make([]string, len(e))
	for i, re := range e {
		msgs[i] = re.Error()
	}
	return strings.Join(msgs, "; ")
}

// Release runs every release hook sequentially. Failures are logged,
// collected, and never stop the remaining hooks: the container must
// always come back to a releasable state even when one service is stuck.
func (c *Coordinator) Release(ctx context.Context, ac *auth.Context) ReleaseErrors {
	var errs ReleaseErrors
	for _, e := range c.releasers {
		if err := e.hook.Release(ctx, ac); err != nil {
			c.logger.Error("service release failed",
				slog.String("service", e.name),
				slog.String("error", err.Error()),
			)
			errs = append(errs, ReleaseError{Service: e.name, Err: err})
		}
	}
	return errs
}
