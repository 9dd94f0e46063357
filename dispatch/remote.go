package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/relay"
	"github.com/xraph/relay/id"
	"github.com/xraph/relay/message"
	"github.com/xraph/relay/metadata"
	"github.com/xraph/relay/middleware"
)

// RemoteRequest dispatches one service-to-service call. The request must
// name this instance's application; any other application is rejected
// before the service is even looked up, so one instance never answers
// for another.
func (c *Container) RemoteRequest(ctx context.Context, req *message.RemoteRequest) (any, error) {
	if err := c.admit("remote request"); err != nil {
		return nil, err
	}
	defer c.gate.Release()

	md, err := c.resolveRemote(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "remote route resolution failed",
			slog.String("service", req.Service),
			slog.String("method", req.Method),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	c.occupy()

	ac, err := c.security.RemoteAuth(ctx, req, md)
	if err != nil {
		c.logger.ErrorContext(ctx, "remote authentication failed",
			slog.String("service", md.Service),
			slog.String("method", md.Method),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", relay.ErrAuth, err)
	}

	defer c.releaseAll(ctx, ac)
	if err := c.hooks.Activate(ctx, ac); err != nil {
		return nil, fmt.Errorf("%w: %w", relay.ErrActivation, err)
	}

	inv := &middleware.Invocation{
		ID:      id.NewRemoteID(),
		Kind:    metadata.KindRemote,
		Service: md.Service,
		Method:  md.Method,
	}
	start := time.Now()
	res, err := c.mw(ctx, inv, func(ctx context.Context) (any, error) {
		return md.Handler(ctx, ac, req.Args...)
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "remote handler failed",
			slog.String("request_id", inv.ID.String()),
			slog.String("service", md.Service),
			slog.String("method", md.Method),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", relay.ErrInternal, err)
	}
	c.logger.DebugContext(ctx, "remote request complete",
		slog.String("request_id", inv.ID.String()),
		slog.String("service", md.Service),
		slog.String("method", md.Method),
		slog.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (c *Container) resolveRemote(req *message.RemoteRequest) (*metadata.Descriptor, error) {
	if req.Application != c.application {
		return nil, &relay.NotFoundError{Kind: "application", Key: req.Application}
	}
	if _, ok := c.services.Get(req.Service); !ok {
		return nil, &relay.NotFoundError{Kind: "service", Key: req.Service}
	}
	md, ok := c.table.Remote(req.Service, req.Method)
	if !ok {
		return nil, &relay.NotFoundError{Kind: "method", Key: req.Service + "." + req.Method}
	}
	return md, nil
}
