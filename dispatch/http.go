package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/relay"
	"github.com/xraph/relay/auth"
	"github.com/xraph/relay/id"
	"github.com/xraph/relay/message"
	"github.com/xraph/relay/metadata"
	"github.com/xraph/relay/middleware"
)

// TokenHeader carries a renewed authentication token back to the caller
// when the security provider re-issued one during the request.
const TokenHeader = "Token"

// HTTPRequest dispatches one HTTP-shaped request. Routes are resolved by
// verb, resource, and the request content type's domain model; handler
// results are wrapped into the route's declared response envelope unless
// the route is registered raw, in which case the handler must return a
// complete *message.HTTPResponse itself.
func (c *Container) HTTPRequest(ctx context.Context, req *message.HTTPRequest) (*message.HTTPResponse, error) {
	if err := c.admit("http request"); err != nil {
		return nil, err
	}
	defer c.gate.Release()

	md, ok := c.table.HTTP(req.HTTPMethod, req.Resource, req.ContentType.DomainModel)
	if !ok {
		c.logger.ErrorContext(ctx, "http route resolution failed",
			slog.String("http_method", req.HTTPMethod),
			slog.String("resource", req.Resource),
			slog.String("domain_model", req.ContentType.DomainModel),
		)
		return nil, &relay.NotFoundError{Kind: "route", Key: req.HTTPMethod + " " + req.Resource}
	}
	c.occupy()

	req.Application = c.application
	req.Service = md.Service
	req.Method = md.Method

	ac, err := c.security.HTTPAuth(ctx, req, md)
	if err != nil {
		c.logger.ErrorContext(ctx, "http authentication failed",
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
		ID:      id.NewHTTPID(),
		Kind:    metadata.KindHTTP,
		Service: md.Service,
		Method:  md.Method,
	}
	start := time.Now()
	res, err := c.mw(ctx, inv, func(ctx context.Context) (any, error) {
		return c.invokeHTTP(ctx, md, ac, req)
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "http handler failed",
			slog.String("request_id", inv.ID.String()),
			slog.String("service", md.Service),
			slog.String("method", md.Method),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", relay.ErrInternal, err)
	}
	c.logger.DebugContext(ctx, "http request complete",
		slog.String("request_id", inv.ID.String()),
		slog.String("service", md.Service),
		slog.String("method", md.Method),
		slog.Duration("elapsed", time.Since(start)),
	)

	resp, err := c.normalize(md, res)
	if err != nil {
		c.logger.ErrorContext(ctx, "http response normalization failed",
			slog.String("service", md.Service),
			slog.String("method", md.Method),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if ac.TokenRenewed {
		if resp.Headers == nil {
			resp.Headers = make(map[string]string)
		}
		resp.Headers[TokenHeader] = ac.Token
	}
	return resp, nil
}

// invokeHTTP calls the handler through the route's adapter, or builds
// the positional argument list from its binders.
func (c *Container) invokeHTTP(ctx context.Context, md *metadata.Descriptor, ac *auth.Context, req *message.HTTPRequest) (any, error) {
	if md.HTTPAdapter != nil {
		return md.HTTPAdapter(ctx, md.Handler, ac, req, req.PathParameters, req.QueryStringParameters)
	}
	args := make([]any, 0, len(md.Binders))
	for _, bind := range md.Binders {
		arg, err := bind(ac, req)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return md.Handler(ctx, ac, args...)
}

// normalize turns a handler result into the response envelope. Raw
// routes pass their result through untouched; everything else gets the
// route's registered status code and content type.
func (c *Container) normalize(md *metadata.Descriptor, res any) (*message.HTTPResponse, error) {
	if md.ContentType.IsRaw() {
		resp, ok := res.(*message.HTTPResponse)
		if !ok {
			return nil, fmt.Errorf("%w: raw route %s.%s returned %T, want *message.HTTPResponse",
				relay.ErrInternal, md.Service, md.Method, res)
		}
		return resp, nil
	}
	return &message.HTTPResponse{
		StatusCode:  md.StatusCode,
		Body:        res,
		ContentType: md.ContentType.Value,
	}, nil
}
