package dispatch

import (
	"context"
	"log/slog"

	"github.com/xraph/relay/id"
	"github.com/xraph/relay/message"
	"github.com/xraph/relay/metadata"
	"github.com/xraph/relay/middleware"
)

// EventRequest fans one notification out to every registered target
// whose filters accept it. Each matching target is authenticated,
// activated, invoked once per record, and released independently, so a
// failure in one target never blocks the others. When nothing matches
// the result is NOP with an empty return list; an event nobody listens
// to is not an error.
func (c *Container) EventRequest(ctx context.Context, req *message.EventRequest) (*message.EventResult, error) {
	if err := c.admit("event request"); err != nil {
		return nil, err
	}
	defer c.gate.Release()

	result := message.NewEventResult(req)
	var matched []*metadata.EventTarget
	for _, t := range c.table.EventTargets(req.Source, req.Resource) {
		if t.Matches(req.Action, req.Object) {
			matched = append(matched, t)
		}
	}
	c.occupy()
	if len(matched) == 0 {
		c.logger.DebugContext(ctx, "event matched no targets",
			slog.String("source", req.Source),
			slog.String("resource", req.Resource),
			slog.String("action", req.Action),
		)
		return result, nil
	}

	for _, t := range matched {
		c.dispatchTarget(ctx, req, t, result)
	}
	return result, nil
}

// dispatchTarget runs one target's full request cycle. Auth or
// activation failures become failed return entries rather than
// aborting the fan-out.
func (c *Container) dispatchTarget(ctx context.Context, req *message.EventRequest, t *metadata.EventTarget, result *message.EventResult) {
	md := t.Descriptor
	ac, err := c.security.EventAuth(ctx, req, md)
	if err != nil {
		c.logger.ErrorContext(ctx, "event target authentication failed",
			slog.String("service", md.Service),
			slog.String("method", md.Method),
			slog.String("error", err.Error()),
		)
		result.Append(message.EventReturn{
			Service: md.Service,
			Method:  md.Method,
			Error:   err.Error(),
		})
		return
	}

	defer c.releaseAll(ctx, ac)
	if err := c.hooks.Activate(ctx, ac); err != nil {
		result.Append(message.EventReturn{
			Service: md.Service,
			Method:  md.Method,
			Error:   err.Error(),
		})
		return
	}

	// A record-less event still invokes the target once.
	records := req.Records
	if len(records) == 0 {
		records = []any{nil}
	}
	for _, rec := range records {
		rr := *req
		rr.Application = c.application
		rr.Service = md.Service
		rr.Method = md.Method
		rr.Record = rec

		inv := &middleware.Invocation{
			ID:      id.NewEventID(),
			Kind:    metadata.KindEvent,
			Service: md.Service,
			Method:  md.Method,
		}
		res, err := c.mw(ctx, inv, func(ctx context.Context) (any, error) {
			if md.EventAdapter != nil {
				return md.EventAdapter(ctx, md.Handler, ac, &rr)
			}
			return md.Handler(ctx, ac, &rr)
		})
		ret := message.EventReturn{Service: md.Service, Method: md.Method, Data: res}
		if err != nil {
			c.logger.ErrorContext(ctx, "event handler failed",
				slog.String("request_id", inv.ID.String()),
				slog.String("service", md.Service),
				slog.String("method", md.Method),
				slog.String("error", err.Error()),
			)
			ret.Error = err.Error()
		}
		result.Append(ret)
	}
}
