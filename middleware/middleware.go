package middleware

import (
	"context"

	"github.com/xraph/relay/id"
	"github.com/xraph/relay/metadata"
)

// Invocation describes the handler call flowing through the chain.
type Invocation struct {
	// ID is the per-request identifier.
	ID id.ID

	// Kind is the request kind being dispatched.
	Kind metadata.Kind

	// Service and Method name the resolved handler.
	Service string
	Method  string
}

// Handler is the terminal function that invokes the resolved method.
type Handler func(ctx context.Context) (any, error)

// Middleware wraps a Handler with cross-cutting logic. It receives the
// current context, the invocation being dispatched, and the next handler
// to call. Middleware MUST call next to continue the chain (unless
// short-circuiting on error).
type Middleware func(ctx context.Context, inv *Invocation, next Handler) (any, error)

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(logging, recover) executes as:
//
//	logging → recover → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, inv *Invocation, next Handler) (any, error) {
		// Build the chain from the end backwards.
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) (any, error) {
				return mw(ctx, inv, prev)
			}
		}
		return h(ctx)
	}
}
