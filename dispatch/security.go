package dispatch

import (
	"context"

	"github.com/xraph/relay/auth"
	"github.com/xraph/relay/message"
	"github.com/xraph/relay/metadata"
)

// SecurityProvider authenticates each request kind against the resolved
// route and produces the per-request security context. Implementations
// live outside this package; auth/static and auth/jwt ship ready-made
// providers.
type SecurityProvider interface {
	RemoteAuth(ctx context.Context, req *message.RemoteRequest, md *metadata.Descriptor) (*auth.Context, error)
	EventAuth(ctx context.Context, req *message.EventRequest, md *metadata.Descriptor) (*auth.Context, error)
	HTTPAuth(ctx context.Context, req *message.HTTPRequest, md *metadata.Descriptor) (*auth.Context, error)
}
