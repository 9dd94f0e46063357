// Package static provides a fixed-policy security provider for
// development and tests: remote and event triggers are trusted
// in-process callers, and HTTP requests are checked against an optional
// shared API key.
package static

import (
	"context"
	"errors"

	"github.com/xraph/relay/auth"
	"github.com/xraph/relay/dispatch"
	"github.com/xraph/relay/message"
	"github.com/xraph/relay/metadata"
)

var _ dispatch.SecurityProvider = (*Provider)(nil)

// APIKeyHeader is the request header carrying the shared key.
const APIKeyHeader = "X-Api-Key"

// ErrBadKey is returned when the shared API key does not match.
var ErrBadKey = errors.New("static: invalid api key")

// Provider authenticates every request against an optional shared API
// key. An empty key allows everything.
type Provider struct {
	key       string
	principal string
}

// New returns a Provider accepting the given shared key. An empty key
// allows all requests under the "anonymous" principal.
func New(key string) *Provider {
	return &Provider{key: key, principal: "anonymous"}
}

// WithPrincipal sets the principal name stamped on every context.
func (p *Provider) WithPrincipal(name string) *Provider {
	p.principal = name
	return p
}

func (p *Provider) context() *auth.Context {
	return &auth.Context{Principal: p.principal}
}

// RemoteAuth trusts remote calls: they only arrive from peers that
// already hold the instance's application identifier.
func (p *Provider) RemoteAuth(_ context.Context, _ *message.RemoteRequest, _ *metadata.Descriptor) (*auth.Context, error) {
	return p.context(), nil
}

// EventAuth trusts event notifications from the owning process.
func (p *Provider) EventAuth(_ context.Context, _ *message.EventRequest, _ *metadata.Descriptor) (*auth.Context, error) {
	return p.context(), nil
}

// HTTPAuth checks the shared API key unless the route is public or no
// key is configured.
func (p *Provider) HTTPAuth(_ context.Context, req *message.HTTPRequest, md *metadata.Descriptor) (*auth.Context, error) {
	if p.key == "" || md.Auth.Public {
		return p.context(), nil
	}
	if req.Headers[APIKeyHeader] != p.key {
		return nil, ErrBadKey
	}
	return p.context(), nil
}
