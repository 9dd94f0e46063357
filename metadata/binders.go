package metadata

import (
	"fmt"

	"github.com/xraph/relay/auth"
	"github.com/xraph/relay/message"
)

// BindPath returns a binder extracting one path parameter. A missing
// parameter is a binding error.
func BindPath(name string) Binder {
	return func(_ *auth.Context, req *message.HTTPRequest) (any, error) {
		v, ok := req.PathParameters[name]
		if !ok {
			return nil, fmt.Errorf("metadata: missing path parameter %q", name)
		}
		return v, nil
	}
}

// BindQuery returns a binder extracting one query string parameter. A
// missing parameter binds the empty string.
func BindQuery(name string) Binder {
	return func(_ *auth.Context, req *message.HTTPRequest) (any, error) {
		return req.QueryStringParameters[name], nil
	}
}

// BindHeader returns a binder extracting one request header. A missing
// header binds the empty string.
func BindHeader(name string) Binder {
	return func(_ *auth.Context, req *message.HTTPRequest) (any, error) {
		return req.Headers[name], nil
	}
}

// BindBody returns a binder passing the decoded request body.
func BindBody() Binder {
	return func(_ *auth.Context, req *message.HTTPRequest) (any, error) {
		return req.Body, nil
	}
}

// BindContext returns a binder passing the security context itself.
func BindContext() Binder {
	return func(ac *auth.Context, _ *message.HTTPRequest) (any, error) {
		return ac, nil
	}
}
