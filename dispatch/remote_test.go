package dispatch_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/xraph/relay"
	"github.com/xraph/relay/auth"
	"github.com/xraph/relay/dispatch"
	"github.com/xraph/relay/message"
	"github.com/xraph/relay/metadata"
	"github.com/xraph/relay/middleware"
	"github.com/xraph/relay/state"
)

func remoteReq(service, method string, args ...any) *message.RemoteRequest {
	return &message.RemoteRequest{
		Application: "app",
		Service:     service,
		Method:      method,
		Args:        args,
	}
}

func TestRemoteRequest_Success(t *testing.T) {
	table := buildTable(t, metadata.NewBuilder().
		Remote("users", "Get", echoHandler))
	svc := &hookSvc{}
	c := newContainer(t, table, &stubSecurity{},
		dispatch.WithService("users", svc))

	res, err := c.RemoteRequest(context.Background(), remoteReq("users", "Get", "u-1", 7))
	if err != nil {
		t.Fatalf("RemoteRequest: %v", err)
	}
	if want := []any{"u-1", 7}; !reflect.DeepEqual(res, want) {
		t.Fatalf("result = %#v, want %#v", res, want)
	}
	if svc.activated != 1 || svc.released != 1 {
		t.Fatalf("hooks = %d/%d activations/releases, want 1/1", svc.activated, svc.released)
	}
	if got := c.State(); got != state.Ready {
		t.Fatalf("State() = %v, want ready", got)
	}
}

func TestRemoteRequest_ResolutionErrors(t *testing.T) {
	table := buildTable(t, metadata.NewBuilder().
		Remote("users", "Get", echoHandler))
	svc := &hookSvc{}
	c := newContainer(t, table, &stubSecurity{},
		dispatch.WithService("users", svc))

	tests := []struct {
		name string
		req  *message.RemoteRequest
		kind string
	}{
		{
			name: "wrong application checked before anything else",
			req: &message.RemoteRequest{
				Application: "other", Service: "users", Method: "Get",
			},
			kind: "application",
		},
		{
			name: "unknown service",
			req:  remoteReq("orders", "Get"),
			kind: "service",
		},
		{
			name: "unknown method",
			req:  remoteReq("users", "Delete"),
			kind: "method",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.RemoteRequest(context.Background(), tt.req)
			if !errors.Is(err, relay.ErrNotFound) {
				t.Fatalf("err = %v, want ErrNotFound", err)
			}
			var nf *relay.NotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("err is %T, want *relay.NotFoundError", err)
			}
			if nf.Kind != tt.kind {
				t.Fatalf("NotFoundError.Kind = %q, want %q", nf.Kind, tt.kind)
			}
			if got := c.State(); got != state.Ready {
				t.Fatalf("State() = %v, want ready", got)
			}
		})
	}
	if svc.activated != 0 {
		t.Fatalf("activations = %d, want 0 on resolution failures", svc.activated)
	}
}

func TestRemoteRequest_AuthFailure(t *testing.T) {
	table := buildTable(t, metadata.NewBuilder().
		Remote("users", "Get", echoHandler))
	svc := &hookSvc{}
	c := newContainer(t, table, &stubSecurity{err: errors.New("nope")},
		dispatch.WithService("users", svc))

	_, err := c.RemoteRequest(context.Background(), remoteReq("users", "Get"))
	if !errors.Is(err, relay.ErrAuth) {
		t.Fatalf("err = %v, want ErrAuth", err)
	}
	if svc.activated != 0 || svc.released != 0 {
		t.Fatalf("hooks = %d/%d, want 0/0 on auth failure", svc.activated, svc.released)
	}
	if got := c.State(); got != state.Ready {
		t.Fatalf("State() = %v, want ready", got)
	}
}

func TestRemoteRequest_ActivationFailureSkipsHandler(t *testing.T) {
	called := false
	h := func(context.Context, *auth.Context, ...any) (any, error) {
		called = true
		return nil, nil
	}
	table := buildTable(t, metadata.NewBuilder().Remote("users", "Get", h))
	svc := &hookSvc{activateErr: errors.New("warmup failed")}
	c := newContainer(t, table, &stubSecurity{},
		dispatch.WithService("users", svc))

	_, err := c.RemoteRequest(context.Background(), remoteReq("users", "Get"))
	if !errors.Is(err, relay.ErrActivation) {
		t.Fatalf("err = %v, want ErrActivation", err)
	}
	if called {
		t.Fatal("handler ran after failed activation")
	}
	if svc.released != 1 {
		t.Fatalf("releases = %d, want 1 even after failed activation", svc.released)
	}
	if got := c.State(); got != state.Ready {
		t.Fatalf("State() = %v, want ready", got)
	}
}

func TestRemoteRequest_HandlerError(t *testing.T) {
	h := func(context.Context, *auth.Context, ...any) (any, error) {
		return nil, errors.New("boom")
	}
	table := buildTable(t, metadata.NewBuilder().Remote("users", "Get", h))
	svc := &hookSvc{}
	c := newContainer(t, table, &stubSecurity{},
		dispatch.WithService("users", svc))

	_, err := c.RemoteRequest(context.Background(), remoteReq("users", "Get"))
	if !errors.Is(err, relay.ErrInternal) {
		t.Fatalf("err = %v, want ErrInternal", err)
	}
	if svc.released != 1 {
		t.Fatalf("releases = %d, want 1", svc.released)
	}
	if got := c.State(); got != state.Ready {
		t.Fatalf("State() = %v, want ready", got)
	}
}

func TestRemoteRequest_HandlerPanicRecovered(t *testing.T) {
	h := func(context.Context, *auth.Context, ...any) (any, error) {
		panic("unexpected")
	}
	table := buildTable(t, metadata.NewBuilder().Remote("users", "Get", h))
	c := newContainer(t, table, &stubSecurity{},
		dispatch.WithService("users", &hookSvc{}))

	_, err := c.RemoteRequest(context.Background(), remoteReq("users", "Get"))
	if !errors.Is(err, relay.ErrInternal) {
		t.Fatalf("err = %v, want ErrInternal after panic", err)
	}
	if got := c.State(); got != state.Ready {
		t.Fatalf("State() = %v, want ready after panic", got)
	}
}

func TestRemoteRequest_ReleaseFailureInvisible(t *testing.T) {
	table := buildTable(t, metadata.NewBuilder().
		Remote("users", "Get", echoHandler))
	svc := &hookSvc{releaseErr: errors.New("cleanup failed")}
	c := newContainer(t, table, &stubSecurity{},
		dispatch.WithService("users", svc))

	res, err := c.RemoteRequest(context.Background(), remoteReq("users", "Get", "x"))
	if err != nil {
		t.Fatalf("RemoteRequest: %v", err)
	}
	if want := []any{"x"}; !reflect.DeepEqual(res, want) {
		t.Fatalf("result = %#v, want %#v", res, want)
	}
	if got := c.State(); got != state.Ready {
		t.Fatalf("State() = %v, want ready despite release failure", got)
	}
}

func TestRemoteRequest_FailuresAreLogged(t *testing.T) {
	h := func(context.Context, *auth.Context, ...any) (any, error) {
		return nil, errors.New("boom")
	}
	table := buildTable(t, metadata.NewBuilder().Remote("users", "Get", h))

	tests := []struct {
		name string
		sec  dispatch.SecurityProvider
		req  *message.RemoteRequest
		want string
	}{
		{
			name: "handler failure",
			sec:  &stubSecurity{},
			req:  remoteReq("users", "Get"),
			want: "remote handler failed",
		},
		{
			name: "resolution failure",
			sec:  &stubSecurity{},
			req:  remoteReq("users", "Delete"),
			want: "remote route resolution failed",
		},
		{
			name: "auth failure",
			sec:  &stubSecurity{err: errors.New("nope")},
			req:  remoteReq("users", "Get"),
			want: "remote authentication failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := newContainer(t, table, tt.sec,
				dispatch.WithService("users", &hookSvc{}),
				dispatch.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

			if _, err := c.RemoteRequest(context.Background(), tt.req); err == nil {
				t.Fatal("expected an error")
			}
			out := buf.String()
			if !strings.Contains(out, "level=ERROR") {
				t.Fatalf("log output carries no error record:\n%s", out)
			}
			if !strings.Contains(out, tt.want) {
				t.Fatalf("log output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestRemoteRequest_UserMiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) middleware.Middleware {
		return func(ctx context.Context, _ *middleware.Invocation, next middleware.Handler) (any, error) {
			order = append(order, name)
			return next(ctx)
		}
	}
	table := buildTable(t, metadata.NewBuilder().
		Remote("users", "Get", echoHandler))
	c := newContainer(t, table, &stubSecurity{},
		dispatch.WithService("users", &hookSvc{}),
		dispatch.WithMiddleware(mw("first"), mw("second")))

	if _, err := c.RemoteRequest(context.Background(), remoteReq("users", "Get")); err != nil {
		t.Fatalf("RemoteRequest: %v", err)
	}
	if want := []string{"first", "second"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("middleware order = %v, want %v", order, want)
	}
}
