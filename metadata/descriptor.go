// Package metadata holds the routing table mapping inbound requests to
// registered method descriptors. The table is built once at startup
// through the Builder registration API and is read-only afterwards.
package metadata

import (
	"context"

	"github.com/xraph/relay/auth"
	"github.com/xraph/relay/filter"
	"github.com/xraph/relay/message"
)

// Kind tags a descriptor with the request kind it answers.
type Kind int

const (
	KindRemote Kind = iota
	KindEvent
	KindHTTP
)

func (k Kind) String() string {
	switch k {
	case KindRemote:
		return "remote"
	case KindEvent:
		return "event"
	case KindHTTP:
		return "http"
	default:
		return "unknown"
	}
}

// Handler is a registered service method captured as a function value at
// registration time, so the dispatcher never reflects over object shape.
// Remote dispatch passes the request's positional arguments verbatim;
// event and HTTP dispatch build the argument list as the descriptor
// describes.
type Handler func(ctx context.Context, ac *auth.Context, args ...any) (any, error)

// Binder extracts one positional handler argument from an HTTP request.
// Binders are pure extraction functions resolved at registration time,
// never at request time.
type Binder func(ac *auth.Context, req *message.HTTPRequest) (any, error)

// HTTPAdapter replaces binder-driven argument construction for routes
// that need full control over how the handler is invoked.
type HTTPAdapter func(ctx context.Context, h Handler, ac *auth.Context, req *message.HTTPRequest, path, query map[string]string) (any, error)

// EventAdapter wraps handler invocation for one event target. It
// receives the bound handler, the per-target security context, and the
// request positioned on the current record.
type EventAdapter func(ctx context.Context, h Handler, ac *auth.Context, req *message.EventRequest) (any, error)

// Requirement describes a route's authentication requirements,
// interpreted by the security provider.
type Requirement struct {
	// Public marks the route as requiring no authenticated principal.
	Public bool

	// Roles lists role names, any one of which satisfies the
	// requirement. Empty means any authenticated principal.
	Roles []string
}

// Descriptor is the registration-time record of a service method plus
// its binding, adapter, content-type, and auth metadata.
type Descriptor struct {
	Kind    Kind
	Service string
	Method  string
	Handler Handler
	Auth    Requirement

	// HTTP routes only.
	ContentType message.ContentType
	StatusCode  int
	Binders     []Binder
	HTTPAdapter HTTPAdapter

	// Event targets only.
	EventAdapter EventAdapter
}

// EventTarget pairs an event descriptor with its action and object
// predicates, compiled once at registration.
type EventTarget struct {
	Descriptor *Descriptor
	Action     filter.Predicate
	Object     filter.Predicate
}

// Matches reports whether the target's filters accept the request's
// action and object.
func (t *EventTarget) Matches(action, object string) bool {
	return t.Action.Match(action) && t.Object.Match(object)
}
