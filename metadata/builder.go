package metadata

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/xraph/relay/filter"
	"github.com/xraph/relay/message"
)

// RouteOption configures one route registration. Options that do not
// apply to the route's kind are ignored.
type RouteOption func(*routeConfig)

type routeConfig struct {
	desc   *Descriptor
	action string
	object string
}

// WithPublic marks the route as requiring no authenticated principal.
func WithPublic() RouteOption {
	return func(rc *routeConfig) { rc.desc.Auth.Public = true }
}

// WithRoles lists role names, any one of which satisfies the route's
// auth requirement.
func WithRoles(roles ...string) RouteOption {
	return func(rc *routeConfig) { rc.desc.Auth.Roles = roles }
}

// WithActions sets the glob pattern an event's action must match for
// this target to be invoked. Default is match-all.
func WithActions(pattern string) RouteOption {
	return func(rc *routeConfig) { rc.action = pattern }
}

// WithObjects sets the glob pattern an event's object must match for
// this target to be invoked. Default is match-all.
func WithObjects(pattern string) RouteOption {
	return func(rc *routeConfig) { rc.object = pattern }
}

// WithEventAdapter installs a custom invocation wrapper for an event
// target.
func WithEventAdapter(a EventAdapter) RouteOption {
	return func(rc *routeConfig) { rc.desc.EventAdapter = a }
}

// WithContentType sets the declared response content type of an HTTP
// route. Use message.RawResponse for handlers that build their own
// complete response.
func WithContentType(value string) RouteOption {
	return func(rc *routeConfig) { rc.desc.ContentType.Value = value }
}

// WithDomainModel narrows an HTTP route to requests whose content type
// declares the given domain model.
func WithDomainModel(model string) RouteOption {
	return func(rc *routeConfig) { rc.desc.ContentType.DomainModel = model }
}

// WithStatus sets the status code wrapped responses carry. Default 200.
func WithStatus(code int) RouteOption {
	return func(rc *routeConfig) { rc.desc.StatusCode = code }
}

// WithBinders sets the argument binders evaluated in order against the
// security context and the request to build the handler's positional
// arguments.
func WithBinders(binders ...Binder) RouteOption {
	return func(rc *routeConfig) { rc.desc.Binders = binders }
}

// WithHTTPAdapter installs a custom invocation wrapper for an HTTP
// route, replacing binder-driven argument construction.
func WithHTTPAdapter(a HTTPAdapter) RouteOption {
	return func(rc *routeConfig) { rc.desc.HTTPAdapter = a }
}

// Builder accumulates route registrations and produces an immutable
// Table. Registration order of event targets is preserved. Errors are
// collected and reported together by Build.
type Builder struct {
	remote  map[remoteKey]*Descriptor
	events  map[eventKey][]*EventTarget
	http    map[httpKey]*Descriptor
	aliases map[string]string
	errs    []error
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		remote:  make(map[remoteKey]*Descriptor),
		events:  make(map[eventKey][]*EventTarget),
		http:    make(map[httpKey]*Descriptor),
		aliases: make(map[string]string),
	}
}

// Alias maps a deployment-specific resource name onto the name event
// routes were registered under.
func (b *Builder) Alias(resource, alias string) *Builder {
	b.aliases[resource] = alias
	return b
}

// Aliases registers a whole alias map, typically Config.ResourceAliases.
func (b *Builder) Aliases(aliases map[string]string) *Builder {
	for resource, alias := range aliases {
		b.aliases[resource] = alias
	}
	return b
}

func (b *Builder) apply(d *Descriptor, opts []RouteOption) *routeConfig {
	rc := &routeConfig{desc: d}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Remote registers a synchronous call route for service.method.
func (b *Builder) Remote(service, method string, h Handler, opts ...RouteOption) *Builder {
	if h == nil {
		b.errs = append(b.errs, fmt.Errorf("metadata: remote %s.%s: nil handler", service, method))
		return b
	}
	d := &Descriptor{Kind: KindRemote, Service: service, Method: method, Handler: h}
	b.apply(d, opts)

	key := remoteKey{service: service, method: method}
	if _, dup := b.remote[key]; dup {
		b.errs = append(b.errs, fmt.Errorf("metadata: remote %s.%s registered twice", service, method))
		return b
	}
	b.remote[key] = d
	return b
}

// Event registers service.method as a fan-out target for events from
// source on resource. Multiple targets may share one (source, resource)
// key; they are invoked in registration order.
func (b *Builder) Event(source, resource, service, method string, h Handler, opts ...RouteOption) *Builder {
	if h == nil {
		b.errs = append(b.errs, fmt.Errorf("metadata: event %s %s -> %s.%s: nil handler", source, resource, service, method))
		return b
	}
	d := &Descriptor{Kind: KindEvent, Service: service, Method: method, Handler: h}
	rc := b.apply(d, opts)

	key := eventKey{source: source, resource: resource}
	b.events[key] = append(b.events[key], &EventTarget{
		Descriptor: d,
		Action:     filter.Compile(rc.action),
		Object:     filter.Compile(rc.object),
	})
	return b
}

// HTTP registers service.method as the handler for httpMethod on
// resource. WithDomainModel narrows the route to payloads declaring that
// domain model, letting two handlers share a verb and path.
func (b *Builder) HTTP(httpMethod, resource, service, method string, h Handler, opts ...RouteOption) *Builder {
	if h == nil {
		b.errs = append(b.errs, fmt.Errorf("metadata: http %s %s -> %s.%s: nil handler", httpMethod, resource, service, method))
		return b
	}
	d := &Descriptor{
		Kind:        KindHTTP,
		Service:     service,
		Method:      method,
		Handler:     h,
		ContentType: message.ContentType{Value: "application/json"},
		StatusCode:  http.StatusOK,
	}
	b.apply(d, opts)

	key := httpKey{method: httpMethod, resource: resource, domainModel: d.ContentType.DomainModel}
	if _, dup := b.http[key]; dup {
		b.errs = append(b.errs, fmt.Errorf("metadata: http %s %s (domain model %q) registered twice", httpMethod, resource, d.ContentType.DomainModel))
		return b
	}
	b.http[key] = d
	return b
}

// Build finalizes the table. It fails if any registration was invalid.
func (b *Builder) Build() (*Table, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	return &Table{
		remote:  b.remote,
		events:  b.events,
		http:    b.http,
		aliases: b.aliases,
	}, nil
}
