package metadata

// Struct keys per request kind replace the composed route strings the
// dispatcher would otherwise concatenate per request, eliminating
// collision and escaping edge cases.
type remoteKey struct {
	service string
	method  string
}

type eventKey struct {
	source   string
	resource string
}

type httpKey struct {
	method      string
	resource    string
	domainModel string
}

// Table is the immutable routing table. Build one with a Builder; after
// Build it is only ever read.
type Table struct {
	remote  map[remoteKey]*Descriptor
	events  map[eventKey][]*EventTarget
	http    map[httpKey]*Descriptor
	aliases map[string]string
}

// Remote returns the descriptor answering the given service and method.
func (t *Table) Remote(service, method string) (*Descriptor, bool) {
	d, ok := t.remote[remoteKey{service: service, method: method}]
	return d, ok
}

// EventTargets returns the targets registered for source and resource,
// in registration order, falling back to the resource's configured alias
// when the direct key has no registrations.
func (t *Table) EventTargets(source, resource string) []*EventTarget {
	if targets, ok := t.events[eventKey{source: source, resource: resource}]; ok {
		return targets
	}
	alias, ok := t.aliases[resource]
	if !ok {
		return nil
	}
	return t.events[eventKey{source: source, resource: alias}]
}

// HTTP returns the descriptor answering the given verb and resource,
// narrowed by the request content type's domain model when present.
// There is no fallback from the domain-model key to the plain key.
func (t *Table) HTTP(method, resource, domainModel string) (*Descriptor, bool) {
	d, ok := t.http[httpKey{method: method, resource: resource, domainModel: domainModel}]
	return d, ok
}

// Len returns the number of registered routes across all kinds.
func (t *Table) Len() int {
	n := len(t.remote) + len(t.http)
	for _, targets := range t.events {
		n += len(targets)
	}
	return n
}
