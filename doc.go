// Package relay provides a per-instance request dispatcher for application
// containers. It turns three heterogeneous inbound triggers (synchronous
// remote calls, fan-out event notifications, and HTTP requests) into a
// uniform invocation of a registered service method, wrapped by a strict
// lifecycle (authenticate, activate all services, invoke, release all
// services) and a single-flight admission state machine.
//
// Relay is designed as a library, not a service. Import it, build a routing
// table, register services, and dispatch requests:
//
//	table, err := metadata.NewBuilder().
//	    Remote("billing", "charge", chargeHandler).
//	    Build()
//
//	c, err := dispatch.New(cfg,
//	    dispatch.WithTable(table),
//	    dispatch.WithSecurity(static.New("")),
//	    dispatch.WithService("billing", billingService),
//	)
//	if err := c.Prepare(ctx); err != nil { ... }
//
//	result, err := c.RemoteRequest(ctx, req)
//
// # Architecture
//
// The root package holds configuration and the error vocabulary. Each
// concern lives in its own package: admission state (state), routing
// metadata (metadata), lifecycle hooks (lifecycle), security contexts
// (auth), middleware around handler invocation (middleware), and the
// dispatcher itself (dispatch).
//
// All request IDs use TypeID: type-prefixed, K-sortable, UUIDv7-based
// identifiers.
package relay
