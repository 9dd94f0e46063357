// Package dispatch implements the per-instance request dispatcher.
//
// A Container owns one admission state machine and turns three inbound
// trigger kinds (remote calls, event notifications, and HTTP requests)
// into uniform handler invocations wrapped by a strict lifecycle:
// authenticate, activate every registered service, invoke, release every
// registered service. The admission gate is a single-flight mechanism,
// not a queue: a request arriving while another occupies the instance
// fails fast with a state error.
//
// Wire one up with a routing table, a security provider, and services:
//
//	c, err := dispatch.New(cfg,
//	    dispatch.WithTable(table),
//	    dispatch.WithSecurity(provider),
//	    dispatch.WithService("billing", billingService),
//	)
//	if err := c.Prepare(ctx); err != nil { ... }
package dispatch
