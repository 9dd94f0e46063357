package relay

import "github.com/xraph/relay/id"

// ID is the per-request identifier type threaded through logs and traces.
type ID = id.ID

// Prefix identifies the request kind encoded in a TypeID.
type Prefix = id.Prefix
