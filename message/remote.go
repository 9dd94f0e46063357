// Package message defines the wire-level request, response, and result
// entities the dispatcher accepts and returns. The types are plain data;
// the dispatch package owns all behavior around them.
package message

// RemoteRequest is a synchronous call addressed to one service method.
// Args are applied to the handler positionally and verbatim; argument
// validation is the handler's concern.
type RemoteRequest struct {
	Application string `json:"application"`
	Service     string `json:"service"`
	Method      string `json:"method"`
	Args        []any  `json:"args"`
}
