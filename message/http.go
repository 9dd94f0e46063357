package message

// RawResponse is the content-type sentinel marking a route whose handler
// builds its own complete HTTPResponse. The dispatcher passes such
// results through without wrapping.
const RawResponse = "raw"

// ContentType is a route's declared response content type plus the
// optional domain model used for content-type route disambiguation (two
// handlers on the same verb and path distinguished by payload shape).
type ContentType struct {
	Value       string `json:"value"`
	DomainModel string `json:"domainModel,omitempty"`
}

// IsRaw reports whether the handler's return value is already a complete
// response.
func (c ContentType) IsRaw() bool { return c.Value == RawResponse }

// HTTPRequest is an inbound HTTP-shaped request, already decoded by
// whatever transport fronts the container.
type HTTPRequest struct {
	HTTPMethod            string            `json:"httpMethod"`
	Resource              string            `json:"resource"`
	ContentType           ContentType       `json:"contentType"`
	Headers               map[string]string `json:"headers,omitempty"`
	PathParameters        map[string]string `json:"pathParameters,omitempty"`
	QueryStringParameters map[string]string `json:"queryStringParameters,omitempty"`
	Body                  any               `json:"body,omitempty"`

	// Application, Service and Method are populated by the dispatcher
	// during route resolution, never by the caller.
	Application string `json:"application,omitempty"`
	Service     string `json:"service,omitempty"`
	Method      string `json:"method,omitempty"`
}

// HTTPResponse is the normalized response returned to the transport.
type HTTPResponse struct {
	StatusCode  int               `json:"statusCode"`
	Body        any               `json:"body"`
	ContentType string            `json:"contentType,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}
