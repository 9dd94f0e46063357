package message

// Status is the overall outcome of an event fan-out.
type Status string

const (
	// StatusOK means at least one invocation succeeded and none failed.
	StatusOK Status = "OK"
	// StatusFailed means at least one invocation failed somewhere.
	StatusFailed Status = "FAILED"
	// StatusNop means no registered target matched the event at all.
	StatusNop Status = "NOP"
)

// EventRequest is an inbound fan-out notification. One request can reach
// multiple registered targets, and within each target every record is
// processed in list order.
type EventRequest struct {
	Source   string `json:"source"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Object   string `json:"object"`
	Records  []any  `json:"records"`

	// Record is the record currently being processed, set by the
	// dispatcher on each fan-out iteration.
	Record any `json:"record,omitempty"`

	// Application, Service and Method are populated by the dispatcher
	// during route resolution, never by the caller.
	Application string `json:"application,omitempty"`
	Service     string `json:"service,omitempty"`
	Method      string `json:"method,omitempty"`
}

// EventReturn is the outcome of one handler invocation within a fan-out.
// An empty Error marks success.
type EventReturn struct {
	Service string `json:"service"`
	Method  string `json:"method"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data"`
}

// Failed reports whether this return carries an error.
func (r EventReturn) Failed() bool { return r.Error != "" }

// EventResult aggregates the outcomes of an event fan-out, one return
// entry per (target, record) in dispatch order.
type EventResult struct {
	Status   Status        `json:"status"`
	Source   string        `json:"source"`
	Action   string        `json:"action"`
	Resource string        `json:"resource"`
	Object   string        `json:"object"`
	Returns  []EventReturn `json:"returns"`
}

// NewEventResult seeds a NOP result for the given request.
func NewEventResult(req *EventRequest) *EventResult {
	return &EventResult{
		Status:   StatusNop,
		Source:   req.Source,
		Action:   req.Action,
		Resource: req.Resource,
		Object:   req.Object,
		Returns:  []EventReturn{},
	}
}

// Append records one invocation outcome and folds it into the overall
// status: any failure anywhere marks the result FAILED; otherwise any
// success lifts it to OK.
func (r *EventResult) Append(ret EventReturn) {
	r.Returns = append(r.Returns, ret)
	if ret.Failed() {
		r.Status = StatusFailed
	} else if r.Status != StatusFailed {
		r.Status = StatusOK
	}
}
