package rollup

// RequestType identifies the exchange a host request belongs to.
type RequestType string

const (
	// RequestAdvance executes one order batch and advances the machine state.
	RequestAdvance RequestType = "advance_state"
	// RequestInspect reads the current engine status; no state is touched.
	RequestInspect RequestType = "inspect_state"
)

// Request is the standard carrier for requests entering the adapter. It
// mirrors the host's request/response exchange so one envelope covers both
// the batch path and the status path.
type Request struct {
	// Type identifies the payload type for routing.
	Type RequestType `json:"request_type"`

	// Data carries the request body.
	Data RequestData `json:"data"`
}

// RequestData is the body of a host request. Payload holds the hex-encoded
// order batch for advance requests and is ignored for inspect requests.
type RequestData struct {
	Payload string `json:"payload"`

	// Metadata stores non-business context from the host (e.g. input index,
	// block number). The engine never reads it.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ResponseType identifies the outcome category of a handled request.
type ResponseType string

const (
	// ResponseNotice is the success envelope of an advance request.
	ResponseNotice ResponseType = "notice"
	// ResponseReport is the failure envelope; it carries a message, never
	// partial trades.
	ResponseReport ResponseType = "report"
	// ResponseStatus is the read-only answer to an inspect request.
	ResponseStatus ResponseType = "status"
)

// Response is the envelope handed back to the host.
type Response struct {
	Type    ResponseType `json:"type"`
	Payload string       `json:"payload,omitempty"` // hex trade list, notice only
	Message string       `json:"message,omitempty"` // human-readable, report only
	Status  *Status      `json:"status,omitempty"`  // inspect only
}
