// Package metrics holds constants and utilities for instrumenting
// elasticsearch-charm with Prometheus metrics.
package metrics

const (
	// LabelMethod is the Prometheus label name for HTTP method.
	LabelMethod = "method"

	// LabelStatusCode is the Prometheus label name for HTTP status codes.
	LabelStatusCode = "code"

	// LabelStatus is the Prometheus label name for the status of a process
	// such as "success" or "error".
	LabelStatus = "status"

	// LabelEvent is used by InstrumentHTTP() to describe the different stages of
	// an HTTP connection (DNS resolution, TLS handshake, etc).
	LabelEvent = "event"

	// LabelHook is the Prometheus label name for Juju hook names.
	LabelHook = "hook"
)

// Values of LabelStatus.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)
