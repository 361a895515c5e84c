// Package health probes the health of the Elasticsearch cluster
// the local node belongs to.
package health

import (
	"github.com/tidwall/gjson" // JSON field extraction.
)

// Status is the health status of an Elasticsearch cluster.
type Status string

// Cluster health statuses.
const (
	StatusGreen   Status = "green"
	StatusYellow  Status = "yellow"
	StatusRed     Status = "red"
	StatusUnknown Status = "unknown"
)

// ParseStatus extracts the status field from a cluster health
// response body.
// If the body can't be parsed it returns StatusUnknown and a *ParseError.
func ParseStatus(body []byte) (Status, error) {
	if !gjson.ValidBytes(body) {
		return StatusUnknown, &ParseError{Body: body, Reason: "invalid JSON"}
	}
	v := gjson.GetBytes(body, "status")
	if v.Type != gjson.String {
		return StatusUnknown, &ParseError{Body: body, Reason: "missing status field"}
	}
	switch s := Status(v.String()); s {
	case StatusGreen, StatusYellow, StatusRed:
		return s, nil
	default:
		return StatusUnknown, &ParseError{Body: body, Reason: "unrecognized status " + v.Raw}
	}
}
