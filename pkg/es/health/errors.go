package health

import (
	"fmt"
)

// UnreachableError is returned when the health endpoint
// can't be reached or returns a non-2xx status code.
type UnreachableError struct {
	// HTTP status code of the response, or 0 if there
	// wasn't one.
	StatusCode int

	Err error
}

func (e *UnreachableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("health endpoint returned status code %d: %s", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("health endpoint unreachable: %s", e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

// ParseError is returned when the health response body
// doesn't hold a recognizable status.
type ParseError struct {
	Body   []byte
	Reason string
}

func (e *ParseError) Error() string {
	const maxBody = 128
	body := e.Body
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return fmt.Sprintf("%s in health response %q", e.Reason, body)
}
