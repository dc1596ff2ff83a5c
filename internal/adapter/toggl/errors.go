package toggl

import (
	"fmt"
	"net/http"
)

// Kind classifies a transport failure.
type Kind int

const (
	KindUnexpected Kind = iota
	KindTimeout
	KindHTTP
	KindConnection
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindHTTP:
		return "http"
	case KindConnection:
		return "connection"
	default:
		return "unexpected"
	}
}

// Error is the single failure type of the Toggl transport. Authentication
// failures are an HTTP Error with a 401 or 403 status, see IsAuth.
type Error struct {
	Kind       Kind
	StatusCode int // 0 unless a response was received
	Method     string
	Endpoint   string
	Body       string // truncated response body for HTTP errors
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("toggl: timeout communicating with Toggl API (%s %s): %v", e.Method, e.Endpoint, e.Err)
	case KindHTTP:
		return fmt.Sprintf("toggl: HTTP error from Toggl API (%s %s): %d %s",
			e.Method, e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
	case KindConnection:
		return fmt.Sprintf("toggl: error communicating with Toggl API (%s %s): %v", e.Method, e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("toggl: unexpected error in API request (%s %s): %v", e.Method, e.Endpoint, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsAuth reports whether Toggl rejected the credentials.
func (e *Error) IsAuth() bool {
	return e.Kind == KindHTTP && (e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}
