package dashboard

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks failures reaching the remote data source.
	ErrTransport = errors.New("dashboard: transport error")
	// ErrParse marks payloads that could not be decoded into a series.
	ErrParse = errors.New("dashboard: parse error")
	// ErrRemoteStatus marks non-2xx upstream responses.
	ErrRemoteStatus = errors.New("dashboard: unexpected remote status")
	// ErrViewNotFound is returned for unknown or expired page views.
	ErrViewNotFound = errors.New("dashboard: view not found")
	// ErrWidgetNotFound is returned for widget ids that are not mounted in a view.
	ErrWidgetNotFound = errors.New("dashboard: widget not found")
	// ErrMissingLoader is returned when a definition has no loader factory.
	ErrMissingLoader = errors.New("dashboard: loader not configured")
)

// ParseError wraps a decode failure for a single payload field.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("dashboard: parse payload: %v", e.Err)
	}
	return fmt.Sprintf("dashboard: parse payload field %q: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// ErrorClass buckets an error into the transport/parse taxonomy used in logs.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrRemoteStatus):
		return "remote_status"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "transport"
	}
}
