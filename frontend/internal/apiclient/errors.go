package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies every failed backend call. The set is closed.
type Kind int

const (
	KindUnknown Kind = iota
	Unauthorized
	Forbidden
	NotFound
	ServerError
	NetworkUnavailable
	RequestSetupFailure
)

func (k Kind) String() string {
	switch k {
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case ServerError:
		return "server_error"
	case NetworkUnavailable:
		return "network_unavailable"
	case RequestSetupFailure:
		return "request_setup_failure"
	default:
		return "unknown"
	}
}

// Error is returned by every APIClient method when the call fails.
type Error struct {
	Kind       Kind
	StatusCode int    // 0 when no response was received
	Message    string // backend text from {error} or {message}, may be empty
	Err        error  // underlying transport/setup error, if any
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d", e.Kind, e.StatusCode)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the classification of err, or KindUnknown if err did not
// come from the API client.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// BackendMessage returns the backend-supplied error text carried by err, if any.
func BackendMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusUnauthorized:
		return Unauthorized
	case http.StatusForbidden:
		return Forbidden
	case http.StatusNotFound:
		return NotFound
	default:
		return ServerError
	}
}

// userMessage is the notification text shown for err.
func userMessage(e *Error) string {
	switch e.Kind {
	case NetworkUnavailable:
		return "Network error: the server is unreachable."
	case RequestSetupFailure:
		if e.Err != nil {
			return "Request error: " + e.Err.Error()
		}
		return "Request error"
	}
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case Forbidden:
		return "You do not have permission to perform this action."
	case NotFound:
		return "The requested resource was not found."
	default:
		return fmt.Sprintf("Server error (%d). Please try again later.", e.StatusCode)
	}
}
