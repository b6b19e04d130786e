package errors

import "net/http"

// ErrorWithStatusCode carries the status a handler should answer with.
// Any other error is answered with 500.
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func BadRequest(msg string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusBadRequest}
}

func TooManyRequests(msg string) *ErrorWithStatusCode {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusTooManyRequests}
}
