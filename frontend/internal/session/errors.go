package session

import (
	"errors"

	"github.com/microsmart/portal/frontend/internal/apiclient"
)

const (
	LabelRegister      = "Registration failed"
	LabelLogin         = "Login failed"
	LabelLogout        = "Logout failed"
	LabelUpdateProfile = "Failed to update profile"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// Error is a labelled failure of a controller operation. Message is the
// backend's text when it supplied one, otherwise the label itself.
type Error struct {
	Label   string
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func wrap(label string, err error) *Error {
	msg := apiclient.BackendMessage(err)
	if msg == "" {
		msg = label
	}
	return &Error{Label: label, Message: msg, Err: err}
}
