package form

import "errors"

// Sentinel errors returned by Controller.OnSubmit alongside the Outcome.
var (
	ErrInvalidEmail  = errors.New("email is not a valid Gmail address")
	ErrRejected      = errors.New("subscription rejected by endpoint")
	ErrRequestFailed = errors.New("subscription request failed")
	ErrBusy          = errors.New("a submission is already in flight")
	ErrClosed        = errors.New("form is closed")
)
