package newsletter

import "errors"

// Sentinel errors for the newsletter client.
var (
	// ErrRequest wraps every transport, read or decode failure.
	ErrRequest = errors.New("subscription request failed")

	// ErrCircuitOpen is returned (wrapped in ErrRequest) while the breaker is open.
	ErrCircuitOpen = errors.New("subscription endpoint circuit open")
)
