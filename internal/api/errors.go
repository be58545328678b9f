package api

import (
	"errors"
	"fmt"
)

// ErrHistoryNotFound is returned when a thread has no stored history on
// the backend. Callers surface it as a load error, not a fatal one.
var ErrHistoryNotFound = errors.New("thread history not found")

// NetworkError reports a transport failure or a non-success HTTP status
// from the reasoning backend.
type NetworkError struct {
	// Op names the failed operation (create_thread, fetch_messages, send_message).
	Op string

	// StatusCode is the HTTP status, or 0 for transport failures.
	StatusCode int

	// Err is the underlying error, if any.
	Err error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: network error", e.Op)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is (or wraps) a NetworkError.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
