package session

import "errors"

var (
	ErrSessionBusy      = errors.New("session: busy with another query")
	ErrInvalidState     = errors.New("session: invalid state for this operation")
	ErrTimeout          = errors.New("session: timeout")
	ErrCancelled        = errors.New("session: cancelled")
	ErrConnectionClosed = errors.New("session: connection closed")
)

// ServerError wraps a decoded server exception chain. Code is the
// head frame's code, surfaced verbatim per spec.md §6.
type ServerError struct {
	Code    int32
	Name    string
	Message string
	Chain   []string
}

func (e *ServerError) Error() string { return e.Name + ": " + e.Message }
