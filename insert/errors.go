package insert

import "errors"

// ErrSchemaMismatch is returned when a row field cannot be matched to
// a sample-block column, or its inferred type is incompatible with
// the sample's column type, per spec.md §4.7.
type ErrSchemaMismatch struct {
	Reason string
}

func (e *ErrSchemaMismatch) Error() string { return "insert: schema mismatch: " + e.Reason }

var ErrAlreadyClosed = errors.New("insert: terminator already sent")
