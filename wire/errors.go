// Package wire implements the binary codec primitives of the native
// protocol: unsigned varints, fixed-width little-endian integers up to
// 256 bits, floats, booleans, and length-prefixed/fixed-width strings.
package wire

import "errors"

// Protocol-level decode errors. Callers match these with errors.Is;
// wrapping call sites should use fmt.Errorf("...: %w", err).
var (
	// ErrUnexpectedEOF is returned when the underlying reader runs out
	// of bytes before a value can be fully decoded.
	ErrUnexpectedEOF = errors.New("wire: unexpected eof")
	// ErrVarIntOverflow is returned when a LEB128 varint exceeds the
	// 10-byte limit for a 64-bit value.
	ErrVarIntOverflow = errors.New("wire: varint overflow")
)
