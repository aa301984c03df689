package wire

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Writer encodes the wire codec primitives to an underlying byte
// stream. It is not safe for concurrent use. Callers must call Flush
// once a logical message is fully written.
type Writer struct {
	bw  *bufio.Writer
	buf [10]byte
}

// NewWriter wraps w for encoding.
func NewWriter(w io.Writer) *Writer {
	if bw, ok := w.(*bufio.Writer); ok {
		return &Writer{bw: bw}
	}
	return &Writer{bw: bufio.NewWriter(w)}
}

// Flush pushes any buffered bytes to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("wire: flush: %w", err)
	}
	return nil
}

// PutUvarint encodes an unsigned LEB128 varint, at most 10 bytes.
func (w *Writer) PutUvarint(x uint64) error {
	n := binary.PutUvarint(w.buf[:], x)
	if _, err := w.bw.Write(w.buf[:n]); err != nil {
		return fmt.Errorf("wire: write varint: %w", err)
	}
	return nil
}

// PutBool writes a single byte: 1 for true, 0 for false.
func (w *Writer) PutBool(v bool) error {
	if v {
		return w.PutByte(1)
	}
	return w.PutByte(0)
}

// PutByte writes a single raw byte.
func (w *Writer) PutByte(b byte) error {
	if err := w.bw.WriteByte(b); err != nil {
		return fmt.Errorf("wire: write byte: %w", err)
	}
	return nil
}

// PutUint8 writes an unsigned 8-bit integer.
func (w *Writer) PutUint8(v uint8) error { return w.PutByte(v) }

// PutInt8 writes a signed 8-bit integer.
func (w *Writer) PutInt8(v int8) error { return w.PutByte(byte(v)) }

// PutUint16 writes a little-endian unsigned 16-bit integer.
func (w *Writer) PutUint16(v uint16) error {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	if _, err := w.bw.Write(w.buf[:2]); err != nil {
		return fmt.Errorf("wire: write uint16: %w", err)
	}
	return nil
}

// PutInt16 writes a little-endian signed 16-bit integer.
func (w *Writer) PutInt16(v int16) error { return w.PutUint16(uint16(v)) }

// PutUint32 writes a little-endian unsigned 32-bit integer.
func (w *Writer) PutUint32(v uint32) error {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	if _, err := w.bw.Write(w.buf[:4]); err != nil {
		return fmt.Errorf("wire: write uint32: %w", err)
	}
	return nil
}

// PutInt32 writes a little-endian signed 32-bit integer.
func (w *Writer) PutInt32(v int32) error { return w.PutUint32(uint32(v)) }

// PutUint64 writes a little-endian unsigned 64-bit integer.
func (w *Writer) PutUint64(v uint64) error {
	binary.LittleEndian.PutUint64(w.buf[:8], v)
	if _, err := w.bw.Write(w.buf[:8]); err != nil {
		return fmt.Errorf("wire: write uint64: %w", err)
	}
	return nil
}

// PutInt64 writes a little-endian signed 64-bit integer.
func (w *Writer) PutInt64(v int64) error { return w.PutUint64(uint64(v)) }

// PutFloat32 writes an IEEE-754 single-precision float, little-endian.
func (w *Writer) PutFloat32(v float32) error { return w.PutUint32(math.Float32bits(v)) }

// PutFloat64 writes an IEEE-754 double-precision float, little-endian.
func (w *Writer) PutFloat64(v float64) error { return w.PutUint64(math.Float64bits(v)) }

// PutFixed writes raw bytes verbatim (FixedString padding and other
// width rules are the caller's responsibility; this layer moves bytes
// as given).
func (w *Writer) PutFixed(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if _, err := w.bw.Write(b); err != nil {
		return fmt.Errorf("wire: write fixed bytes: %w", err)
	}
	return nil
}

// PutBytes writes a varint length prefix followed by the raw bytes.
func (w *Writer) PutBytes(b []byte) error {
	if err := w.PutUvarint(uint64(len(b))); err != nil {
		return fmt.Errorf("wire: write bytes length: %w", err)
	}
	return w.PutFixed(b)
}

// PutString writes a length-prefixed string.
func (w *Writer) PutString(s string) error {
	return w.PutBytes([]byte(s))
}
