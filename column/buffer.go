// Package column implements the typed, appendable column buffers that
// back a block.Block: one codec per chtype.Descriptor kind, each
// owning its own row storage and encode/decode logic per spec.md §4.3.
package column

import (
	"fmt"

	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/wire"
)

// Buffer is a typed, appendable column. A Block owns one Buffer per
// column; values are copied on Append, never shared with the caller's
// backing storage.
type Buffer interface {
	// Type returns the column's type descriptor.
	Type() *chtype.Descriptor
	// Len returns the number of rows currently held.
	Len() int
	// Append adds one row's value. v must be the Go type At returns
	// for this column's kind, or ErrTypeMismatch is returned.
	Append(v any) error
	// At returns the decoded value for row i.
	At(i int) (any, error)
	// EncodeBody writes the accumulated rows' wire representation to
	// w, per spec.md §4.3 (no name/type header — Block owns that).
	EncodeBody(w *wire.Writer) error
	// DecodeBody reads rows rows of wire-format body from r, replacing
	// any existing contents.
	DecodeBody(r *wire.Reader, rows int) error
}

// ErrTypeMismatch is returned by Append when v is not assignable to
// the column's logical value type.
type ErrTypeMismatch struct {
	Kind chtype.Kind
	Got  any
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("column: %s column cannot append value of type %T", e.Kind, e.Got)
}

// New constructs an empty Buffer for the given descriptor.
func New(d *chtype.Descriptor) (Buffer, error) {
	switch d.Kind {
	case chtype.KindUInt8:
		return newPrimitive(d, readUint8, writeUint8), nil
	case chtype.KindUInt16:
		return newPrimitive(d, readUint16, writeUint16), nil
	case chtype.KindUInt32:
		return newPrimitive(d, readUint32, writeUint32), nil
	case chtype.KindUInt64:
		return newPrimitive(d, readUint64, writeUint64), nil
	case chtype.KindInt8:
		return newPrimitive(d, readInt8, writeInt8), nil
	case chtype.KindInt16:
		return newPrimitive(d, readInt16, writeInt16), nil
	case chtype.KindInt32:
		return newPrimitive(d, readInt32, writeInt32), nil
	case chtype.KindInt64:
		return newPrimitive(d, readInt64, writeInt64), nil
	case chtype.KindFloat32:
		return newPrimitive(d, readFloat32, writeFloat32), nil
	case chtype.KindFloat64:
		return newPrimitive(d, readFloat64, writeFloat64), nil
	case chtype.KindBool:
		return newBoolBuffer(d), nil
	case chtype.KindUInt128, chtype.KindUInt256, chtype.KindInt128, chtype.KindInt256:
		return newBigIntBuffer(d), nil
	case chtype.KindString:
		return newStringBuffer(d), nil
	case chtype.KindFixedString:
		return newFixedStringBuffer(d), nil
	case chtype.KindDecimal32, chtype.KindDecimal64, chtype.KindDecimal128, chtype.KindDecimal256:
		return newDecimalBuffer(d), nil
	case chtype.KindDate:
		return newDateBuffer(d), nil
	case chtype.KindDate32:
		return newDate32Buffer(d), nil
	case chtype.KindDateTime:
		return newDateTimeBuffer(d), nil
	case chtype.KindDateTime64:
		return newDateTime64Buffer(d), nil
	case chtype.KindUUID:
		return newUUIDBuffer(d), nil
	case chtype.KindIPv4:
		return newIPv4Buffer(d), nil
	case chtype.KindIPv6:
		return newIPv6Buffer(d), nil
	case chtype.KindEnum8, chtype.KindEnum16:
		return newEnumBuffer(d), nil
	case chtype.KindNothing:
		return newNothingBuffer(d), nil
	case chtype.KindNullable:
		return newNullableBuffer(d)
	case chtype.KindArray:
		return newArrayBuffer(d)
	case chtype.KindTuple:
		return newTupleBuffer(d)
	case chtype.KindMap:
		return newMapBuffer(d)
	case chtype.KindLowCardinality:
		return newLowCardinalityBuffer(d)
	}
	return nil, fmt.Errorf("column: unsupported kind %s", d.Kind)
}
