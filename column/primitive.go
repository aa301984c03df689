package column

import (
	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/wire"
)

type numeric interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// primitiveBuffer backs every flat, fixed-width numeric column kind:
// a slab of rows*width bytes in little-endian order, per spec.md
// §4.3's "Primitives" rule.
type primitiveBuffer[T numeric] struct {
	typ     *chtype.Descriptor
	vals    []T
	readFn  func(*wire.Reader) (T, error)
	writeFn func(*wire.Writer, T) error
}

func newPrimitive[T numeric](d *chtype.Descriptor, read func(*wire.Reader) (T, error), write func(*wire.Writer, T) error) *primitiveBuffer[T] {
	return &primitiveBuffer[T]{typ: d, readFn: read, writeFn: write}
}

func (b *primitiveBuffer[T]) Type() *chtype.Descriptor { return b.typ }
func (b *primitiveBuffer[T]) Len() int                 { return len(b.vals) }

func (b *primitiveBuffer[T]) Append(v any) error {
	val, ok := v.(T)
	if !ok {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	b.vals = append(b.vals, val)
	return nil
}

func (b *primitiveBuffer[T]) At(i int) (any, error) {
	return b.vals[i], nil
}

func (b *primitiveBuffer[T]) EncodeBody(w *wire.Writer) error {
	for _, v := range b.vals {
		if err := b.writeFn(w, v); err != nil {
			return err
		}
	}
	return nil
}

func (b *primitiveBuffer[T]) DecodeBody(r *wire.Reader, rows int) error {
	vals := make([]T, rows)
	for i := 0; i < rows; i++ {
		v, err := b.readFn(r)
		if err != nil {
			return err
		}
		vals[i] = v
	}
	b.vals = vals
	return nil
}

func readUint8(r *wire.Reader) (uint8, error)   { return r.Uint8() }
func writeUint8(w *wire.Writer, v uint8) error  { return w.PutUint8(v) }
func readUint16(r *wire.Reader) (uint16, error) { return r.Uint16() }
func writeUint16(w *wire.Writer, v uint16) error {
	return w.PutUint16(v)
}
func readUint32(r *wire.Reader) (uint32, error)  { return r.Uint32() }
func writeUint32(w *wire.Writer, v uint32) error { return w.PutUint32(v) }
func readUint64(r *wire.Reader) (uint64, error)  { return r.Uint64() }
func writeUint64(w *wire.Writer, v uint64) error { return w.PutUint64(v) }
func readInt8(r *wire.Reader) (int8, error)      { return r.Int8() }
func writeInt8(w *wire.Writer, v int8) error     { return w.PutInt8(v) }
func readInt16(r *wire.Reader) (int16, error)    { return r.Int16() }
func writeInt16(w *wire.Writer, v int16) error   { return w.PutInt16(v) }
func readInt32(r *wire.Reader) (int32, error)    { return r.Int32() }
func writeInt32(w *wire.Writer, v int32) error   { return w.PutInt32(v) }
func readInt64(r *wire.Reader) (int64, error)    { return r.Int64() }
func writeInt64(w *wire.Writer, v int64) error   { return w.PutInt64(v) }
func readFloat32(r *wire.Reader) (float32, error) {
	return r.Float32()
}
func writeFloat32(w *wire.Writer, v float32) error { return w.PutFloat32(v) }
func readFloat64(r *wire.Reader) (float64, error)  { return r.Float64() }
func writeFloat64(w *wire.Writer, v float64) error { return w.PutFloat64(v) }

// boolBuffer stores Bool columns: one byte per row, per spec.md §4.1.
type boolBuffer struct {
	typ  *chtype.Descriptor
	vals []bool
}

func newBoolBuffer(d *chtype.Descriptor) *boolBuffer { return &boolBuffer{typ: d} }

func (b *boolBuffer) Type() *chtype.Descriptor { return b.typ }
func (b *boolBuffer) Len() int                 { return len(b.vals) }

func (b *boolBuffer) Append(v any) error {
	val, ok := v.(bool)
	if !ok {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	b.vals = append(b.vals, val)
	return nil
}

func (b *boolBuffer) At(i int) (any, error) { return b.vals[i], nil }

func (b *boolBuffer) EncodeBody(w *wire.Writer) error {
	for _, v := range b.vals {
		if err := w.PutBool(v); err != nil {
			return err
		}
	}
	return nil
}

func (b *boolBuffer) DecodeBody(r *wire.Reader, rows int) error {
	vals := make([]bool, rows)
	for i := 0; i < rows; i++ {
		v, err := r.Bool()
		if err != nil {
			return err
		}
		vals[i] = v
	}
	b.vals = vals
	return nil
}

// nothingBuffer backs the Nothing type: zero-width, every row is nil.
type nothingBuffer struct {
	typ *chtype.Descriptor
	n   int
}

func newNothingBuffer(d *chtype.Descriptor) *nothingBuffer { return &nothingBuffer{typ: d} }

func (b *nothingBuffer) Type() *chtype.Descriptor { return b.typ }
func (b *nothingBuffer) Len() int                 { return b.n }
func (b *nothingBuffer) Append(v any) error {
	if v != nil {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	b.n++
	return nil
}
func (b *nothingBuffer) At(int) (any, error) { return nil, nil }
func (b *nothingBuffer) EncodeBody(*wire.Writer) error {
	return nil
}
func (b *nothingBuffer) DecodeBody(_ *wire.Reader, rows int) error {
	b.n = rows
	return nil
}
