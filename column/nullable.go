package column

import (
	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/wire"
)

// nullableBuffer backs Nullable(T): one mask byte per row (1 = null)
// followed by the inner column unconditionally encoded for all rows,
// per spec.md §4.3. Null rows' inner bytes are defined but meaningless
// — we encode the inner column's own zero value for them.
type nullableBuffer struct {
	typ   *chtype.Descriptor
	mask  []bool
	inner Buffer
}

func newNullableBuffer(d *chtype.Descriptor) (*nullableBuffer, error) {
	inner, err := New(d.Elem)
	if err != nil {
		return nil, err
	}
	return &nullableBuffer{typ: d, inner: inner}, nil
}

func (b *nullableBuffer) Type() *chtype.Descriptor { return b.typ }
func (b *nullableBuffer) Len() int                  { return len(b.mask) }

func (b *nullableBuffer) Append(v any) error {
	if v == nil {
		b.mask = append(b.mask, true)
		return b.inner.Append(zeroValue(b.typ.Elem))
	}
	if err := b.inner.Append(v); err != nil {
		return err
	}
	b.mask = append(b.mask, false)
	return nil
}

func (b *nullableBuffer) At(i int) (any, error) {
	if b.mask[i] {
		return nil, nil
	}
	return b.inner.At(i)
}

func (b *nullableBuffer) EncodeBody(w *wire.Writer) error {
	for _, isNull := range b.mask {
		if err := w.PutBool(isNull); err != nil {
			return err
		}
	}
	return b.inner.EncodeBody(w)
}

func (b *nullableBuffer) DecodeBody(r *wire.Reader, rows int) error {
	mask := make([]bool, rows)
	for i := 0; i < rows; i++ {
		v, err := r.Bool()
		if err != nil {
			return err
		}
		mask[i] = v
	}
	if err := b.inner.DecodeBody(r, rows); err != nil {
		return err
	}
	b.mask = mask
	return nil
}

// zeroValue returns a placeholder value suitable for Append on a
// column of kind d when the logical value is null — the bytes it
// encodes to are meaningless per spec.md §4.3, only the shape matters.
func zeroValue(d *chtype.Descriptor) any {
	switch d.Kind {
	case chtype.KindUInt8:
		return uint8(0)
	case chtype.KindUInt16:
		return uint16(0)
	case chtype.KindUInt32:
		return uint32(0)
	case chtype.KindUInt64:
		return uint64(0)
	case chtype.KindInt8:
		return int8(0)
	case chtype.KindInt16:
		return int16(0)
	case chtype.KindInt32:
		return int32(0)
	case chtype.KindInt64:
		return int64(0)
	case chtype.KindFloat32:
		return float32(0)
	case chtype.KindFloat64:
		return float64(0)
	case chtype.KindBool:
		return false
	case chtype.KindString:
		return ""
	case chtype.KindFixedString:
		return []byte{}
	case chtype.KindUInt128, chtype.KindUInt256, chtype.KindInt128, chtype.KindInt256:
		return zeroBigInt()
	case chtype.KindDecimal32, chtype.KindDecimal64, chtype.KindDecimal128, chtype.KindDecimal256:
		return Decimal{Unscaled: zeroBigInt(), Scale: d.Scale}
	case chtype.KindArray:
		return []any{}
	case chtype.KindTuple:
		vals := make([]any, len(d.Fields))
		for i, f := range d.Fields {
			vals[i] = zeroValue(f)
		}
		return vals
	case chtype.KindMap:
		return map[any]any{}
	case chtype.KindEnum8, chtype.KindEnum16:
		return int16(0)
	}
	return zeroTimeOrAddr(d)
}
