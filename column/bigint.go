package column

import (
	"math/big"

	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/wire"
)

// bigIntBuffer backs UInt128/256 and Int128/256: each row is the
// little-endian two's-complement slab described in spec.md §4.1,
// decoded to/from *big.Int.
type bigIntBuffer struct {
	typ    *chtype.Descriptor
	width  int
	signed bool
	vals   []*big.Int
}

func newBigIntBuffer(d *chtype.Descriptor) *bigIntBuffer {
	width, _ := d.FixedWidth()
	signed := d.Kind == chtype.KindInt128 || d.Kind == chtype.KindInt256
	return &bigIntBuffer{typ: d, width: width, signed: signed}
}

func (b *bigIntBuffer) Type() *chtype.Descriptor { return b.typ }
func (b *bigIntBuffer) Len() int                 { return len(b.vals) }

func (b *bigIntBuffer) Append(v any) error {
	val, ok := v.(*big.Int)
	if !ok {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	b.vals = append(b.vals, new(big.Int).Set(val))
	return nil
}

func (b *bigIntBuffer) At(i int) (any, error) {
	return new(big.Int).Set(b.vals[i]), nil
}

func (b *bigIntBuffer) EncodeBody(w *wire.Writer) error {
	for _, v := range b.vals {
		if err := w.PutFixed(wire.BigIntToLE(v, b.width)); err != nil {
			return err
		}
	}
	return nil
}

func (b *bigIntBuffer) DecodeBody(r *wire.Reader, rows int) error {
	vals := make([]*big.Int, rows)
	for i := 0; i < rows; i++ {
		raw, err := r.Fixed(b.width)
		if err != nil {
			return err
		}
		vals[i] = wire.LEToBigInt(raw, b.signed)
	}
	b.vals = vals
	return nil
}
