package column

import (
	"math/big"

	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/wire"
)

// Decimal is the logical value of a Decimal32/64/128/256 cell: the
// true value is Unscaled / 10^Scale, per spec.md §4.3.
type Decimal struct {
	Unscaled *big.Int
	Scale    int
}

func zeroBigInt() *big.Int { return big.NewInt(0) }

// decimalBuffer picks the narrowest backing integer width per
// spec.md §4.3's precision table (≤9→32, ≤18→64, ≤38→128, ≤76→256),
// diverging from a fixed 128-bit container — see DESIGN.md.
type decimalBuffer struct {
	typ   *chtype.Descriptor
	width int
	vals  []*big.Int
}

func newDecimalBuffer(d *chtype.Descriptor) *decimalBuffer {
	width, _ := d.FixedWidth()
	return &decimalBuffer{typ: d, width: width}
}

func (b *decimalBuffer) Type() *chtype.Descriptor { return b.typ }
func (b *decimalBuffer) Len() int                 { return len(b.vals) }

func (b *decimalBuffer) Append(v any) error {
	val, ok := v.(Decimal)
	if !ok {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	b.vals = append(b.vals, new(big.Int).Set(val.Unscaled))
	return nil
}

func (b *decimalBuffer) At(i int) (any, error) {
	return Decimal{Unscaled: new(big.Int).Set(b.vals[i]), Scale: b.typ.Scale}, nil
}

func (b *decimalBuffer) EncodeBody(w *wire.Writer) error {
	for _, v := range b.vals {
		if err := w.PutFixed(wire.BigIntToLE(v, b.width)); err != nil {
			return err
		}
	}
	return nil
}

func (b *decimalBuffer) DecodeBody(r *wire.Reader, rows int) error {
	vals := make([]*big.Int, rows)
	for i := 0; i < rows; i++ {
		raw, err := r.Fixed(b.width)
		if err != nil {
			return err
		}
		vals[i] = wire.LEToBigInt(raw, true)
	}
	b.vals = vals
	return nil
}
