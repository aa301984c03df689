package column

import (
	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/wire"
)

// arrayBuffer backs Array(T): a UInt64 cumulative-offset per row
// followed by the flattened inner column holding every element of
// every row back to back, per spec.md §4.3.
type arrayBuffer struct {
	typ     *chtype.Descriptor
	offsets []uint64
	inner   Buffer
}

func newArrayBuffer(d *chtype.Descriptor) (*arrayBuffer, error) {
	inner, err := New(d.Elem)
	if err != nil {
		return nil, err
	}
	return &arrayBuffer{typ: d, inner: inner}, nil
}

func (b *arrayBuffer) Type() *chtype.Descriptor { return b.typ }
func (b *arrayBuffer) Len() int                 { return len(b.offsets) }

func (b *arrayBuffer) Append(v any) error {
	elems, ok := v.([]any)
	if !ok {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	for _, e := range elems {
		if err := b.inner.Append(e); err != nil {
			return err
		}
	}
	prev := uint64(0)
	if len(b.offsets) > 0 {
		prev = b.offsets[len(b.offsets)-1]
	}
	b.offsets = append(b.offsets, prev+uint64(len(elems)))
	return nil
}

func (b *arrayBuffer) At(i int) (any, error) {
	start := uint64(0)
	if i > 0 {
		start = b.offsets[i-1]
	}
	end := b.offsets[i]
	out := make([]any, 0, end-start)
	for j := start; j < end; j++ {
		v, err := b.inner.At(int(j))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (b *arrayBuffer) EncodeBody(w *wire.Writer) error {
	for _, off := range b.offsets {
		if err := w.PutUint64(off); err != nil {
			return err
		}
	}
	return b.inner.EncodeBody(w)
}

func (b *arrayBuffer) DecodeBody(r *wire.Reader, rows int) error {
	offsets := make([]uint64, rows)
	for i := 0; i < rows; i++ {
		v, err := r.Uint64()
		if err != nil {
			return err
		}
		offsets[i] = v
	}
	total := 0
	if rows > 0 {
		total = int(offsets[rows-1])
	}
	if err := b.inner.DecodeBody(r, total); err != nil {
		return err
	}
	b.offsets = offsets
	return nil
}
