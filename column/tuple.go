package column

import (
	"fmt"

	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/wire"
)

// tupleBuffer backs Tuple(T1, ..., Tn): each field column is encoded
// back to back in full, field by field, rather than row by row, per
// spec.md §4.3.
type tupleBuffer struct {
	typ    *chtype.Descriptor
	fields []Buffer
	rows   int
}

func newTupleBuffer(d *chtype.Descriptor) (*tupleBuffer, error) {
	fields := make([]Buffer, len(d.Fields))
	for i, f := range d.Fields {
		buf, err := New(f)
		if err != nil {
			return nil, err
		}
		fields[i] = buf
	}
	return &tupleBuffer{typ: d, fields: fields}, nil
}

func (b *tupleBuffer) Type() *chtype.Descriptor { return b.typ }
func (b *tupleBuffer) Len() int                 { return b.rows }

func (b *tupleBuffer) Append(v any) error {
	vals, ok := v.([]any)
	if !ok || len(vals) != len(b.fields) {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	for i, f := range b.fields {
		if err := f.Append(vals[i]); err != nil {
			return err
		}
	}
	b.rows++
	return nil
}

func (b *tupleBuffer) At(i int) (any, error) {
	out := make([]any, len(b.fields))
	for fi, f := range b.fields {
		v, err := f.At(i)
		if err != nil {
			return nil, err
		}
		out[fi] = v
	}
	return out, nil
}

func (b *tupleBuffer) EncodeBody(w *wire.Writer) error {
	for _, f := range b.fields {
		if err := f.EncodeBody(w); err != nil {
			return err
		}
	}
	return nil
}

func (b *tupleBuffer) DecodeBody(r *wire.Reader, rows int) error {
	for i, f := range b.fields {
		if err := f.DecodeBody(r, rows); err != nil {
			return fmt.Errorf("column: tuple: field %d: %w", i, err)
		}
	}
	b.rows = rows
	return nil
}
