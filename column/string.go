package column

import (
	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/wire"
)

// stringBuffer backs String: per row, a varint length then raw bytes.
type stringBuffer struct {
	typ  *chtype.Descriptor
	vals []string
}

func newStringBuffer(d *chtype.Descriptor) *stringBuffer { return &stringBuffer{typ: d} }

func (b *stringBuffer) Type() *chtype.Descriptor { return b.typ }
func (b *stringBuffer) Len() int                 { return len(b.vals) }

func (b *stringBuffer) Append(v any) error {
	val, ok := v.(string)
	if !ok {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	b.vals = append(b.vals, val)
	return nil
}

func (b *stringBuffer) At(i int) (any, error) { return b.vals[i], nil }

func (b *stringBuffer) EncodeBody(w *wire.Writer) error {
	for _, v := range b.vals {
		if err := w.PutString(v); err != nil {
			return err
		}
	}
	return nil
}

func (b *stringBuffer) DecodeBody(r *wire.Reader, rows int) error {
	vals := make([]string, rows)
	for i := 0; i < rows; i++ {
		v, err := r.String()
		if err != nil {
			return err
		}
		vals[i] = v
	}
	b.vals = vals
	return nil
}

// fixedStringBuffer backs FixedString(N): rows*N raw bytes. Values
// shorter than N are right-padded with zero on write; reads return
// bytes as-is, trailing-NUL trimming is the row consumer's job, per
// spec.md §4.3.
type fixedStringBuffer struct {
	typ  *chtype.Descriptor
	n    int
	vals [][]byte
}

func newFixedStringBuffer(d *chtype.Descriptor) *fixedStringBuffer {
	return &fixedStringBuffer{typ: d, n: d.FixedLen}
}

func (b *fixedStringBuffer) Type() *chtype.Descriptor { return b.typ }
func (b *fixedStringBuffer) Len() int                 { return len(b.vals) }

func (b *fixedStringBuffer) Append(v any) error {
	val, ok := v.([]byte)
	if !ok {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	if len(val) > b.n {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	padded := make([]byte, b.n)
	copy(padded, val)
	b.vals = append(b.vals, padded)
	return nil
}

func (b *fixedStringBuffer) At(i int) (any, error) {
	out := make([]byte, b.n)
	copy(out, b.vals[i])
	return out, nil
}

func (b *fixedStringBuffer) EncodeBody(w *wire.Writer) error {
	for _, v := range b.vals {
		if err := w.PutFixed(v); err != nil {
			return err
		}
	}
	return nil
}

func (b *fixedStringBuffer) DecodeBody(r *wire.Reader, rows int) error {
	vals := make([][]byte, rows)
	for i := 0; i < rows; i++ {
		v, err := r.Fixed(b.n)
		if err != nil {
			return err
		}
		vals[i] = v
	}
	b.vals = vals
	return nil
}
