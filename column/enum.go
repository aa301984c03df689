package column

import (
	"fmt"

	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/wire"
)

// enumBuffer backs Enum8/Enum16: a signed 1- or 2-byte code per row.
// Appended values may be either the enum's string name or a raw int16
// code; codes absent from the descriptor's value list are accepted
// and round-trip as integers, per spec.md §4.3.
type enumBuffer struct {
	typ      *chtype.Descriptor
	wide     bool
	byName   map[string]int16
	byCode   map[int16]string
	vals     []int16
}

func newEnumBuffer(d *chtype.Descriptor) *enumBuffer {
	b := &enumBuffer{
		typ:    d,
		wide:   d.Kind == chtype.KindEnum16,
		byName: make(map[string]int16, len(d.EnumValues)),
		byCode: make(map[int16]string, len(d.EnumValues)),
	}
	for _, ev := range d.EnumValues {
		b.byName[ev.Name] = ev.Code
		b.byCode[ev.Code] = ev.Name
	}
	return b
}

func (b *enumBuffer) Type() *chtype.Descriptor { return b.typ }
func (b *enumBuffer) Len() int                 { return len(b.vals) }

func (b *enumBuffer) Append(v any) error {
	switch val := v.(type) {
	case string:
		code, ok := b.byName[val]
		if !ok {
			return fmt.Errorf("column: enum: unknown name %q", val)
		}
		b.vals = append(b.vals, code)
	case int16:
		b.vals = append(b.vals, val)
	default:
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	return nil
}

func (b *enumBuffer) At(i int) (any, error) {
	code := b.vals[i]
	if name, ok := b.byCode[code]; ok {
		return name, nil
	}
	return code, nil
}

func (b *enumBuffer) EncodeBody(w *wire.Writer) error {
	for _, v := range b.vals {
		if b.wide {
			if err := w.PutInt16(v); err != nil {
				return err
			}
			continue
		}
		if err := w.PutInt8(int8(v)); err != nil {
			return err
		}
	}
	return nil
}

func (b *enumBuffer) DecodeBody(r *wire.Reader, rows int) error {
	vals := make([]int16, rows)
	for i := 0; i < rows; i++ {
		if b.wide {
			v, err := r.Int16()
			if err != nil {
				return err
			}
			vals[i] = v
			continue
		}
		v, err := r.Int8()
		if err != nil {
			return err
		}
		vals[i] = int16(v)
	}
	b.vals = vals
	return nil
}
