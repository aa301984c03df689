package column

import (
	"time"

	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/wire"
)

var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

func zeroTimeOrAddr(d *chtype.Descriptor) any {
	switch d.Kind {
	case chtype.KindDate, chtype.KindDate32, chtype.KindDateTime, chtype.KindDateTime64:
		return epoch
	case chtype.KindUUID:
		return zeroUUID()
	case chtype.KindIPv4, chtype.KindIPv6:
		return zeroAddr()
	}
	return nil
}

// dateBuffer backs Date: UInt16 days since 1970-01-01.
type dateBuffer struct {
	typ  *chtype.Descriptor
	vals []uint16
}

func newDateBuffer(d *chtype.Descriptor) *dateBuffer { return &dateBuffer{typ: d} }

func (b *dateBuffer) Type() *chtype.Descriptor { return b.typ }
func (b *dateBuffer) Len() int                 { return len(b.vals) }

func (b *dateBuffer) Append(v any) error {
	t, ok := v.(time.Time)
	if !ok {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	days := int64(t.UTC().Sub(epoch).Hours() / 24)
	b.vals = append(b.vals, uint16(days))
	return nil
}

func (b *dateBuffer) At(i int) (any, error) {
	return epoch.AddDate(0, 0, int(b.vals[i])), nil
}

func (b *dateBuffer) EncodeBody(w *wire.Writer) error {
	for _, v := range b.vals {
		if err := w.PutUint16(v); err != nil {
			return err
		}
	}
	return nil
}

func (b *dateBuffer) DecodeBody(r *wire.Reader, rows int) error {
	vals := make([]uint16, rows)
	for i := 0; i < rows; i++ {
		v, err := r.Uint16()
		if err != nil {
			return err
		}
		vals[i] = v
	}
	b.vals = vals
	return nil
}

// date32Buffer backs Date32: Int32 days since 1970-01-01 (can be
// negative for pre-epoch dates).
type date32Buffer struct {
	typ  *chtype.Descriptor
	vals []int32
}

func newDate32Buffer(d *chtype.Descriptor) *date32Buffer { return &date32Buffer{typ: d} }

func (b *date32Buffer) Type() *chtype.Descriptor { return b.typ }
func (b *date32Buffer) Len() int                 { return len(b.vals) }

func (b *date32Buffer) Append(v any) error {
	t, ok := v.(time.Time)
	if !ok {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	days := int64(t.UTC().Sub(epoch).Hours() / 24)
	b.vals = append(b.vals, int32(days))
	return nil
}

func (b *date32Buffer) At(i int) (any, error) {
	return epoch.AddDate(0, 0, int(b.vals[i])), nil
}

func (b *date32Buffer) EncodeBody(w *wire.Writer) error {
	for _, v := range b.vals {
		if err := w.PutInt32(v); err != nil {
			return err
		}
	}
	return nil
}

func (b *date32Buffer) DecodeBody(r *wire.Reader, rows int) error {
	vals := make([]int32, rows)
	for i := 0; i < rows; i++ {
		v, err := r.Int32()
		if err != nil {
			return err
		}
		vals[i] = v
	}
	b.vals = vals
	return nil
}

// dateTimeBuffer backs DateTime: UInt32 seconds since the Unix epoch.
// The type's timezone argument is metadata only, per spec.md §4.3.
type dateTimeBuffer struct {
	typ  *chtype.Descriptor
	loc  *time.Location
	vals []uint32
}

func newDateTimeBuffer(d *chtype.Descriptor) *dateTimeBuffer {
	loc := time.UTC
	if d.Timezone != "" {
		if l, err := time.LoadLocation(d.Timezone); err == nil {
			loc = l
		}
	}
	return &dateTimeBuffer{typ: d, loc: loc}
}

func (b *dateTimeBuffer) Type() *chtype.Descriptor { return b.typ }
func (b *dateTimeBuffer) Len() int                 { return len(b.vals) }

func (b *dateTimeBuffer) Append(v any) error {
	t, ok := v.(time.Time)
	if !ok {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	b.vals = append(b.vals, uint32(t.Unix()))
	return nil
}

func (b *dateTimeBuffer) At(i int) (any, error) {
	return time.Unix(int64(b.vals[i]), 0).In(b.loc), nil
}

func (b *dateTimeBuffer) EncodeBody(w *wire.Writer) error {
	for _, v := range b.vals {
		if err := w.PutUint32(v); err != nil {
			return err
		}
	}
	return nil
}

func (b *dateTimeBuffer) DecodeBody(r *wire.Reader, rows int) error {
	vals := make([]uint32, rows)
	for i := 0; i < rows; i++ {
		v, err := r.Uint32()
		if err != nil {
			return err
		}
		vals[i] = v
	}
	b.vals = vals
	return nil
}

// dateTime64Buffer backs DateTime64(p): Int64 ticks at 10^p per
// second since the epoch, may be negative.
type dateTime64Buffer struct {
	typ   *chtype.Descriptor
	loc   *time.Location
	scale int64
	vals  []int64
}

func newDateTime64Buffer(d *chtype.Descriptor) *dateTime64Buffer {
	loc := time.UTC
	if d.Timezone != "" {
		if l, err := time.LoadLocation(d.Timezone); err == nil {
			loc = l
		}
	}
	return &dateTime64Buffer{typ: d, loc: loc, scale: d.TickScale()}
}

func (b *dateTime64Buffer) Type() *chtype.Descriptor { return b.typ }
func (b *dateTime64Buffer) Len() int                 { return len(b.vals) }

func (b *dateTime64Buffer) Append(v any) error {
	t, ok := v.(time.Time)
	if !ok {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	secs := t.Unix()
	nanoFrac := int64(t.Nanosecond())
	ticks := secs*b.scale + (nanoFrac*b.scale)/int64(time.Second)
	b.vals = append(b.vals, ticks)
	return nil
}

func (b *dateTime64Buffer) At(i int) (any, error) {
	ticks := b.vals[i]
	secs := ticks / b.scale
	rem := ticks % b.scale
	if rem < 0 {
		rem += b.scale
		secs--
	}
	nanos := rem * int64(time.Second) / b.scale
	return time.Unix(secs, nanos).In(b.loc), nil
}

func (b *dateTime64Buffer) EncodeBody(w *wire.Writer) error {
	for _, v := range b.vals {
		if err := w.PutInt64(v); err != nil {
			return err
		}
	}
	return nil
}

func (b *dateTime64Buffer) DecodeBody(r *wire.Reader, rows int) error {
	vals := make([]int64, rows)
	for i := 0; i < rows; i++ {
		v, err := r.Int64()
		if err != nil {
			return err
		}
		vals[i] = v
	}
	b.vals = vals
	return nil
}
