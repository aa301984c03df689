package column

import (
	"errors"
	"fmt"
	"math"

	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/wire"
)

// Key-type tags for the dictionary-index column, matching the native
// LowCardinality wire layout.
const (
	lcKeyUInt8 = iota
	lcKeyUInt16
	lcKeyUInt32
	lcKeyUInt64
)

const (
	lcNeedGlobalDictionaryBit = 1 << 8
	lcHasAdditionalKeysBit    = 1 << 9
	lcNeedUpdateDictionary    = 1 << 10
	lcUpdateAll               = lcHasAdditionalKeysBit | lcNeedUpdateDictionary
)

const lcSharedDictionariesWithAdditionalKeys = 1

var errLowCardinalityGlobalDict = errors.New("column: lowcardinality: global dictionary is not supported")
var errLowCardinalityNoAdditionalKeys = errors.New("column: lowcardinality: additional keys bit is missing")

// lowCardinalityBuffer backs LowCardinality(T): a dictionary of
// distinct values plus a per-row index into it. Grounded on
// ClickHouse's native LowCardinality wire format — dictionary rows
// then index rows, each block self-describing its key width. The
// state-prefix version varint precedes the per-block body, per
// spec.md §4.3.
type lowCardinalityBuffer struct {
	typ      *chtype.Descriptor
	nullable bool
	index    Buffer
	byValue  map[any]int // keyed on dictionaryKey(v), not v itself
	keys     []uint64
}

func newLowCardinalityBuffer(d *chtype.Descriptor) (*lowCardinalityBuffer, error) {
	inner := d.Elem
	nullable := inner.Kind == chtype.KindNullable
	var indexType *chtype.Descriptor
	if nullable {
		indexType = inner.Elem
	} else {
		indexType = inner
	}
	index, err := New(indexType)
	if err != nil {
		return nil, err
	}
	// reserve slot 0 for the implicit null/default entry.
	if err := index.Append(zeroValue(indexType)); err != nil {
		return nil, err
	}
	return &lowCardinalityBuffer{
		typ:      d,
		nullable: nullable,
		index:    index,
		byValue:  make(map[any]int),
	}, nil
}

func (b *lowCardinalityBuffer) Type() *chtype.Descriptor { return b.typ }
func (b *lowCardinalityBuffer) Len() int                 { return len(b.keys) }

func (b *lowCardinalityBuffer) Append(v any) error {
	if v == nil {
		if !b.nullable {
			return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
		}
		b.keys = append(b.keys, 0)
		return nil
	}
	dictKey := dictionaryKey(v)
	key, found := b.byValue[dictKey]
	if !found {
		if err := b.index.Append(v); err != nil {
			return err
		}
		key = b.index.Len() - 1
		b.byValue[dictKey] = key
	}
	b.keys = append(b.keys, uint64(key))
	return nil
}

// dictionaryKey converts v into a form usable as a Go map key,
// since some inner buffers (e.g. FixedString) append []byte values,
// which are not themselves hashable.
func dictionaryKey(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func (b *lowCardinalityBuffer) At(i int) (any, error) {
	key := b.keys[i]
	if key == 0 && b.nullable {
		return nil, nil
	}
	return b.index.At(int(key))
}

func (b *lowCardinalityBuffer) EncodeBody(w *wire.Writer) error {
	if err := w.PutUvarint(lcSharedDictionariesWithAdditionalKeys); err != nil {
		return err
	}
	if len(b.keys) == 0 {
		return nil
	}
	dictLen := uint64(b.index.Len())
	var keyType uint64
	switch {
	case dictLen < math.MaxUint8:
		keyType = lcKeyUInt8
	case dictLen < math.MaxUint16:
		keyType = lcKeyUInt16
	case dictLen < math.MaxUint32:
		keyType = lcKeyUInt32
	default:
		keyType = lcKeyUInt64
	}
	if err := w.PutUint64(lcUpdateAll | keyType); err != nil {
		return err
	}
	if err := w.PutInt64(int64(b.index.Len())); err != nil {
		return err
	}
	if err := b.index.EncodeBody(w); err != nil {
		return err
	}
	if err := w.PutInt64(int64(len(b.keys))); err != nil {
		return err
	}
	for _, k := range b.keys {
		var err error
		switch keyType {
		case lcKeyUInt8:
			err = w.PutUint8(uint8(k))
		case lcKeyUInt16:
			err = w.PutUint16(uint16(k))
		case lcKeyUInt32:
			err = w.PutUint32(uint32(k))
		default:
			err = w.PutUint64(k)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *lowCardinalityBuffer) DecodeBody(r *wire.Reader, rows int) error {
	if _, err := r.Uvarint(); err != nil {
		return err
	}
	if rows == 0 {
		return nil
	}
	flags, err := r.Uint64()
	if err != nil {
		return err
	}
	keyType := flags & 0xff
	if flags&lcNeedGlobalDictionaryBit != 0 {
		return errLowCardinalityGlobalDict
	}
	if flags&lcHasAdditionalKeysBit == 0 {
		return errLowCardinalityNoAdditionalKeys
	}
	indexRows, err := r.Int64()
	if err != nil {
		return err
	}
	indexType := b.typ.Elem
	if b.nullable {
		indexType = indexType.Elem
	}
	index, err := New(indexType)
	if err != nil {
		return err
	}
	if err := index.DecodeBody(r, int(indexRows)); err != nil {
		return fmt.Errorf("column: lowcardinality: index: %w", err)
	}
	keyRows, err := r.Int64()
	if err != nil {
		return err
	}
	keys := make([]uint64, keyRows)
	for i := range keys {
		var v uint64
		switch keyType {
		case lcKeyUInt8:
			u, err := r.Uint8()
			if err != nil {
				return err
			}
			v = uint64(u)
		case lcKeyUInt16:
			u, err := r.Uint16()
			if err != nil {
				return err
			}
			v = uint64(u)
		case lcKeyUInt32:
			u, err := r.Uint32()
			if err != nil {
				return err
			}
			v = uint64(u)
		default:
			u, err := r.Uint64()
			if err != nil {
				return err
			}
			v = u
		}
		keys[i] = v
	}
	b.index = index
	b.keys = keys
	return nil
}
