package column

import (
	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/wire"
)

// mapBuffer backs Map(K, V): wire-identical to Array(Tuple(K, V)),
// per spec.md §4.3 — a nested arrayBuffer over a synthesized Tuple
// descriptor does the actual work.
type mapBuffer struct {
	typ   *chtype.Descriptor
	inner *arrayBuffer
}

func newMapBuffer(d *chtype.Descriptor) (*mapBuffer, error) {
	tupleDesc := &chtype.Descriptor{Kind: chtype.KindTuple, Fields: []*chtype.Descriptor{d.Key, d.Value}}
	arrDesc := &chtype.Descriptor{Kind: chtype.KindArray, Elem: tupleDesc}
	inner, err := newArrayBuffer(arrDesc)
	if err != nil {
		return nil, err
	}
	return &mapBuffer{typ: d, inner: inner}, nil
}

func (b *mapBuffer) Type() *chtype.Descriptor { return b.typ }
func (b *mapBuffer) Len() int                 { return b.inner.Len() }

func (b *mapBuffer) Append(v any) error {
	m, ok := v.(map[any]any)
	if !ok {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	pairs := make([]any, 0, len(m))
	for k, val := range m {
		pairs = append(pairs, []any{k, val})
	}
	return b.inner.Append(pairs)
}

func (b *mapBuffer) At(i int) (any, error) {
	raw, err := b.inner.At(i)
	if err != nil {
		return nil, err
	}
	pairs := raw.([]any)
	out := make(map[any]any, len(pairs))
	for _, p := range pairs {
		pair := p.([]any)
		out[pair[0]] = pair[1]
	}
	return out, nil
}

func (b *mapBuffer) EncodeBody(w *wire.Writer) error { return b.inner.EncodeBody(w) }

func (b *mapBuffer) DecodeBody(r *wire.Reader, rows int) error { return b.inner.DecodeBody(r, rows) }
