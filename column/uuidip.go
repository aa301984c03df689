package column

import (
	"net/netip"

	"github.com/google/uuid"

	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/wire"
)

func zeroUUID() any { return uuid.UUID{} }
func zeroAddr() any { return netip.Addr{} }

// uuidBuffer backs UUID: 16 bytes per row, written as two
// little-endian UInt64 halves — the first 8 bytes of the RFC 4122
// representation, then the last 8 — per spec.md §4.3.
type uuidBuffer struct {
	typ  *chtype.Descriptor
	vals []uuid.UUID
}

func newUUIDBuffer(d *chtype.Descriptor) *uuidBuffer { return &uuidBuffer{typ: d} }

func (b *uuidBuffer) Type() *chtype.Descriptor { return b.typ }
func (b *uuidBuffer) Len() int                 { return len(b.vals) }

func (b *uuidBuffer) Append(v any) error {
	val, ok := v.(uuid.UUID)
	if !ok {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	b.vals = append(b.vals, val)
	return nil
}

func (b *uuidBuffer) At(i int) (any, error) { return b.vals[i], nil }

func (b *uuidBuffer) EncodeBody(w *wire.Writer) error {
	for _, v := range b.vals {
		hi := reverseBytes(v[:8])
		lo := reverseBytes(v[8:])
		if err := w.PutFixed(hi); err != nil {
			return err
		}
		if err := w.PutFixed(lo); err != nil {
			return err
		}
	}
	return nil
}

func (b *uuidBuffer) DecodeBody(r *wire.Reader, rows int) error {
	vals := make([]uuid.UUID, rows)
	for i := 0; i < rows; i++ {
		hi, err := r.Fixed(8)
		if err != nil {
			return err
		}
		lo, err := r.Fixed(8)
		if err != nil {
			return err
		}
		var u uuid.UUID
		copy(u[:8], reverseBytes(hi))
		copy(u[8:], reverseBytes(lo))
		vals[i] = u
	}
	b.vals = vals
	return nil
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

// ipv4Buffer backs IPv4: UInt32 holding the address in network byte
// order, carried in a little-endian wire slot per spec.md §4.3.
type ipv4Buffer struct {
	typ  *chtype.Descriptor
	vals []netip.Addr
}

func newIPv4Buffer(d *chtype.Descriptor) *ipv4Buffer { return &ipv4Buffer{typ: d} }

func (b *ipv4Buffer) Type() *chtype.Descriptor { return b.typ }
func (b *ipv4Buffer) Len() int                 { return len(b.vals) }

func (b *ipv4Buffer) Append(v any) error {
	val, ok := v.(netip.Addr)
	if !ok || !val.Is4() {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	b.vals = append(b.vals, val)
	return nil
}

func (b *ipv4Buffer) At(i int) (any, error) { return b.vals[i], nil }

func (b *ipv4Buffer) EncodeBody(w *wire.Writer) error {
	for _, v := range b.vals {
		octets := v.As4()
		be := uint32(octets[0])<<24 | uint32(octets[1])<<16 | uint32(octets[2])<<8 | uint32(octets[3])
		if err := w.PutUint32(be); err != nil {
			return err
		}
	}
	return nil
}

func (b *ipv4Buffer) DecodeBody(r *wire.Reader, rows int) error {
	vals := make([]netip.Addr, rows)
	for i := 0; i < rows; i++ {
		be, err := r.Uint32()
		if err != nil {
			return err
		}
		octets := [4]byte{byte(be >> 24), byte(be >> 16), byte(be >> 8), byte(be)}
		vals[i] = netip.AddrFrom4(octets)
	}
	b.vals = vals
	return nil
}

// ipv6Buffer backs IPv6: 16 raw address bytes per row, network byte
// order, no endian conversion.
type ipv6Buffer struct {
	typ  *chtype.Descriptor
	vals []netip.Addr
}

func newIPv6Buffer(d *chtype.Descriptor) *ipv6Buffer { return &ipv6Buffer{typ: d} }

func (b *ipv6Buffer) Type() *chtype.Descriptor { return b.typ }
func (b *ipv6Buffer) Len() int                 { return len(b.vals) }

func (b *ipv6Buffer) Append(v any) error {
	val, ok := v.(netip.Addr)
	if !ok || !val.Is6() {
		return &ErrTypeMismatch{Kind: b.typ.Kind, Got: v}
	}
	b.vals = append(b.vals, val)
	return nil
}

func (b *ipv6Buffer) At(i int) (any, error) { return b.vals[i], nil }

func (b *ipv6Buffer) EncodeBody(w *wire.Writer) error {
	for _, v := range b.vals {
		octets := v.As16()
		if err := w.PutFixed(octets[:]); err != nil {
			return err
		}
	}
	return nil
}

func (b *ipv6Buffer) DecodeBody(r *wire.Reader, rows int) error {
	vals := make([]netip.Addr, rows)
	for i := 0; i < rows; i++ {
		raw, err := r.Fixed(16)
		if err != nil {
			return err
		}
		var octets [16]byte
		copy(octets[:], raw)
		vals[i] = netip.AddrFrom16(octets)
	}
	b.vals = vals
	return nil
}
