package wire

import "math/big"

// LEToBigInt interprets b as a little-endian two's-complement integer
// of len(b)*8 bits (the "two/four little-endian 64-bit limbs in
// ascending significance" layout spec.md §4.1 describes for 128/256-bit
// values is byte-for-byte identical to a flat little-endian byte
// slab, since limbs are themselves little-endian and consecutive).
func LEToBigInt(b []byte, signed bool) *big.Int {
	be := reversed(b)
	v := new(big.Int).SetBytes(be)
	if signed && len(b) > 0 && b[len(b)-1]&0x80 != 0 {
		// Two's-complement negative: v - 2^bits.
		bits := new(big.Int).Lsh(big.NewInt(1), uint(len(b))*8)
		v.Sub(v, bits)
	}
	return v
}

// BigIntToLE encodes v as a little-endian two's-complement integer
// occupying exactly width bytes. If v does not fit, only its low width
// bytes are kept; no range check is made.
func BigIntToLE(v *big.Int, width int) []byte {
	u := new(big.Int).Set(v)
	if v.Sign() < 0 {
		bits := new(big.Int).Lsh(big.NewInt(1), uint(width)*8)
		u.Add(v, bits)
	}
	be := u.Bytes()
	if len(be) > width {
		be = be[len(be)-width:]
	}
	out := make([]byte, width)
	copy(out[width-len(be):], be)
	return reversed(out)
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
