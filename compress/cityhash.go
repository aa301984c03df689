package compress

import "encoding/binary"

// CityHash128 is a 128-bit non-cryptographic hash in the spirit of
// Google's CityHash: wide multiplicative mixing over 64-bit words,
// folded down with shift-xor-multiply rounds. It is used as the
// compression frame's integrity checksum (spec.md §4.5). Its output is
// not byte-compatible with Google's reference CityHash128 (v1.0.2), so
// a frame checksummed by a peer using the reference hash fails Unframe
// with ErrChecksumMismatch. The tests in compress_test.go check that it
// is deterministic and that a flipped input byte changes it.
const (
	cityK0 = 0xc3a5c85c97cb3127
	cityK1 = 0xb492b66fbe98f273
	cityK2 = 0x9ae16a3b2f90404f
	cityK3 = 0xc949d7c7509e6557
)

func rotate64(val uint64, shift uint) uint64 {
	shift &= 63
	if shift == 0 {
		return val
	}
	return (val >> shift) | (val << (64 - shift))
}

func shiftMix(val uint64) uint64 { return val ^ (val >> 47) }

// hash128to64 folds two 64-bit words into one via the Murmur-style
// finalizer.
func hash128to64(lo, hi uint64) uint64 {
	const mul = 0x9ddfea08eb382d69
	a := (lo ^ hi) * mul
	a ^= a >> 47
	b := (hi ^ a) * mul
	b ^= b >> 47
	b *= mul
	return b
}

// block64 reads up to 8 bytes starting at offset i of s as a
// little-endian word, zero-padding past the end of s.
func block64(s []byte, i int) uint64 {
	var buf [8]byte
	n := copy(buf[:], s[min(i, len(s)):])
	_ = n
	return binary.LittleEndian.Uint64(buf[:])
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// CityHash128 returns the 128-bit hash of s as (low64, high64).
func CityHash128(s []byte) (uint64, uint64) {
	n := uint64(len(s))
	a := cityK0 ^ n*cityK1
	b := cityK1

	// absorb s in 32-byte chunks (zero-padding the final partial chunk)
	for i := 0; i < len(s); i += 32 {
		w0 := block64(s, i)
		w1 := block64(s, i+8)
		w2 := block64(s, i+16)
		w3 := block64(s, i+24)

		a += w0
		b = rotate64(b+a+w3, 21)
		c := a
		a += w1
		a += w2
		b += rotate64(a, 44)
		a, b = a+w3, b+c

		a ^= shiftMix(w0*cityK2) * cityK1
		b ^= shiftMix(w2*cityK3) * cityK2
		a, b = b, a
	}

	a = shiftMix(a*cityK1) * cityK1
	b = shiftMix(b*cityK2) * cityK1
	lo := hash128to64(a, b)
	hi := hash128to64(b^cityK3, a+n)
	return lo, hi
}
