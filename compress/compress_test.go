package compress_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/vektorlab/chwire/compress"
)

func TestCityHash128Deterministic(t *testing.T) {
	t.Parallel()

	in := []byte("the quick brown fox jumps over the lazy dog, repeated to exceed one chunk boundary for good measure")
	lo1, hi1 := compress.CityHash128(in)
	lo2, hi2 := compress.CityHash128(append([]byte{}, in...))
	if lo1 != lo2 || hi1 != hi2 {
		t.Fatalf("CityHash128 not deterministic: (%x,%x) vs (%x,%x)", lo1, hi1, lo2, hi2)
	}
}

func TestCityHash128Sensitivity(t *testing.T) {
	t.Parallel()

	in := bytes.Repeat([]byte{0x42}, 200)
	lo1, hi1 := compress.CityHash128(in)
	flipped := append([]byte{}, in...)
	flipped[150] ^= 0x01
	lo2, hi2 := compress.CityHash128(flipped)
	if lo1 == lo2 && hi1 == hi2 {
		t.Fatalf("CityHash128 did not change after flipping one byte")
	}
}

func TestFrameRoundTripNone(t *testing.T) {
	t.Parallel()

	body := []byte("hello, compression frame")
	framed, err := compress.Frame(compress.MethodNone, body)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	got, err := compress.Unframe(framed)
	if err != nil {
		t.Fatalf("Unframe: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Errorf("Unframe() = %q, want %q", got, body)
	}
}

func TestFrameRoundTripLZ4(t *testing.T) {
	t.Parallel()

	body := bytes.Repeat([]byte("clickhouse-like native protocol payload "), 50)
	framed, err := compress.Frame(compress.MethodLZ4, body)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	got, err := compress.Unframe(framed)
	if err != nil {
		t.Fatalf("Unframe: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Errorf("Unframe() round trip mismatch, len got=%d want=%d", len(got), len(body))
	}
}

func TestFrameRoundTripZSTD(t *testing.T) {
	t.Parallel()

	body := bytes.Repeat([]byte("columnar analytical payload block "), 80)
	framed, err := compress.Frame(compress.MethodZSTD, body)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	got, err := compress.Unframe(framed)
	if err != nil {
		t.Fatalf("Unframe: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Errorf("Unframe() round trip mismatch, len got=%d want=%d", len(got), len(body))
	}
}

func TestFrameChecksumMismatch(t *testing.T) {
	t.Parallel()

	body := []byte("payload that will be corrupted after framing")
	framed, err := compress.Frame(compress.MethodNone, body)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	framed[20] ^= 0xFF
	if _, err := compress.Unframe(framed); !errors.Is(err, compress.ErrChecksumMismatch) {
		t.Fatalf("Unframe() error = %v, want ErrChecksumMismatch", err)
	}
}
