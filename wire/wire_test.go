package wire_test

import (
	"bytes"
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/vektorlab/chwire/wire"
)

func TestUvarintRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   uint64
	}{
		{"zero", 0},
		{"one", 1},
		{"small", 127},
		{"boundary 7 bits", 128},
		{"two bytes", 300},
		{"max uint32", math.MaxUint32},
		{"max uint64", math.MaxUint64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			w := wire.NewWriter(&buf)
			if err := w.PutUvarint(tt.in); err != nil {
				t.Fatalf("PutUvarint: %v", err)
			}
			if err := w.Flush(); err != nil {
				t.Fatalf("Flush: %v", err)
			}

			r := wire.NewReader(&buf)
			got, err := r.Uvarint()
			if err != nil {
				t.Fatalf("Uvarint: %v", err)
			}
			if got != tt.in {
				t.Errorf("Uvarint() = %d, want %d", got, tt.in)
			}
		})
	}
}

func TestUvarintOverflow(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	for i := 0; i < 10; i++ {
		buf.WriteByte(0xFF)
	}
	buf.WriteByte(0x02)

	r := wire.NewReader(&buf)
	if _, err := r.Uvarint(); !errors.Is(err, wire.ErrVarIntOverflow) {
		t.Fatalf("Uvarint() error = %v, want ErrVarIntOverflow", err)
	}
}

func TestUvarintUnexpectedEOF(t *testing.T) {
	t.Parallel()

	r := wire.NewReader(bytes.NewReader([]byte{0x80}))
	if _, err := r.Uvarint(); !errors.Is(err, wire.ErrUnexpectedEOF) {
		t.Fatalf("Uvarint() error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []string{"", "a", "hello, world", string([]byte{0x00, 0x01, 0xFF})}
	for _, s := range tests {
		var buf bytes.Buffer
		w := wire.NewWriter(&buf)
		if err := w.PutString(s); err != nil {
			t.Fatalf("PutString(%q): %v", s, err)
		}
		if err := w.Flush(); err != nil {
			t.Fatalf("Flush: %v", err)
		}

		r := wire.NewReader(&buf)
		got, err := r.String()
		if err != nil {
			t.Fatalf("String(): %v", err)
		}
		if got != s {
			t.Errorf("String() = %q, want %q", got, s)
		}
	}
}

func TestFixedRoundTrip(t *testing.T) {
	t.Parallel()

	in := []byte{1, 2, 3, 4, 5}
	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	if err := w.PutFixed(in); err != nil {
		t.Fatalf("PutFixed: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := wire.NewReader(&buf)
	got, err := r.Fixed(len(in))
	if err != nil {
		t.Fatalf("Fixed: %v", err)
	}
	if !bytes.Equal(got, in) {
		t.Errorf("Fixed() = %v, want %v", got, in)
	}
}

func TestFixedWidthIntegerRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := wire.NewWriter(&buf)
	if err := w.PutUint16(0xABCD); err != nil {
		t.Fatal(err)
	}
	if err := w.PutInt32(-12345); err != nil {
		t.Fatal(err)
	}
	if err := w.PutUint64(math.MaxUint64); err != nil {
		t.Fatal(err)
	}
	if err := w.PutFloat64(3.14159265); err != nil {
		t.Fatal(err)
	}
	if err := w.PutBool(true); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := wire.NewReader(&buf)
	if v, err := r.Uint16(); err != nil || v != 0xABCD {
		t.Errorf("Uint16() = %d, %v, want 0xABCD, nil", v, err)
	}
	if v, err := r.Int32(); err != nil || v != -12345 {
		t.Errorf("Int32() = %d, %v, want -12345, nil", v, err)
	}
	if v, err := r.Uint64(); err != nil || v != math.MaxUint64 {
		t.Errorf("Uint64() = %d, %v, want max, nil", v, err)
	}
	if v, err := r.Float64(); err != nil || v != 3.14159265 {
		t.Errorf("Float64() = %v, %v, want 3.14159265, nil", v, err)
	}
	if v, err := r.Bool(); err != nil || v != true {
		t.Errorf("Bool() = %v, %v, want true, nil", v, err)
	}
}

func TestBigIntLERoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		v     *big.Int
		width int
	}{
		{"zero 16", big.NewInt(0), 16},
		{"positive 16", big.NewInt(123456789), 16},
		{"negative 16", big.NewInt(-123456789), 16},
		{"positive 32", new(big.Int).Lsh(big.NewInt(1), 200), 32},
		{"negative 32", new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 200)), 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			le := wire.BigIntToLE(tt.v, tt.width)
			if len(le) != tt.width {
				t.Fatalf("BigIntToLE() len = %d, want %d", len(le), tt.width)
			}
			got := wire.LEToBigInt(le, true)
			if got.Cmp(tt.v) != 0 {
				t.Errorf("LEToBigInt(BigIntToLE(v)) = %s, want %s", got, tt.v)
			}
		})
	}
}
