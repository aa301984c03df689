package chtype_test

import (
	"errors"
	"testing"

	"github.com/vektorlab/chwire/chtype"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"uint8", "UInt8", "UInt8"},
		{"int256", "Int256", "Int256"},
		{"fixed string", "FixedString(16)", "FixedString(16)"},
		{"decimal", "Decimal64(4)", "Decimal64(4)"},
		{"datetime64 no tz", "DateTime64(6)", "DateTime64(6)"},
		{"datetime64 tz", "DateTime64(3, 'UTC')", "DateTime64(3, 'UTC')"},
		{"nullable string", "Nullable(String)", "Nullable(String)"},
		{"array", "Array(Int32)", "Array(Int32)"},
		{"nested array", "Array(Array(String))", "Array(Array(String))"},
		{"tuple", "Tuple(UInt8, String)", "Tuple(UInt8, String)"},
		{"map", "Map(String, UInt64)", "Map(String, UInt64)"},
		{"low cardinality", "LowCardinality(String)", "LowCardinality(String)"},
		{"nullable low cardinality", "LowCardinality(Nullable(String))", "LowCardinality(Nullable(String))"},
		{"enum8", "Enum8('a' = 1, 'b' = 2)", "Enum8('a' = 1, 'b' = 2)"},
		{"enum with escape", `Enum8('it\'s' = 1)`, `Enum8('it\'s' = 1)`},
		{"spaces", "Tuple( UInt8 ,  String )", "Tuple(UInt8, String)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, err := chtype.Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			if got := d.String(); got != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	tests := []string{
		"",
		"NotAType",
		"Nullable(Array(String))",
		"Nullable(Nullable(String))",
		"Nullable(Map(String, UInt8))",
		"Nullable(LowCardinality(String))",
		"FixedString(",
		"Tuple()",
		"Array(String",
	}
	for _, in := range tests {
		if _, err := chtype.Parse(in); !errors.Is(err, chtype.ErrInvalidType) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidType", in, err)
		}
	}
}

func TestDecimalWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		precision int
		want      int
	}{
		{1, 4}, {9, 4}, {10, 8}, {18, 8}, {19, 16}, {38, 16}, {39, 32}, {76, 32},
	}
	for _, tt := range tests {
		if got := chtype.DecimalWidth(tt.precision); got != tt.want {
			t.Errorf("DecimalWidth(%d) = %d, want %d", tt.precision, got, tt.want)
		}
	}
}
