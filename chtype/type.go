// Package chtype parses server type expressions into a typed
// Descriptor tree and exposes the storage-layout facts column codecs
// need (fixed width, decimal backing width, DateTime64 tick scale).
package chtype

import "fmt"

// Kind tags the variant of a Descriptor.
type Kind int

const (
	KindUInt8 Kind = iota
	KindUInt16
	KindUInt32
	KindUInt64
	KindUInt128
	KindUInt256
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindInt128
	KindInt256
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindFixedString
	KindDate
	KindDate32
	KindDateTime
	KindDateTime64
	KindDecimal32
	KindDecimal64
	KindDecimal128
	KindDecimal256
	KindUUID
	KindIPv4
	KindIPv6
	KindEnum8
	KindEnum16
	KindNothing
	KindNullable
	KindArray
	KindTuple
	KindMap
	KindLowCardinality
)

func (k Kind) String() string {
	switch k {
	case KindUInt8:
		return "UInt8"
	case KindUInt16:
		return "UInt16"
	case KindUInt32:
		return "UInt32"
	case KindUInt64:
		return "UInt64"
	case KindUInt128:
		return "UInt128"
	case KindUInt256:
		return "UInt256"
	case KindInt8:
		return "Int8"
	case KindInt16:
		return "Int16"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindInt128:
		return "Int128"
	case KindInt256:
		return "Int256"
	case KindFloat32:
		return "Float32"
	case KindFloat64:
		return "Float64"
	case KindBool:
		return "Bool"
	case KindString:
		return "String"
	case KindFixedString:
		return "FixedString"
	case KindDate:
		return "Date"
	case KindDate32:
		return "Date32"
	case KindDateTime:
		return "DateTime"
	case KindDateTime64:
		return "DateTime64"
	case KindDecimal32:
		return "Decimal32"
	case KindDecimal64:
		return "Decimal64"
	case KindDecimal128:
		return "Decimal128"
	case KindDecimal256:
		return "Decimal256"
	case KindUUID:
		return "UUID"
	case KindIPv4:
		return "IPv4"
	case KindIPv6:
		return "IPv6"
	case KindEnum8:
		return "Enum8"
	case KindEnum16:
		return "Enum16"
	case KindNothing:
		return "Nothing"
	case KindNullable:
		return "Nullable"
	case KindArray:
		return "Array"
	case KindTuple:
		return "Tuple"
	case KindMap:
		return "Map"
	case KindLowCardinality:
		return "LowCardinality"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// EnumValue is one name=code pair of an Enum8/Enum16 descriptor, kept
// in declaration order so re-encoding preserves the original listing.
type EnumValue struct {
	Name string
	Code int16
}

// Descriptor is a parsed server type expression. Only the fields
// relevant to Kind are populated; zero values elsewhere.
type Descriptor struct {
	Kind Kind

	// FixedString(N)
	FixedLen int

	// Decimal32/64/128/256(P,S)
	Precision int
	Scale     int

	// DateTime / DateTime64(p[,tz])
	TimePrecision int
	Timezone      string

	// Enum8/Enum16
	EnumValues []EnumValue

	// Nullable(T), Array(T), LowCardinality(T)
	Elem *Descriptor

	// Tuple(T1..Tn)
	Fields []*Descriptor

	// Map(K,V)
	Key   *Descriptor
	Value *Descriptor
}

// FixedWidth returns the byte width of a fixed-size primitive
// encoding, or (0, false) for variable-width or composite kinds.
func (d *Descriptor) FixedWidth() (int, bool) {
	switch d.Kind {
	case KindUInt8, KindInt8, KindBool, KindEnum8:
		return 1, true
	case KindUInt16, KindInt16, KindDate, KindEnum16:
		return 2, true
	case KindUInt32, KindInt32, KindFloat32, KindDate32, KindDateTime, KindIPv4, KindDecimal32:
		return 4, true
	case KindUInt64, KindInt64, KindFloat64, KindDateTime64, KindDecimal64:
		return 8, true
	case KindUInt128, KindInt128, KindDecimal128:
		return 16, true
	case KindUInt256, KindInt256, KindDecimal256:
		return 32, true
	case KindUUID, KindIPv6:
		return 16, true
	case KindFixedString:
		return d.FixedLen, true
	}
	return 0, false
}

// TickScale returns 10^precision, the number of DateTime64 sub-second
// ticks per second.
func (d *Descriptor) TickScale() int64 {
	scale := int64(1)
	for i := 0; i < d.TimePrecision; i++ {
		scale *= 10
	}
	return scale
}

// DecimalWidth returns the backing integer width in bytes chosen by
// precision, per the narrowest-width policy documented in
// SPEC_FULL.md/DESIGN.md (diverges from a fixed 128-bit container).
func DecimalWidth(precision int) int {
	switch {
	case precision <= 9:
		return 4
	case precision <= 18:
		return 8
	case precision <= 38:
		return 16
	default:
		return 32
	}
}

// String renders the descriptor back to its type-expression form.
func (d *Descriptor) String() string {
	switch d.Kind {
	case KindFixedString:
		return fmt.Sprintf("FixedString(%d)", d.FixedLen)
	case KindDecimal32, KindDecimal64, KindDecimal128, KindDecimal256:
		return fmt.Sprintf("%s(%d)", d.Kind, d.Scale)
	case KindDateTime64:
		if d.Timezone != "" {
			return fmt.Sprintf("DateTime64(%d, '%s')", d.TimePrecision, escapeEnumName(d.Timezone))
		}
		return fmt.Sprintf("DateTime64(%d)", d.TimePrecision)
	case KindDateTime:
		if d.Timezone != "" {
			return fmt.Sprintf("DateTime('%s')", escapeEnumName(d.Timezone))
		}
		return "DateTime"
	case KindEnum8, KindEnum16:
		s := d.Kind.String() + "("
		for i, ev := range d.EnumValues {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("'%s' = %d", escapeEnumName(ev.Name), ev.Code)
		}
		return s + ")"
	case KindNullable:
		return fmt.Sprintf("Nullable(%s)", d.Elem)
	case KindArray:
		return fmt.Sprintf("Array(%s)", d.Elem)
	case KindLowCardinality:
		return fmt.Sprintf("LowCardinality(%s)", d.Elem)
	case KindTuple:
		s := "Tuple("
		for i, f := range d.Fields {
			if i > 0 {
				s += ", "
			}
			s += f.String()
		}
		return s + ")"
	case KindMap:
		return fmt.Sprintf("Map(%s, %s)", d.Key, d.Value)
	}
	return d.Kind.String()
}

func escapeEnumName(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\'' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}
