package chtype

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidType is returned for unknown type heads or malformed
// arguments.
var ErrInvalidType = errors.New("chtype: invalid type")

// Parse parses a server type expression such as
// "Nullable(Array(LowCardinality(String)))" into a Descriptor tree.
func Parse(expr string) (*Descriptor, error) {
	p := &parser{s: expr}
	p.skipSpace()
	d, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, fmt.Errorf("%w: trailing input %q", ErrInvalidType, p.s[p.pos:])
	}
	return d, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && p.s[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) errf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidType, fmt.Sprintf(format, args...))
}

// parseIdent reads a bare identifier: every byte up to the next '(',
// ')', ',' or space.
func (p *parser) parseIdent() string {
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if c == '(' || c == ')' || c == ',' || c == ' ' {
			break
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.s) || p.s[p.pos] != c {
		return p.errf("expected %q at position %d", c, p.pos)
	}
	p.pos++
	return nil
}

func (p *parser) parseType() (*Descriptor, error) {
	p.skipSpace()
	head := p.parseIdent()
	if head == "" {
		return nil, p.errf("empty type head at position %d", p.pos)
	}

	switch head {
	case "UInt8":
		return &Descriptor{Kind: KindUInt8}, nil
	case "UInt16":
		return &Descriptor{Kind: KindUInt16}, nil
	case "UInt32":
		return &Descriptor{Kind: KindUInt32}, nil
	case "UInt64":
		return &Descriptor{Kind: KindUInt64}, nil
	case "UInt128":
		return &Descriptor{Kind: KindUInt128}, nil
	case "UInt256":
		return &Descriptor{Kind: KindUInt256}, nil
	case "Int8":
		return &Descriptor{Kind: KindInt8}, nil
	case "Int16":
		return &Descriptor{Kind: KindInt16}, nil
	case "Int32":
		return &Descriptor{Kind: KindInt32}, nil
	case "Int64":
		return &Descriptor{Kind: KindInt64}, nil
	case "Int128":
		return &Descriptor{Kind: KindInt128}, nil
	case "Int256":
		return &Descriptor{Kind: KindInt256}, nil
	case "Float32":
		return &Descriptor{Kind: KindFloat32}, nil
	case "Float64":
		return &Descriptor{Kind: KindFloat64}, nil
	case "Bool":
		return &Descriptor{Kind: KindBool}, nil
	case "String":
		return &Descriptor{Kind: KindString}, nil
	case "Date":
		return &Descriptor{Kind: KindDate}, nil
	case "Date32":
		return &Descriptor{Kind: KindDate32}, nil
	case "UUID":
		return &Descriptor{Kind: KindUUID}, nil
	case "IPv4":
		return &Descriptor{Kind: KindIPv4}, nil
	case "IPv6":
		return &Descriptor{Kind: KindIPv6}, nil
	case "Nothing":
		return &Descriptor{Kind: KindNothing}, nil
	case "FixedString":
		return p.parseFixedString()
	case "DateTime":
		return p.parseDateTime()
	case "DateTime64":
		return p.parseDateTime64()
	case "Decimal32":
		return p.parseDecimal(KindDecimal32, 9)
	case "Decimal64":
		return p.parseDecimal(KindDecimal64, 18)
	case "Decimal128":
		return p.parseDecimal(KindDecimal128, 38)
	case "Decimal256":
		return p.parseDecimal(KindDecimal256, 76)
	case "Enum8":
		return p.parseEnum(KindEnum8)
	case "Enum16":
		return p.parseEnum(KindEnum16)
	case "Nullable":
		return p.parseNullable()
	case "Array":
		return p.parseArray()
	case "Tuple":
		return p.parseTuple()
	case "Map":
		return p.parseMap()
	case "LowCardinality":
		return p.parseLowCardinality()
	}
	return nil, p.errf("unknown type %q", head)
}

func (p *parser) parseFixedString() (*Descriptor, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	n, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, p.errf("FixedString length must be non-negative")
	}
	return &Descriptor{Kind: KindFixedString, FixedLen: n}, nil
}

func (p *parser) parseDateTime() (*Descriptor, error) {
	d := &Descriptor{Kind: KindDateTime}
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == '(' {
		p.pos++
		p.skipSpace()
		if p.pos < len(p.s) && p.s[p.pos] != ')' {
			tz, err := p.parseQuotedString()
			if err != nil {
				return nil, err
			}
			d.Timezone = tz
		}
		if err := p.expect(')'); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (p *parser) parseDateTime64() (*Descriptor, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	prec, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	d := &Descriptor{Kind: KindDateTime64, TimePrecision: prec}
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == ',' {
		p.pos++
		p.skipSpace()
		tz, err := p.parseQuotedString()
		if err != nil {
			return nil, err
		}
		d.Timezone = tz
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return d, nil
}

// parseDecimal handles the DecimalN(s) forms (scale only; precision is
// implied by the N in the type name, per spec.md §4.2/§4.3).
func (p *parser) parseDecimal(kind Kind, maxPrecision int) (*Descriptor, error) {
	d := &Descriptor{Kind: kind, Precision: maxPrecision}
	if err := p.expect('('); err != nil {
		return nil, err
	}
	scale, err := p.parseInt()
	if err != nil {
		return nil, err
	}
	d.Scale = scale
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *parser) parseEnum(kind Kind) (*Descriptor, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	d := &Descriptor{Kind: kind}
	for {
		p.skipSpace()
		name, err := p.parseQuotedString()
		if err != nil {
			return nil, err
		}
		if err := p.expect('='); err != nil {
			return nil, err
		}
		code, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		d.EnumValues = append(d.EnumValues, EnumValue{Name: name, Code: int16(code)})
		p.skipSpace()
		if p.pos < len(p.s) && p.s[p.pos] == ',' {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *parser) parseNullable() (*Descriptor, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	inner, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	switch inner.Kind {
	case KindArray, KindMap, KindLowCardinality, KindNullable:
		return nil, p.errf("Nullable may not wrap %s", inner.Kind)
	}
	return &Descriptor{Kind: KindNullable, Elem: inner}, nil
}

func (p *parser) parseArray() (*Descriptor, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	inner, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return &Descriptor{Kind: KindArray, Elem: inner}, nil
}

func (p *parser) parseTuple() (*Descriptor, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	d := &Descriptor{Kind: KindTuple}
	for {
		f, err := p.parseType()
		if err != nil {
			return nil, err
		}
		d.Fields = append(d.Fields, f)
		p.skipSpace()
		if p.pos < len(p.s) && p.s[p.pos] == ',' {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	if len(d.Fields) == 0 {
		return nil, p.errf("Tuple must have at least one field")
	}
	return d, nil
}

func (p *parser) parseMap() (*Descriptor, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	key, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(','); err != nil {
		return nil, err
	}
	val, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return &Descriptor{Kind: KindMap, Key: key, Value: val}, nil
}

func (p *parser) parseLowCardinality() (*Descriptor, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	inner, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expect(')'); err != nil {
		return nil, err
	}
	return &Descriptor{Kind: KindLowCardinality, Elem: inner}, nil
}

func (p *parser) parseInt() (int, error) {
	p.skipSpace()
	start := p.pos
	if p.pos < len(p.s) && (p.s[p.pos] == '-' || p.s[p.pos] == '+') {
		p.pos++
	}
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, p.errf("expected integer at position %d", p.pos)
	}
	n, err := strconv.Atoi(p.s[start:p.pos])
	if err != nil {
		return 0, p.errf("invalid integer %q: %v", p.s[start:p.pos], err)
	}
	return n, nil
}

// parseQuotedString reads a single-quoted, backslash-escaped string
// (used for enum names and DateTime64 timezones), unescaping \' and \\.
func (p *parser) parseQuotedString() (string, error) {
	if p.pos >= len(p.s) || p.s[p.pos] != '\'' {
		return "", p.errf("expected quoted string at position %d", p.pos)
	}
	p.pos++
	var b strings.Builder
	for {
		if p.pos >= len(p.s) {
			return "", p.errf("unterminated quoted string")
		}
		c := p.s[p.pos]
		if c == '\\' && p.pos+1 < len(p.s) {
			next := p.s[p.pos+1]
			if next == '\'' || next == '\\' {
				b.WriteByte(next)
				p.pos += 2
				continue
			}
		}
		if c == '\'' {
			p.pos++
			break
		}
		b.WriteByte(c)
		p.pos++
	}
	return b.String(), nil
}
