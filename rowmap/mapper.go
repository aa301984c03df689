package rowmap

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/vektorlab/chwire/block"
)

// converter assigns a decoded column value into a struct field.
type converter func(dst reflect.Value, v any) error

type binding struct {
	fieldIndex int
	ordinal    int
	convert    converter
}

// Mapper maps Block rows onto a struct type, resolving field→column
// ordinals and converter functions once per (struct type, schema)
// pair and reusing them for every row, per spec.md §9's
// "reflection-based mapping" design note — the cached binding table is
// built by the first NewMapper call for that pair, so no field or
// column lookup happens per row; each row's values are still assigned
// through reflect.Value.
type Mapper struct {
	typ      reflect.Type
	bindings []binding
}

var mapperCache sync.Map // key: mapperCacheKey -> *Mapper

type mapperCacheKey struct {
	typ    reflect.Type
	schema string
}

// NewMapper builds (or reuses a cached) Mapper for dst's type against
// b's column schema. dst must be a pointer to a struct.
func NewMapper(dst any, b *block.Block) (*Mapper, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("rowmap: dst must be a pointer to a struct, got %T", dst)
	}
	typ := rv.Elem().Type()
	key := mapperCacheKey{typ: typ, schema: strings.Join(b.ColumnNames(), ",")}
	if cached, ok := mapperCache.Load(key); ok {
		return cached.(*Mapper), nil
	}

	m, err := buildMapper(typ, b)
	if err != nil {
		return nil, err
	}
	actual, _ := mapperCache.LoadOrStore(key, m)
	return actual.(*Mapper), nil
}

func buildMapper(typ reflect.Type, b *block.Block) (*Mapper, error) {
	byLower := make(map[string]int, b.NumColumns())
	for i, name := range b.ColumnNames() {
		byLower[strings.ToLower(name)] = i
	}

	var bindings []binding
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		colName := f.Tag.Get("chwire")
		if colName == "" {
			colName = f.Name
		}
		if colName == "-" {
			continue
		}
		ordinal, ok := byLower[strings.ToLower(colName)]
		if !ok {
			continue // unmatched struct field: not every field need bind
		}
		bindings = append(bindings, binding{
			fieldIndex: i,
			ordinal:    ordinal,
			convert:    assignConverter,
		})
	}
	return &Mapper{typ: typ, bindings: bindings}, nil
}

// assignConverter sets dst to its zero value when v is nil (a null
// cell), assigns v directly when it is assignable to dst's type, and
// otherwise converts it when it is convertible.
func assignConverter(dst reflect.Value, v any) error {
	if v == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(dst.Type()) {
		dst.Set(rv)
		return nil
	}
	if rv.Type().ConvertibleTo(dst.Type()) {
		dst.Set(rv.Convert(dst.Type()))
		return nil
	}
	return fmt.Errorf("rowmap: cannot assign %T to field of type %s", v, dst.Type())
}

// Scan decodes row r into dst, a pointer to the struct type this
// Mapper was built for.
func (m *Mapper) Scan(row Row, dst any) error {
	rv := reflect.ValueOf(dst).Elem()
	if rv.Type() != m.typ {
		return fmt.Errorf("rowmap: Scan dst type %s does not match mapper type %s", rv.Type(), m.typ)
	}
	for _, bnd := range m.bindings {
		v, err := row.At(bnd.ordinal)
		if err != nil {
			return err
		}
		if err := bnd.convert(rv.Field(bnd.fieldIndex), v); err != nil {
			return fmt.Errorf("rowmap: field %s: %w", m.typ.Field(bnd.fieldIndex).Name, err)
		}
	}
	return nil
}
