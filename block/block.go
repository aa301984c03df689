// Package block implements the columnar Block: an ordered set of
// named, typed columns sharing one row count, plus the small tagged
// BlockInfo header that precedes it on the wire, per spec.md §4.4.
package block

import (
	"errors"
	"fmt"

	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/column"
	"github.com/vektorlab/chwire/wire"
)

var (
	ErrDuplicateName = errors.New("block: duplicate column name")
	ErrEmptyName     = errors.New("block: empty column name")
	ErrRowCountSkew  = errors.New("block: column row counts differ")
)

// Info is the tagged-field header preceding every block body.
// Field numbers are part of the wire contract; an unknown field
// number encountered while decoding is rejected with an error — see
// decodeInfo.
type Info struct {
	IsOverflows bool
	BucketNum   int32
}

const (
	infoFieldIsOverflows = 1
	infoFieldBucketNum   = 2
)

// DefaultInfo returns the default header: not overflows, bucket -1.
func DefaultInfo() Info { return Info{BucketNum: -1} }

func (i Info) encode(w *wire.Writer) error {
	if err := w.PutUvarint(infoFieldIsOverflows); err != nil {
		return err
	}
	if err := w.PutBool(i.IsOverflows); err != nil {
		return err
	}
	if err := w.PutUvarint(infoFieldBucketNum); err != nil {
		return err
	}
	if err := w.PutInt32(i.BucketNum); err != nil {
		return err
	}
	return w.PutUvarint(0)
}

func decodeInfo(r *wire.Reader) (Info, error) {
	info := DefaultInfo()
	for {
		field, err := r.Uvarint()
		if err != nil {
			return Info{}, err
		}
		switch field {
		case 0:
			return info, nil
		case infoFieldIsOverflows:
			v, err := r.Bool()
			if err != nil {
				return Info{}, err
			}
			info.IsOverflows = v
		case infoFieldBucketNum:
			v, err := r.Int32()
			if err != nil {
				return Info{}, err
			}
			info.BucketNum = v
		default:
			return Info{}, fmt.Errorf("block: unknown info field %d", field)
		}
	}
}

// namedColumn pairs a column's name/type with its storage buffer, in the
// order they appear on the wire.
type namedColumn struct {
	name string
	typ  *chtype.Descriptor
	buf  column.Buffer
}

// Block is an ordered set of named, typed columns sharing one row
// count, per spec.md §3/§4.4.
type Block struct {
	Info    Info
	columns []namedColumn
	rows    int
}

// New returns an empty block with the default Info header.
func New() *Block { return &Block{Info: DefaultInfo()} }

// NumColumns returns the number of columns.
func (b *Block) NumColumns() int { return len(b.columns) }

// NumRows returns the shared row count.
func (b *Block) NumRows() int { return b.rows }

// ColumnNames returns column names in wire order.
func (b *Block) ColumnNames() []string {
	names := make([]string, len(b.columns))
	for i, c := range b.columns {
		names[i] = c.name
	}
	return names
}

// Column returns the buffer for the column named name (case-sensitive;
// callers needing case-insensitive lookup should use rowmap.Mapper),
// or false if no such column exists.
func (b *Block) Column(name string) (column.Buffer, bool) {
	for _, c := range b.columns {
		if c.name == name {
			return c.buf, true
		}
	}
	return nil, false
}

// ColumnAt returns the buffer at ordinal i.
func (b *Block) ColumnAt(i int) column.Buffer { return b.columns[i].buf }

// ColumnType returns the type descriptor at ordinal i.
func (b *Block) ColumnType(i int) *chtype.Descriptor { return b.columns[i].typ }

// AddColumn appends a new, empty column to the block. The name must
// be non-empty and unique among existing columns.
func (b *Block) AddColumn(name string, typ *chtype.Descriptor) error {
	if name == "" {
		return ErrEmptyName
	}
	for _, c := range b.columns {
		if c.name == name {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}
	buf, err := column.New(typ)
	if err != nil {
		return err
	}
	b.columns = append(b.columns, namedColumn{name: name, typ: typ, buf: buf})
	return nil
}

// AppendRow appends one value per column, in column order. The
// number of values must equal NumColumns.
func (b *Block) AppendRow(vals []any) error {
	if len(vals) != len(b.columns) {
		return fmt.Errorf("block: AppendRow got %d values, want %d", len(vals), len(b.columns))
	}
	for i, c := range b.columns {
		if err := c.buf.Append(vals[i]); err != nil {
			return fmt.Errorf("block: column %q: %w", c.name, err)
		}
	}
	b.rows++
	return nil
}

// checkUniform verifies every column reports the same row count.
func (b *Block) checkUniform() error {
	for _, c := range b.columns {
		if c.buf.Len() != b.rows && b.rows != 0 {
			return fmt.Errorf("%w: column %q has %d rows, block has %d", ErrRowCountSkew, c.name, c.buf.Len(), b.rows)
		}
	}
	return nil
}

// Encode writes the block's full wire representation: Info header,
// column count, row count, then each column's name/type/body.
func (b *Block) Encode(w *wire.Writer) error {
	if err := b.checkUniform(); err != nil {
		return err
	}
	if err := b.Info.encode(w); err != nil {
		return err
	}
	if err := w.PutUvarint(uint64(len(b.columns))); err != nil {
		return err
	}
	if err := w.PutUvarint(uint64(b.rows)); err != nil {
		return err
	}
	for _, c := range b.columns {
		if err := w.PutString(c.name); err != nil {
			return err
		}
		if err := w.PutString(c.typ.String()); err != nil {
			return err
		}
		if err := c.buf.EncodeBody(w); err != nil {
			return fmt.Errorf("block: column %q: %w", c.name, err)
		}
	}
	return nil
}

// Decode reads a full block from r and returns it as a new Block.
func Decode(r *wire.Reader) (*Block, error) {
	info, err := decodeInfo(r)
	if err != nil {
		return nil, fmt.Errorf("block: info: %w", err)
	}
	numCols, err := r.Uvarint()
	if err != nil {
		return nil, err
	}
	numRows, err := r.Uvarint()
	if err != nil {
		return nil, err
	}
	b := &Block{Info: info, rows: int(numRows)}
	seen := make(map[string]struct{}, numCols)
	for i := uint64(0); i < numCols; i++ {
		name, err := r.String()
		if err != nil {
			return nil, err
		}
		if name == "" {
			return nil, ErrEmptyName
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		seen[name] = struct{}{}

		typeExpr, err := r.String()
		if err != nil {
			return nil, err
		}
		typ, err := chtype.Parse(typeExpr)
		if err != nil {
			return nil, fmt.Errorf("block: column %q: %w", name, err)
		}
		buf, err := column.New(typ)
		if err != nil {
			return nil, err
		}
		if err := buf.DecodeBody(r, int(numRows)); err != nil {
			return nil, fmt.Errorf("block: column %q: %w", name, err)
		}
		b.columns = append(b.columns, namedColumn{name: name, typ: typ, buf: buf})
	}
	return b, nil
}
