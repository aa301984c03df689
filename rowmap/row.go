// Package rowmap implements the dynamic row accessor and the
// schema-bound struct mapper described in spec.md §9: a small value
// type over a block and row index, and a mapper that resolves field
// ordinals and converters once per (row type, schema) pair.
package rowmap

import (
	"fmt"
	"strings"

	"github.com/vektorlab/chwire/block"
)

// Row is a name-indexed view over one row of a block. It holds only a
// reference and an index — no per-row allocation — per spec.md §9's
// "not a boxed dictionary per row" note.
type Row struct {
	b   *block.Block
	idx int
}

// NewRow returns a Row over block b at row index idx.
func NewRow(b *block.Block, idx int) Row { return Row{b: b, idx: idx} }

// Get resolves a column by name, case-insensitively, and returns its
// decoded value for this row.
func (r Row) Get(name string) (any, error) {
	for i, colName := range r.b.ColumnNames() {
		if strings.EqualFold(colName, name) {
			return r.b.ColumnAt(i).At(r.idx)
		}
	}
	return nil, fmt.Errorf("rowmap: no column named %q", name)
}

// At resolves a column by ordinal and returns its decoded value for
// this row.
func (r Row) At(ordinal int) (any, error) {
	return r.b.ColumnAt(ordinal).At(r.idx)
}

// NumColumns returns the row's column count.
func (r Row) NumColumns() int { return r.b.NumColumns() }
