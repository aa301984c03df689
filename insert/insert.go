// Package insert implements the bulk-insert pipeline described in
// spec.md §4.7: sample-block schema resolution, row batching, and
// back-pressured block emission over a session.
package insert

import (
	"fmt"
	"strings"

	"github.com/vektorlab/chwire/block"
	"github.com/vektorlab/chwire/chtype"
	"github.com/vektorlab/chwire/session"
)

// DefaultBatchSize is the row count at which a working block is
// flushed, per spec.md §4.7.
const DefaultBatchSize = 10_000

// DefaultYieldEvery is the row interval at which the streaming
// ingestion mode cooperatively yields, per spec.md §5.
const DefaultYieldEvery = 100_000

// Field describes one row field's binding to a target column.
type Field struct {
	Name         string
	TypeOverride string // optional server type expression override
	Nullable     bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithBatchSize overrides DefaultBatchSize.
func WithBatchSize(n int) Option { return func(p *Pipeline) { p.batchSize = n } }

// Pipeline drives one bulk INSERT: schema resolution against the
// server's sample block, then batched, back-pressured row submission.
type Pipeline struct {
	sess      *session.Session
	fields    []Field
	sample    *block.Block
	ordinals  []int // fields[i] -> sample column index
	working   *block.Block
	batchSize int
	closed    bool
}

// New starts a bulk insert against table, resolving fields against
// the server's sample block. It sends `INSERT INTO table (cols) VALUES`
// with no rows, per spec.md §4.7 step 1.
func New(sess *session.Session, table string, fields []Field, opts ...Option) (*Pipeline, error) {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES", table, strings.Join(names, ", "))

	result, err := sess.StartQuery(session.NewQuery(sql))
	if err != nil {
		return nil, err
	}
	sample, err := result.Next()
	if err != nil {
		return nil, err
	}
	if sample == nil {
		return nil, &ErrSchemaMismatch{Reason: "server returned no sample block"}
	}

	ordinals := make([]int, len(fields))
	sampleNames := sample.ColumnNames()
	byLowerName := make(map[string]int, len(sampleNames))
	for i, n := range sampleNames {
		byLowerName[strings.ToLower(n)] = i
	}
	for i, f := range fields {
		idx, ok := byLowerName[strings.ToLower(f.Name)]
		if !ok {
			return nil, &ErrSchemaMismatch{Reason: fmt.Sprintf("no sample column named %q", f.Name)}
		}
		if err := checkCompatible(sample.ColumnType(idx), f); err != nil {
			return nil, err
		}
		ordinals[i] = idx
	}

	if err := sess.EnterInsertReady(); err != nil {
		return nil, err
	}

	working, err := cloneSchema(sample)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		sess:      sess,
		fields:    fields,
		sample:    sample,
		ordinals:  ordinals,
		working:   working,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func cloneSchema(sample *block.Block) (*block.Block, error) {
	b := block.New()
	for i, name := range sample.ColumnNames() {
		if err := b.AddColumn(name, sample.ColumnType(i)); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// checkCompatible reports a schema mismatch when an override type is
// present and its head kind disagrees with the sample's.
func checkCompatible(sampleType *chtype.Descriptor, f Field) error {
	if f.TypeOverride == "" {
		return nil
	}
	override, err := chtype.Parse(f.TypeOverride)
	if err != nil {
		return &ErrSchemaMismatch{Reason: fmt.Sprintf("field %q: invalid type override %q: %v", f.Name, f.TypeOverride, err)}
	}
	if override.Kind != sampleType.Kind {
		return &ErrSchemaMismatch{Reason: fmt.Sprintf(
			"field %q: override type %s incompatible with sample type %s", f.Name, override.Kind, sampleType.Kind)}
	}
	return nil
}

// AppendRow appends one row, with values in Field order (the order
// passed to New, not necessarily the sample block's column order).
func (p *Pipeline) AppendRow(vals []any) error {
	if p.closed {
		return ErrAlreadyClosed
	}
	if len(vals) != len(p.fields) {
		return fmt.Errorf("insert: AppendRow got %d values, want %d", len(vals), len(p.fields))
	}
	mapped := make([]any, p.working.NumColumns())
	for i, v := range vals {
		mapped[p.ordinals[i]] = v
	}
	if err := p.working.AppendRow(mapped); err != nil {
		return err
	}
	if p.working.NumRows() >= p.batchSize {
		return p.Flush()
	}
	return nil
}

// Flush sends the accumulated working block, if non-empty, and starts
// a fresh one.
func (p *Pipeline) Flush() error {
	if p.working.NumRows() == 0 {
		return nil
	}
	if err := p.sess.SendDataBlock(p.working); err != nil {
		return err
	}
	working, err := cloneSchema(p.sample)
	if err != nil {
		return err
	}
	p.working = working
	return nil
}

// Complete flushes any partial block, sends the empty terminator
// block, and awaits EndOfStream, per spec.md §4.7 step 4. On a server
// Exception the pipeline fails fast and the session returns to Idle.
func (p *Pipeline) Complete() error {
	if p.closed {
		return ErrAlreadyClosed
	}
	p.closed = true
	if err := p.Flush(); err != nil {
		return err
	}
	return p.sess.FinishInsert()
}

// InsertBatch ingests a fully materialized sequence of rows in one
// call, per spec.md §4.7's batched ingestion mode.
func InsertBatch(sess *session.Session, table string, fields []Field, rows [][]any, opts ...Option) error {
	p, err := New(sess, table, fields, opts...)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := p.AppendRow(row); err != nil {
			return err
		}
	}
	return p.Complete()
}

// InsertStream ingests rows from next, a pull-based iterator that
// returns (nil, nil) to signal the end of the sequence. It yields
// cooperatively every yieldEvery rows, per spec.md §4.7/§5's streaming
// ingestion mode.
func InsertStream(sess *session.Session, table string, fields []Field, next func() ([]any, error), yieldEvery int, opts ...Option) error {
	if yieldEvery <= 0 {
		yieldEvery = DefaultYieldEvery
	}
	p, err := New(sess, table, fields, opts...)
	if err != nil {
		return err
	}
	count := 0
	for {
		row, err := next()
		if err != nil {
			return err
		}
		if row == nil {
			break
		}
		if err := p.AppendRow(row); err != nil {
			return err
		}
		count++
		if count%yieldEvery == 0 {
			yield()
		}
	}
	return p.Complete()
}
