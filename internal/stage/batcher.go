package stage

import (
	"context"
	"fmt"

	"ldp/internal/dbexec"
)

// flushThreshold is the buffer size, in bytes, beyond which a batch is
// terminated and executed rather than grown further.
const flushThreshold = 16_500_000

// Execer is the narrow surface InsertBatcher needs from a transaction.
type Execer interface {
	Exec(ctx context.Context, sql string) error
}

var _ Execer = (*dbexec.Tx)(nil)

// InsertBatcher accumulates tuples into a growing
// "INSERT INTO <loading_table> VALUES (...),(...),..." statement and
// executes it against tx once the buffer crosses flushThreshold.
type InsertBatcher struct {
	ctx         context.Context
	tx          Execer
	loadingName string
	buf         []byte
	tupleCount  int
}

// NewInsertBatcher returns a batcher targeting loadingName.
func NewInsertBatcher(ctx context.Context, tx Execer, loadingName string) *InsertBatcher {
	b := &InsertBatcher{ctx: ctx, tx: tx, loadingName: loadingName}
	b.resetPreamble()
	return b
}

func (b *InsertBatcher) resetPreamble() {
	b.buf = b.buf[:0]
	b.buf = append(b.buf, "INSERT INTO "...)
	b.buf = append(b.buf, b.loadingName...)
	b.buf = append(b.buf, " VALUES "...)
	b.tupleCount = 0
}

// Append adds one parenthesized tuple to the batch, then flushes if the
// buffer has crossed the threshold as a result.
func (b *InsertBatcher) Append(tuple []byte) error {
	if b.tupleCount > 0 {
		b.buf = append(b.buf, ',')
	}
	b.buf = append(b.buf, tuple...)
	b.tupleCount++

	if len(b.buf) > flushThreshold {
		return b.Flush()
	}
	return nil
}

// Flush terminates and executes the current batch if at least one tuple
// is pending, then starts a fresh preamble.
func (b *InsertBatcher) Flush() error {
	if b.tupleCount == 0 {
		return nil
	}
	b.buf = append(b.buf, ';')
	if err := b.tx.Exec(b.ctx, string(b.buf)); err != nil {
		return fmt.Errorf("stage: insert batch failed: %w", err)
	}
	b.resetPreamble()
	return nil
}
