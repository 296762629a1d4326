package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// WriteFunc is a callback that performs database writes inside a transaction.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// BatchWriter buffers write callbacks and commits them in batched
// transactions. Flushes run synchronously on the submitting goroutine,
// which gives natural backpressure without a committer goroutine.
type BatchWriter struct {
	db  *sql.DB
	cap int

	mu     sync.Mutex
	buf    []WriteFunc
	closed bool
}

// NewBatchWriter creates a writer that flushes every bufferSize
// submissions and on Close.
func NewBatchWriter(db *sql.DB, bufferSize int) *BatchWriter {
	if bufferSize <= 0 {
		bufferSize = 10
	}
	return &BatchWriter{
		db:  db,
		cap: bufferSize,
		buf: make([]WriteFunc, 0, bufferSize),
	}
}

// Submit enqueues a write. A full buffer flushes before returning, so a
// failed transaction surfaces here.
func (bw *BatchWriter) Submit(ctx context.Context, w WriteFunc) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	bw.buf = append(bw.buf, w)
	if len(bw.buf) >= bw.cap {
		return bw.flushLocked(ctx)
	}
	return nil
}

// Flush commits any buffered writes immediately.
func (bw *BatchWriter) Flush(ctx context.Context) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	return bw.flushLocked(ctx)
}

// flushLocked assumes bw.mu is held.
func (bw *BatchWriter) flushLocked(ctx context.Context) error {
	if len(bw.buf) == 0 {
		return nil
	}
	batch := bw.buf
	bw.buf = make([]WriteFunc, 0, bw.cap)

	// Run callbacks without a transaction when no DB is configured
	// (testing convenience, mirrors a dry run).
	if bw.db == nil {
		for _, w := range batch {
			if err := w(ctx, nil); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := bw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	for _, w := range batch {
		if err := w(ctx, tx); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch (%d items): %w", len(batch), err)
	}
	return nil
}

// Close flushes remaining writes and rejects further submissions.
func (bw *BatchWriter) Close(ctx context.Context) error {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	if bw.closed {
		return ErrBatchWriterClosed
	}
	err := bw.flushLocked(ctx)
	bw.closed = true
	return err
}

// ErrBatchWriterClosed is returned on use after Close.
var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

// BatchWriterError provides a simple typed error for writer operations.
type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
