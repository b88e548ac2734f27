package services

import (
	"context"
	"time"

	"lamah/internal/datastore"

	"github.com/sirupsen/logrus"
)

type BatchResult struct {
	Succeeded int
	Chunks    []int
	Errors    []*WriteError
}

// Failed reports whether the op at index i belonged to a failed chunk.
func (r *BatchResult) Failed(i int) bool {
	return r.ErrorAt(i) != nil
}

// ErrorAt returns the error of the chunk holding op i, or nil.
func (r *BatchResult) ErrorAt(i int) *WriteError {
	for _, e := range r.Errors {
		if i >= e.Start && i < e.End {
			return e
		}
	}
	return nil
}

func (r *BatchResult) ErrorStrings() []string {
	errs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		errs = append(errs, e.Error())
	}
	return errs
}

// BatchWriter commits operations in sequential chunks no larger than the
// store allows. A failed chunk is recorded and the writer moves on; chunks
// already committed stay committed.
type BatchWriter struct {
	store  datastore.Store
	limit  int
	delay  time.Duration
	logger logrus.FieldLogger

	onChunk func(done int)
}

func NewBatchWriter(store datastore.Store, limit int, logger logrus.FieldLogger) *BatchWriter {
	if maxSize := store.MaxBatchSize(); limit <= 0 || limit > maxSize {
		limit = maxSize
	}
	return &BatchWriter{store: store, limit: limit, logger: logger}
}

// WithDelay returns a writer that pauses between chunks.
func (w *BatchWriter) WithDelay(delay time.Duration) *BatchWriter {
	clone := *w
	clone.delay = delay
	return &clone
}

// WithProgress returns a writer that reports the number of ops handled after
// every chunk, failed or not.
func (w *BatchWriter) WithProgress(fn func(done int)) *BatchWriter {
	clone := *w
	clone.onChunk = fn
	return &clone
}

func (w *BatchWriter) Limit() int {
	return w.limit
}

func (w *BatchWriter) Commit(ctx context.Context, ops []datastore.Op) *BatchResult {
	result := &BatchResult{Chunks: []int{}, Errors: []*WriteError{}}

	chunk := 0
	for start := 0; start < len(ops); start += w.limit {
		end := start + w.limit
		if end > len(ops) {
			end = len(ops)
		}

		if chunk > 0 && w.delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(w.delay):
			}
		}

		err := ctx.Err()
		if err == nil {
			batch := w.store.Batch()
			for _, op := range ops[start:end] {
				op.Apply(batch)
			}
			err = batch.Commit(ctx)
		}

		if err != nil {
			writeErr := &WriteError{Chunk: chunk, Start: start, End: end, Err: err}
			w.logger.WithError(err).WithFields(logrus.Fields{
				"chunk": chunk,
				"start": start,
				"end":   end,
			}).Error("batch chunk failed")
			result.Errors = append(result.Errors, writeErr)
		} else {
			result.Succeeded += end - start
			result.Chunks = append(result.Chunks, end-start)
		}
		chunk++

		if w.onChunk != nil {
			w.onChunk(end)
		}
	}

	return result
}
