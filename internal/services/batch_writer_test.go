package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"lamah/internal/datastore"
	"lamah/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionOps(n int) []datastore.Op {
	ops := make([]datastore.Op, 0, n)
	for i := 0; i < n; i++ {
		ops = append(ops, datastore.SetOp(datastore.CollectionQuestions, fmt.Sprintf("q%04d", i), map[string]any{
			"text": fmt.Sprintf("question %d", i),
		}))
	}
	return ops
}

func TestBatchWriterChunks(t *testing.T) {
	store := &recordingStore{Store: datastore.NewMemoryStore()}

	var progress []int
	writer := NewBatchWriter(store, 500, logger.Discard()).WithProgress(func(done int) {
		progress = append(progress, done)
	})
	result := writer.Commit(context.Background(), questionOps(1200))

	assert.Equal(t, 1200, result.Succeeded)
	assert.Equal(t, []int{500, 500, 200}, result.Chunks)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []int{500, 500, 200}, store.commits)
	assert.Equal(t, []int{500, 1000, 1200}, progress)

	docs, err := store.Query(context.Background(), datastore.CollectionQuestions)
	require.NoError(t, err)
	assert.Len(t, docs, 1200)
}

func TestBatchWriterClampsLimit(t *testing.T) {
	store := datastore.NewMemoryStore().WithMaxBatchSize(10)

	assert.Equal(t, 10, NewBatchWriter(store, 500, logger.Discard()).Limit())
	assert.Equal(t, 10, NewBatchWriter(store, 0, logger.Discard()).Limit())
	assert.Equal(t, 4, NewBatchWriter(store, 4, logger.Discard()).Limit())
}

func TestBatchWriterFailedChunk(t *testing.T) {
	store := &recordingStore{Store: datastore.NewMemoryStore()}
	store.failWhen = setsQuestionText("question 4")

	result := NewBatchWriter(store, 3, logger.Discard()).Commit(context.Background(), questionOps(8))

	assert.Equal(t, 5, result.Succeeded)
	assert.Equal(t, []int{3, 2}, result.Chunks)
	require.Len(t, result.Errors, 1)

	writeErr := result.Errors[0]
	assert.Equal(t, 1, writeErr.Chunk)
	assert.Equal(t, 3, writeErr.Start)
	assert.Equal(t, 6, writeErr.End)
	assert.Contains(t, writeErr.Error(), "chunk 1 (ops 3-5)")
	assert.EqualError(t, errors.Unwrap(writeErr), "injected commit failure")

	assert.False(t, result.Failed(2))
	assert.True(t, result.Failed(3))
	assert.True(t, result.Failed(5))
	assert.False(t, result.Failed(6))

	_, err := store.Get(context.Background(), datastore.CollectionQuestions, "q0004")
	assert.ErrorIs(t, err, datastore.ErrNotFound)
	_, err = store.Get(context.Background(), datastore.CollectionQuestions, "q0007")
	assert.NoError(t, err)
}

func TestBatchWriterDelay(t *testing.T) {
	store := datastore.NewMemoryStore()
	writer := NewBatchWriter(store, 2, logger.Discard()).WithDelay(25 * time.Millisecond)

	start := time.Now()
	result := writer.Commit(context.Background(), questionOps(6))

	assert.Equal(t, 6, result.Succeeded)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestBatchWriterCanceled(t *testing.T) {
	store := datastore.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewBatchWriter(store, 2, logger.Discard()).Commit(ctx, questionOps(5))

	assert.Zero(t, result.Succeeded)
	require.Len(t, result.Errors, 3)
	for _, e := range result.Errors {
		assert.ErrorIs(t, e, context.Canceled)
	}
}

func TestBatchWriterEmpty(t *testing.T) {
	result := NewBatchWriter(datastore.NewMemoryStore(), 10, logger.Discard()).Commit(context.Background(), nil)

	assert.Zero(t, result.Succeeded)
	assert.Empty(t, result.Chunks)
	assert.Empty(t, result.ErrorStrings())
}
