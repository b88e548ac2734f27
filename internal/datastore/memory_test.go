package datastore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lamah/internal/models"
)

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Add(ctx, CollectionQuestions, map[string]any{"text": "a", "categoryId": "c1"})
	require.NoError(t, err)
	assert.Len(t, id, 32)

	require.NoError(t, store.Set(ctx, CollectionQuestions, "q2", map[string]any{"text": "b", "categoryId": "c2"}))
	require.NoError(t, store.Set(ctx, CollectionQuestions, "q3", map[string]any{"text": "c", "categoryId": "c1"}))

	doc, err := store.Get(ctx, CollectionQuestions, id)
	require.NoError(t, err)
	assert.Equal(t, "a", doc.Data["text"])

	docs, err := store.Query(ctx, CollectionQuestions, Eq("categoryId", "c1"))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, id, docs[0].ID)
	assert.Equal(t, "q3", docs[1].ID)

	require.NoError(t, store.Update(ctx, CollectionQuestions, "q2", map[string]any{"text": "B"}))
	doc, err = store.Get(ctx, CollectionQuestions, "q2")
	require.NoError(t, err)
	assert.Equal(t, "B", doc.Data["text"])
	assert.Equal(t, "c2", doc.Data["categoryId"])

	assert.ErrorIs(t, store.Update(ctx, CollectionQuestions, "missing", map[string]any{"x": 1}), ErrNotFound)

	require.NoError(t, store.Delete(ctx, CollectionQuestions, "q2"))
	_, err = store.Get(ctx, CollectionQuestions, "q2")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, store.Delete(ctx, CollectionQuestions, "q2"))
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data := map[string]any{"tags": []any{"x"}}
	require.NoError(t, store.Set(ctx, CollectionConfig, "k", data))

	data["tags"] = []any{"mutated"}
	doc, err := store.Get(ctx, CollectionConfig, "k")
	require.NoError(t, err)
	doc.Data["tags"] = "changed"

	doc, err = store.Get(ctx, CollectionConfig, "k")
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, doc.Data["tags"])
}

func TestMemoryBatchAtomic(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Set(ctx, CollectionCategories, "c1", map[string]any{"name": "one"}))

	batch := store.Batch()
	batch.Set(CollectionQuestions, "q1", map[string]any{"text": "x"})
	batch.Update(CollectionCategories, "c1", map[string]any{"name": "renamed"})
	batch.Update(CollectionCategories, "missing", map[string]any{"name": "boom"})
	assert.Equal(t, 3, batch.Len())

	err := batch.Commit(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(ctx, CollectionQuestions, "q1")
	assert.ErrorIs(t, err, ErrNotFound)
	doc, err := store.Get(ctx, CollectionCategories, "c1")
	require.NoError(t, err)
	assert.Equal(t, "one", doc.Data["name"])
}

func TestMemoryBatchLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().WithMaxBatchSize(2)
	assert.Equal(t, 2, store.MaxBatchSize())

	batch := store.Batch()
	for _, id := range []string{"a", "b", "c"} {
		batch.Set(CollectionQuestions, id, map[string]any{})
	}
	require.Error(t, batch.Commit(ctx))

	docs, err := store.Query(ctx, CollectionQuestions)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDataVersionIncrement(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	dv, err := GetDataVersion(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, int64(0), dv.Version)

	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		batch := store.Batch()
		batch.Increment(CollectionMeta, DocDataVersion, "version", 1, map[string]any{"lastUpdated": now})
		require.NoError(t, batch.Commit(ctx))
	}

	dv, err = GetDataVersion(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, int64(3), dv.Version)
	assert.True(t, now.Equal(dv.LastUpdated))
}

func TestTypedHelpers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now().UTC().Truncate(time.Second)

	category := models.CategoryData{Name: "History"}.ToCategory("history", now)
	op, err := SetCategoryOp(category)
	require.NoError(t, err)
	_, hasID := op.Data["id"]
	assert.False(t, hasID)

	question := models.QuestionData{Text: "Q", Answer: "A", Difficulty: models.QuestionHard}.ToQuestion(category, now)
	question.ID = store.NewID(CollectionQuestions)
	qop, err := SetQuestionOp(question)
	require.NoError(t, err)
	assert.Nil(t, qop.Data["questionImageUrl"])
	_, present := qop.Data["questionImageUrl"]
	assert.True(t, present)

	batch := store.Batch()
	op.Apply(batch)
	qop.Apply(batch)
	require.NoError(t, batch.Commit(ctx))

	gotCategory, err := GetCategory(ctx, store, "history")
	require.NoError(t, err)
	assert.Equal(t, "History", gotCategory.Name)
	assert.True(t, gotCategory.ShowImageInQuestion)

	questions, err := GetQuestionsByCategory(ctx, store, "history")
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, question.ID, questions[0].ID)
	assert.Equal(t, 600, questions[0].Points)
	assert.Equal(t, []string{}, questions[0].Options)
}
