package content

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lamah/internal/models"
)

func TestIndexClassify(t *testing.T) {
	existing := &models.Question{ID: "q1", Text: "What is the capital of France?", Answer: "Paris"}
	ix := NewIndex([]*models.Question{existing})

	t.Run("exact", func(t *testing.T) {
		c := ix.Classify("What is the capital of France?", "Paris")
		assert.Equal(t, KindExact, c.Kind)
		assert.Equal(t, "q1", c.Existing.ID)
	})

	t.Run("similar", func(t *testing.T) {
		c := ix.Classify("What is the capital of France?", "paris")
		assert.Equal(t, KindSimilar, c.Kind)
		assert.Equal(t, "q1", c.Existing.ID)
	})

	t.Run("new", func(t *testing.T) {
		c := ix.Classify("What is the capital of Spain?", "Madrid")
		assert.Equal(t, KindNew, c.Kind)
		assert.Nil(t, c.Existing)
	})

	t.Run("no normalization", func(t *testing.T) {
		c := ix.Classify("what is the capital of france?", "Paris")
		assert.Equal(t, KindNew, c.Kind)
	})
}

func TestIndexAccept(t *testing.T) {
	ix := NewIndex(nil)
	assert.Equal(t, KindNew, ix.Classify("Q", "A").Kind)

	ix.Accept(&models.Question{Text: "Q", Answer: "A"})
	assert.Equal(t, KindExact, ix.Classify("Q", "A").Kind)
	assert.Equal(t, KindSimilar, ix.Classify("Q", "B").Kind)
	assert.Equal(t, 1, ix.Len())
}

func TestClassKindString(t *testing.T) {
	assert.Equal(t, "exact", KindExact.String())
	assert.Equal(t, "similar", KindSimilar.String())
	assert.Equal(t, "new", KindNew.String())
}
