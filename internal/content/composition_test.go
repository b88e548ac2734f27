package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lamah/internal/models"
)

type mapSource struct {
	categories map[string]*models.Category
	questions  map[string][]*models.Question
}

func (s *mapSource) Category(ctx context.Context, id string) (*models.Category, error) {
	return s.categories[id], nil
}

func (s *mapSource) QuestionsByCategory(ctx context.Context, categoryID string) ([]*models.Question, error) {
	return s.questions[categoryID], nil
}

func questionIDs(qs []*models.Question) []string {
	ids := make([]string, 0, len(qs))
	for _, q := range qs {
		ids = append(ids, q.ID)
	}
	return ids
}

func TestResolveQuestions(t *testing.T) {
	ctx := context.Background()
	src := &mapSource{
		categories: map[string]*models.Category{
			"a": {ID: "a"},
			"b": {ID: "b"},
			"m": {ID: "m", IsMergedCategory: true, SourceCategoryIDs: []string{"a", "gone", "b"}},
		},
		questions: map[string][]*models.Question{
			"a": {{ID: "a1"}, {ID: "a2"}},
			"b": {{ID: "b1"}},
		},
	}

	t.Run("simple", func(t *testing.T) {
		qs, err := NodeFor(src.categories["a"]).ResolveQuestions(ctx, src)
		require.NoError(t, err)
		assert.Equal(t, []string{"a1", "a2"}, questionIDs(qs))
	})

	t.Run("simple without questions", func(t *testing.T) {
		qs, err := SimpleCategory{ID: "empty"}.ResolveQuestions(ctx, src)
		require.NoError(t, err)
		assert.NotNil(t, qs)
		assert.Empty(t, qs)
	})

	t.Run("merged skips dangling sources", func(t *testing.T) {
		node := NodeFor(src.categories["m"])
		assert.Equal(t, "m", node.CategoryID())
		qs, err := node.ResolveQuestions(ctx, src)
		require.NoError(t, err)
		assert.Equal(t, []string{"a1", "a2", "b1"}, questionIDs(qs))
	})

	t.Run("merged is live", func(t *testing.T) {
		src.questions["b"] = append(src.questions["b"], &models.Question{ID: "b2"})
		qs, err := NodeFor(src.categories["m"]).ResolveQuestions(ctx, src)
		require.NoError(t, err)
		assert.Len(t, qs, 4)
	})

	t.Run("cycle terminates", func(t *testing.T) {
		cyclic := &mapSource{
			categories: map[string]*models.Category{
				"x": {ID: "x", IsMergedCategory: true, SourceCategoryIDs: []string{"y"}},
				"y": {ID: "y", IsMergedCategory: true, SourceCategoryIDs: []string{"x", "z"}},
				"z": {ID: "z"},
			},
			questions: map[string][]*models.Question{"z": {{ID: "z1"}}},
		}
		qs, err := NodeFor(cyclic.categories["x"]).ResolveQuestions(ctx, cyclic)
		require.NoError(t, err)
		assert.Equal(t, []string{"z1"}, questionIDs(qs))
	})
}
