package content

import (
	"context"

	"lamah/internal/models"
)

// Source gives the resolver read access to categories and their questions.
// Category returns nil, nil for an id that does not exist.
type Source interface {
	Category(ctx context.Context, id string) (*models.Category, error)
	QuestionsByCategory(ctx context.Context, categoryID string) ([]*models.Question, error)
}

// Node is a category as seen by a reader: either it owns its questions or
// it is a live union of other categories.
type Node interface {
	CategoryID() string
	ResolveQuestions(ctx context.Context, src Source) ([]*models.Question, error)
}

type SimpleCategory struct {
	ID string
}

func (c SimpleCategory) CategoryID() string {
	return c.ID
}

func (c SimpleCategory) ResolveQuestions(ctx context.Context, src Source) ([]*models.Question, error) {
	questions, err := src.QuestionsByCategory(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if questions == nil {
		questions = []*models.Question{}
	}
	return questions, nil
}

type MergedCategory struct {
	ID        string
	SourceIDs []string
}

func (c MergedCategory) CategoryID() string {
	return c.ID
}

// ResolveQuestions concatenates the current questions of every source in
// source order. Sources that no longer exist are skipped.
func (c MergedCategory) ResolveQuestions(ctx context.Context, src Source) ([]*models.Question, error) {
	return c.resolve(ctx, src, map[string]bool{c.ID: true})
}

func (c MergedCategory) resolve(ctx context.Context, src Source, visited map[string]bool) ([]*models.Question, error) {
	questions := []*models.Question{}
	for _, id := range c.SourceIDs {
		if visited[id] {
			continue
		}
		visited[id] = true

		category, err := src.Category(ctx, id)
		if err != nil {
			return nil, err
		}
		if category == nil {
			continue
		}

		var resolved []*models.Question
		switch node := NodeFor(category).(type) {
		case MergedCategory:
			resolved, err = node.resolve(ctx, src, visited)
		default:
			resolved, err = node.ResolveQuestions(ctx, src)
		}
		if err != nil {
			return nil, err
		}
		questions = append(questions, resolved...)
	}
	return questions, nil
}

func NodeFor(c *models.Category) Node {
	if c.IsMergedCategory {
		return MergedCategory{ID: c.ID, SourceIDs: c.SourceCategoryIDs}
	}
	return SimpleCategory{ID: c.ID}
}
