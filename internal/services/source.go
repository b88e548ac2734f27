package services

import (
	"context"
	"errors"
	"strings"

	"lamah/internal/content"
	"lamah/internal/datastore"
	"lamah/internal/models"

	"github.com/sirupsen/logrus"
)

// storeSource exposes the document store to the composition resolver.
type storeSource struct {
	store datastore.Store
}

var _ content.Source = storeSource{}

func (s storeSource) Category(ctx context.Context, id string) (*models.Category, error) {
	category, err := datastore.GetCategory(ctx, s.store, id)
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, nil
	}
	return category, err
}

func (s storeSource) QuestionsByCategory(ctx context.Context, categoryID string) ([]*models.Question, error) {
	return datastore.GetQuestionsByCategory(ctx, s.store, categoryID)
}

func batchWriter(ctx context.Context, store datastore.Store, config *ServiceConfig, logger logrus.FieldLogger) *BatchWriter {
	limit, _ := config.GetIntConfig(ctx, CONFIG_BATCH_LIMIT, DEFAULT_BATCH_LIMIT)
	return NewBatchWriter(store, limit, logger)
}

func validateQuestionData(data *models.QuestionData) error {
	data.Text = strings.TrimSpace(data.Text)
	data.Answer = strings.TrimSpace(data.Answer)

	if data.Text == "" {
		return &ValidationError{Field: "text", Reason: "must not be empty"}
	}
	if data.Answer == "" {
		return &ValidationError{Field: "answer", Reason: "must not be empty"}
	}
	if data.Difficulty == "" {
		data.Difficulty = models.QuestionEasy
	}
	if !data.Difficulty.Valid() {
		if d, ok := models.ParseDifficulty(string(data.Difficulty)); ok {
			data.Difficulty = d
		} else {
			return &ValidationError{Field: "difficulty", Reason: "must be easy, medium or hard"}
		}
	}
	return nil
}

// getOwningCategory loads the category a question is written into. Merged
// categories are rejected since their questions belong to their sources.
func getOwningCategory(ctx context.Context, store datastore.Store, categoryID string) (*models.Category, error) {
	category, err := datastore.GetCategory(ctx, store, categoryID)
	if err != nil {
		return nil, err
	}
	if category.IsMergedCategory {
		return nil, &CategoryConflictError{CategoryID: categoryID, Reason: ErrMergedCategoryTarget.Error()}
	}
	return category, nil
}

func withTrackingID(ids []string, trackingID string) []string {
	out := make([]string, 0, len(ids)+1)
	out = append(out, ids...)
	for _, id := range ids {
		if id == trackingID {
			return out
		}
	}
	return append(out, trackingID)
}

func withoutTrackingID(ids []string, trackingID string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != trackingID {
			out = append(out, id)
		}
	}
	return out
}
