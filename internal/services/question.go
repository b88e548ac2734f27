package services

import (
	"context"
	"errors"
	"time"

	"lamah/internal/content"
	"lamah/internal/datastore"
	"lamah/internal/models"

	"github.com/samber/do"
	"github.com/sirupsen/logrus"
)

type ServiceQuestion struct {
	container   *do.Injector
	store       datastore.Store
	config      *ServiceConfig
	dataVersion *ServiceDataVersion
	logger      logrus.FieldLogger
}

func NewServiceQuestion(container *do.Injector) (*ServiceQuestion, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	config, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	dataVersion, err := do.Invoke[*ServiceDataVersion](container)
	if err != nil {
		return nil, err
	}

	logger, err := do.Invoke[*logrus.Entry](container)
	if err != nil {
		return nil, err
	}

	return &ServiceQuestion{container, store, config, dataVersion, logger}, nil
}

func (service *ServiceQuestion) GetQuestion(ctx context.Context, questionID string) (*models.Question, error) {
	return datastore.GetQuestion(ctx, service.store, questionID)
}

// AddSingleQuestion writes one question straight into a category together
// with the category index update and a version bump.
func (service *ServiceQuestion) AddSingleQuestion(ctx context.Context, caller *models.Caller, categoryID string, data models.QuestionData) (string, error) {
	if !caller.CanWriteDirectly() {
		return "", newPermissionError(caller, "add questions directly")
	}
	if err := validateQuestionData(&data); err != nil {
		return "", err
	}

	category, err := getOwningCategory(ctx, service.store, categoryID)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	question := data.ToQuestion(category, now)
	question.ID = service.store.NewID(datastore.CollectionQuestions)
	question.TrackingID = content.GenerateTrackingID(question, category.ID)

	op, err := datastore.SetQuestionOp(question)
	if err != nil {
		return "", err
	}

	batch := service.store.Batch()
	op.Apply(batch)
	batch.Update(datastore.CollectionCategories, category.ID, map[string]any{
		"questionIds": withTrackingID(category.QuestionIDs, question.TrackingID),
		"updatedAt":   now,
	})
	service.dataVersion.BumpOp(batch)
	if err := batch.Commit(ctx); err != nil {
		return "", err
	}

	return question.ID, nil
}

func (service *ServiceQuestion) UpdateQuestion(ctx context.Context, caller *models.Caller, questionID string, patch models.QuestionPatch) (*models.Question, error) {
	if !caller.CanWriteDirectly() {
		return nil, newPermissionError(caller, "edit questions")
	}

	question, err := datastore.GetQuestion(ctx, service.store, questionID)
	if err != nil {
		return nil, err
	}

	data := question.Data()
	if patch.Text != nil {
		data.Text = *patch.Text
	}
	if patch.Answer != nil {
		data.Answer = *patch.Answer
	}
	if patch.Difficulty != nil {
		data.Difficulty = *patch.Difficulty
	}
	if patch.Options != nil {
		data.Options = patch.Options
	}
	if err := validateQuestionData(&data); err != nil {
		return nil, err
	}

	updated := data.ToQuestion(nil, question.CreatedAt)
	fields := map[string]any{
		"text":       updated.Text,
		"answer":     updated.Answer,
		"difficulty": updated.Difficulty,
		"points":     updated.Points,
		"options":    updated.Options,
		"type":       updated.Type,
		"updatedAt":  time.Now().UTC(),
	}

	batch := service.store.Batch()
	batch.Update(datastore.CollectionQuestions, questionID, fields)
	service.dataVersion.BumpOp(batch)
	if err := batch.Commit(ctx); err != nil {
		return nil, err
	}

	return datastore.GetQuestion(ctx, service.store, questionID)
}

func (service *ServiceQuestion) DeleteQuestion(ctx context.Context, caller *models.Caller, questionID string) error {
	if !caller.CanWriteDirectly() {
		return newPermissionError(caller, "delete questions")
	}

	question, err := datastore.GetQuestion(ctx, service.store, questionID)
	if err != nil {
		return err
	}

	batch := service.store.Batch()
	batch.Delete(datastore.CollectionQuestions, questionID)
	category, err := datastore.GetCategory(ctx, service.store, question.CategoryID)
	switch {
	case err == nil:
		batch.Update(datastore.CollectionCategories, category.ID, map[string]any{
			"questionIds": withoutTrackingID(category.QuestionIDs, question.TrackingID),
			"updatedAt":   time.Now().UTC(),
		})
	case !errors.Is(err, datastore.ErrNotFound):
		return err
	}
	service.dataVersion.BumpOp(batch)

	return batch.Commit(ctx)
}

// SetVerification flags questions as verified or not. Chunks are spaced out
// by the configured delay to stay under the store's write rate.
func (service *ServiceQuestion) SetVerification(ctx context.Context, caller *models.Caller, questionIDs []string, verified bool) (*BatchResult, error) {
	if !caller.CanWriteDirectly() {
		return nil, newPermissionError(caller, "verify questions")
	}

	delayMS, _ := service.config.GetIntConfig(ctx, CONFIG_VERIFY_BATCH_DELAY_MS, DEFAULT_VERIFY_BATCH_DELAY_MS)

	now := time.Now().UTC()
	var verifiedAt *time.Time
	if verified {
		verifiedAt = &now
	}

	ops := make([]datastore.Op, 0, len(questionIDs))
	for _, id := range questionIDs {
		ops = append(ops, datastore.UpdateOp(datastore.CollectionQuestions, id, map[string]any{
			"verified":   verified,
			"verifiedAt": verifiedAt,
			"updatedAt":  now,
		}))
	}

	writer := batchWriter(ctx, service.store, service.config, service.logger).
		WithDelay(time.Duration(delayMS) * time.Millisecond)
	result := writer.Commit(ctx, ops)

	if result.Succeeded > 0 {
		if err := service.dataVersion.BumpDataVersion(ctx); err != nil {
			service.logger.WithError(err).Error("bump data version after verification")
		}
	}
	return result, nil
}
