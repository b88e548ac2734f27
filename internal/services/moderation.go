package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"lamah/internal/content"
	"lamah/internal/datastore"
	"lamah/internal/interfaces"
	"lamah/internal/models"
	"lamah/internal/pkg/limiter"

	"github.com/go-redis/redis_rate/v10"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
)

// ServiceModeration runs the submission queue. A submission moves from
// pending to approved or denied exactly once; deleting it is allowed in any
// state.
type ServiceModeration struct {
	container   *do.Injector
	store       datastore.Store
	limiter     interfaces.Limiter
	locker      interfaces.Locker
	notifier    interfaces.Notifier
	config      *ServiceConfig
	dataVersion *ServiceDataVersion
	logger      logrus.FieldLogger
}

func NewServiceModeration(container *do.Injector) (*ServiceModeration, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	limiter, err := do.Invoke[interfaces.Limiter](container)
	if err != nil {
		return nil, err
	}

	locker, err := do.Invoke[interfaces.Locker](container)
	if err != nil {
		return nil, err
	}

	notifier, err := do.Invoke[interfaces.Notifier](container)
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

	return &ServiceModeration{container, store, limiter, locker, notifier, config, dataVersion, logger}, nil
}

func (service *ServiceModeration) SubmitForApproval(ctx context.Context, caller *models.Caller, categoryID string, data models.QuestionData) (string, error) {
	if caller == nil || caller.ID == "" || caller.CanWriteDirectly() {
		return "", newPermissionError(caller, "submit questions for approval")
	}
	if err := validateQuestionData(&data); err != nil {
		return "", err
	}

	perMinute, _ := service.config.GetIntConfig(ctx, CONFIG_SUBMIT_RATE_LIMIT_PER_MINUTE, DEFAULT_SUBMIT_RATE_LIMIT_PER_MINUTE)
	err := service.limiter.Allow(ctx, LimitKeySubmission(caller.ID), redis_rate.PerMinute(perMinute))
	if err != nil {
		return "", err
	}

	if _, err := getOwningCategory(ctx, service.store, categoryID); err != nil {
		return "", err
	}

	options := data.Options
	if options == nil {
		options = []string{}
	}
	pending := &models.PendingQuestion{
		ID:            service.store.NewID(datastore.CollectionPendingQuestions),
		CategoryID:    categoryID,
		Text:          data.Text,
		Answer:        data.Answer,
		Difficulty:    data.Difficulty,
		Options:       options,
		QuestionMedia: data.QuestionMedia,
		Status:        models.PendingStatusPending,
		SubmittedBy:   caller.ID,
		SubmittedAt:   time.Now().UTC(),
	}

	document, err := datastore.Encode(pending)
	if err != nil {
		return "", err
	}
	if err := service.store.Set(ctx, datastore.CollectionPendingQuestions, pending.ID, document); err != nil {
		return "", err
	}

	if err := service.notifier.NotifyPendingSubmission(ctx, pending); err != nil {
		service.logger.WithError(err).WithField("pending", pending.ID).Warn("notify moderators")
	}

	return pending.ID, nil
}

// Approve turns a pending submission into a question of categoryID, which
// may differ from the suggested one. An empty categoryID keeps the
// suggestion.
func (service *ServiceModeration) Approve(ctx context.Context, caller *models.Caller, pendingID string, categoryID string) (string, error) {
	if !caller.HasFullAccess() {
		return "", newPermissionError(caller, "approve submissions")
	}

	unlock, err := service.locker.Lock(ctx, LockKeyPendingQuestion(pendingID))
	if err != nil {
		return "", errors.Join(ErrPendingLock, err)
	}
	defer unlock()

	pending, err := service.getPending(ctx, pendingID)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(categoryID) == "" {
		categoryID = pending.CategoryID
	}
	category, err := getOwningCategory(ctx, service.store, categoryID)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	question := pending.Data().ToQuestion(category, now)
	question.ID = service.store.NewID(datastore.CollectionQuestions)
	question.TrackingID = content.GenerateTrackingID(question, category.ID)
	submittedBy := pending.SubmittedBy
	question.SubmittedBy = &submittedBy

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
	batch.Update(datastore.CollectionPendingQuestions, pendingID, map[string]any{
		"status":     models.PendingStatusApproved,
		"approvedAt": now,
		"questionId": question.ID,
	})
	service.dataVersion.BumpOp(batch)
	if err := batch.Commit(ctx); err != nil {
		return "", err
	}

	service.logger.WithFields(logrus.Fields{
		"pending":  pendingID,
		"question": question.ID,
		"category": category.ID,
	}).Info("submission approved")
	return question.ID, nil
}

func (service *ServiceModeration) Deny(ctx context.Context, caller *models.Caller, pendingID string, reason string) error {
	if !caller.HasFullAccess() {
		return newPermissionError(caller, "deny submissions")
	}

	unlock, err := service.locker.Lock(ctx, LockKeyPendingQuestion(pendingID))
	if err != nil {
		return errors.Join(ErrPendingLock, err)
	}
	defer unlock()

	if _, err := service.getPending(ctx, pendingID); err != nil {
		return err
	}

	var denialReason *string
	if reason = strings.TrimSpace(reason); reason != "" {
		denialReason = &reason
	}

	return service.store.Update(ctx, datastore.CollectionPendingQuestions, pendingID, map[string]any{
		"status":       models.PendingStatusDenied,
		"deniedAt":     time.Now().UTC(),
		"denialReason": denialReason,
	})
}

func (service *ServiceModeration) DeletePending(ctx context.Context, caller *models.Caller, pendingID string) error {
	if !caller.HasFullAccess() {
		return newPermissionError(caller, "delete submissions")
	}

	unlock, err := service.locker.Lock(ctx, LockKeyPendingQuestion(pendingID))
	if err != nil {
		return errors.Join(ErrPendingLock, err)
	}
	defer unlock()

	if _, err := datastore.GetPendingQuestion(ctx, service.store, pendingID); err != nil {
		return err
	}
	return service.store.Delete(ctx, datastore.CollectionPendingQuestions, pendingID)
}

func (service *ServiceModeration) ListPending(ctx context.Context, caller *models.Caller, status models.PendingStatus) ([]*models.PendingQuestion, error) {
	if !caller.HasFullAccess() {
		return nil, newPermissionError(caller, "review submissions")
	}
	return datastore.GetPendingQuestions(ctx, service.store, status)
}

// getPending loads a submission that is still awaiting a decision.
func (service *ServiceModeration) getPending(ctx context.Context, pendingID string) (*models.PendingQuestion, error) {
	pending, err := datastore.GetPendingQuestion(ctx, service.store, pendingID)
	if err != nil {
		return nil, err
	}
	if pending.Status != models.PendingStatusPending {
		return nil, &StateError{PendingID: pendingID, Status: pending.Status}
	}
	return pending, nil
}

// IsRateLimited reports whether err came from the submission limiter.
func IsRateLimited(err error) bool {
	return errors.Is(err, limiter.ErrRateLimited)
}
