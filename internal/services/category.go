package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"lamah/internal/content"
	"lamah/internal/datastore"
	"lamah/internal/models"
	"lamah/internal/pkg/caching"

	"github.com/samber/do"
	"github.com/sirupsen/logrus"
)

type ServiceCategory struct {
	container   *do.Injector
	store       datastore.Store
	cache       caching.Cache
	config      *ServiceConfig
	dataVersion *ServiceDataVersion
	logger      logrus.FieldLogger
}

func NewServiceCategory(container *do.Injector) (*ServiceCategory, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
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

	return &ServiceCategory{container, store, cache, config, dataVersion, logger}, nil
}

func (service *ServiceCategory) GetCategory(ctx context.Context, categoryID string) (*models.Category, error) {
	return datastore.GetCategory(ctx, service.store, categoryID)
}

func (service *ServiceCategory) ListCategories(ctx context.Context) ([]*models.Category, error) {
	version, err := service.dataVersion.GetDataVersion(ctx)
	if err != nil {
		return nil, err
	}

	callback := func() ([]*models.Category, error) {
		return datastore.GetCategories(ctx, service.store)
	}

	return caching.UseCache(ctx, service.cache, caching.VersionedKey(version, DBKeyCategories()), CACHE_TTL_15_MINS, callback)
}

// MergeCandidates lists the categories that may be used as merge sources.
func (service *ServiceCategory) MergeCandidates(ctx context.Context) ([]*models.Category, error) {
	categories, err := service.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]*models.Category, 0, len(categories))
	for _, category := range categories {
		if !category.IsMergedCategory {
			candidates = append(candidates, category)
		}
	}
	return candidates, nil
}

func (service *ServiceCategory) CreateCategory(ctx context.Context, caller *models.Caller, data models.CategoryData) (*models.Category, error) {
	if !caller.CanWriteDirectly() {
		return nil, newPermissionError(caller, "create categories")
	}

	data.Name = strings.TrimSpace(data.Name)
	if data.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	id := content.CategoryIDFromName(data.Name)
	if err := service.ensureCategoryAbsent(ctx, id); err != nil {
		return nil, err
	}

	category := data.ToCategory(id, time.Now().UTC())
	op, err := datastore.SetCategoryOp(category)
	if err != nil {
		return nil, err
	}

	batch := service.store.Batch()
	op.Apply(batch)
	service.dataVersion.BumpOp(batch)
	if err := batch.Commit(ctx); err != nil {
		return nil, err
	}

	return category, nil
}

func (service *ServiceCategory) UpdateCategory(ctx context.Context, caller *models.Caller, categoryID string, patch models.CategoryPatch) (*models.Category, error) {
	if !caller.CanWriteDirectly() {
		return nil, newPermissionError(caller, "edit categories")
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
		}
		patch.Name = &name
	}

	if _, err := datastore.GetCategory(ctx, service.store, categoryID); err != nil {
		return nil, err
	}

	fields := patch.Fields()
	fields["updatedAt"] = time.Now().UTC()

	batch := service.store.Batch()
	batch.Update(datastore.CollectionCategories, categoryID, fields)
	service.dataVersion.BumpOp(batch)
	if err := batch.Commit(ctx); err != nil {
		return nil, err
	}

	return datastore.GetCategory(ctx, service.store, categoryID)
}

// DeleteCategory removes a category and the questions it owns. Merged
// categories that list it as a source are left alone and resolve to a
// smaller union afterwards. If any question chunk fails the category
// document is kept so the call can be repeated.
func (service *ServiceCategory) DeleteCategory(ctx context.Context, caller *models.Caller, categoryID string) (int, error) {
	if !caller.CanWriteDirectly() {
		return 0, newPermissionError(caller, "delete categories")
	}

	category, err := datastore.GetCategory(ctx, service.store, categoryID)
	if err != nil {
		return 0, err
	}

	deleted := 0
	if !category.IsMergedCategory {
		questions, err := datastore.GetQuestionsByCategory(ctx, service.store, categoryID)
		if err != nil {
			return 0, err
		}

		ops := make([]datastore.Op, 0, len(questions))
		for _, question := range questions {
			ops = append(ops, datastore.DeleteOp(datastore.CollectionQuestions, question.ID))
		}

		result := batchWriter(ctx, service.store, service.config, service.logger).Commit(ctx, ops)
		deleted = result.Succeeded
		if len(result.Errors) > 0 {
			// nolint:errcheck
			service.dataVersion.BumpDataVersion(ctx)
			return deleted, result.Errors[0]
		}
	}

	batch := service.store.Batch()
	batch.Delete(datastore.CollectionCategories, categoryID)
	service.dataVersion.BumpOp(batch)
	if err := batch.Commit(ctx); err != nil {
		return deleted, err
	}

	service.logger.WithFields(logrus.Fields{
		"category":  categoryID,
		"questions": deleted,
	}).Info("category deleted")
	return deleted, nil
}

// MergeCategories creates a category whose questions are the live union of
// its sources. Sources must be two or more distinct, existing, non-merged
// categories.
func (service *ServiceCategory) MergeCategories(ctx context.Context, caller *models.Caller, name string, sourceIDs []string, display models.CategoryData) (*models.Category, error) {
	if !caller.HasFullAccess() {
		return nil, newPermissionError(caller, "merge categories")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	seen := map[string]bool{}
	for _, id := range sourceIDs {
		if seen[id] {
			return nil, &CategoryConflictError{CategoryID: id, Reason: "source selected more than once"}
		}
		seen[id] = true
	}
	if len(sourceIDs) < 2 {
		return nil, &CategoryConflictError{Reason: "a merge needs at least two source categories"}
	}

	for _, id := range sourceIDs {
		source, err := datastore.GetCategory(ctx, service.store, id)
		if errors.Is(err, datastore.ErrNotFound) {
			return nil, &CategoryConflictError{CategoryID: id, Reason: "source category does not exist"}
		}
		if err != nil {
			return nil, err
		}
		if source.IsMergedCategory {
			return nil, &CategoryConflictError{CategoryID: id, Reason: "merged categories cannot be merge sources"}
		}
	}

	id := content.CategoryIDFromName(name)
	if err := service.ensureCategoryAbsent(ctx, id); err != nil {
		return nil, err
	}

	display.Name = name
	category := display.ToCategory(id, time.Now().UTC())
	category.IsMergedCategory = true
	category.SourceCategoryIDs = append([]string{}, sourceIDs...)

	op, err := datastore.SetCategoryOp(category)
	if err != nil {
		return nil, err
	}

	batch := service.store.Batch()
	op.Apply(batch)
	service.dataVersion.BumpOp(batch)
	if err := batch.Commit(ctx); err != nil {
		return nil, err
	}

	return category, nil
}

// ResolveQuestions returns the questions a reader of the category sees,
// cached per data version.
func (service *ServiceCategory) ResolveQuestions(ctx context.Context, categoryID string) ([]*models.Question, error) {
	version, err := service.dataVersion.GetDataVersion(ctx)
	if err != nil {
		return nil, err
	}

	callback := func() ([]*models.Question, error) {
		category, err := datastore.GetCategory(ctx, service.store, categoryID)
		if err != nil {
			return nil, err
		}
		return content.NodeFor(category).ResolveQuestions(ctx, storeSource{service.store})
	}

	return caching.UseCache(ctx, service.cache, caching.VersionedKey(version, DBKeyCategoryQuestions(categoryID)), CACHE_TTL_15_MINS, callback)
}

type IndexReport struct {
	Categories int      `json:"categories"`
	Backfilled int      `json:"backfilled"`
	Reindexed  int      `json:"reindexed"`
	Errors     []string `json:"errors"`
}

// RebuildQuestionIndex assigns tracking ids to questions that lack one and
// rewrites the questionIds list of every simple category from its questions.
func (service *ServiceCategory) RebuildQuestionIndex(ctx context.Context) (*IndexReport, error) {
	categories, err := datastore.GetCategories(ctx, service.store)
	if err != nil {
		return nil, err
	}

	report := &IndexReport{Errors: []string{}}
	writer := batchWriter(ctx, service.store, service.config, service.logger)
	now := time.Now().UTC()

	var ops []datastore.Op
	for _, category := range categories {
		if category.IsMergedCategory {
			continue
		}
		report.Categories++

		questions, err := datastore.GetQuestionsByCategory(ctx, service.store, category.ID)
		if err != nil {
			return nil, err
		}

		ids := make([]string, 0, len(questions))
		for _, question := range questions {
			if question.TrackingID == "" {
				question.TrackingID = content.GenerateTrackingID(question, category.ID)
				ops = append(ops, datastore.UpdateOp(datastore.CollectionQuestions, question.ID, map[string]any{
					"trackingId": question.TrackingID,
				}))
				report.Backfilled++
			}
			ids = append(ids, question.TrackingID)
		}

		if !sameIDs(category.QuestionIDs, ids) {
			ops = append(ops, datastore.UpdateOp(datastore.CollectionCategories, category.ID, map[string]any{
				"questionIds": ids,
				"updatedAt":   now,
			}))
			report.Reindexed++
		}
	}
	if len(ops) == 0 {
		return report, nil
	}
	ops = append(ops, dataVersionOp())

	result := writer.Commit(ctx, ops)
	report.Errors = append(report.Errors, result.ErrorStrings()...)

	service.logger.WithFields(logrus.Fields{
		"categories": report.Categories,
		"backfilled": report.Backfilled,
		"reindexed":  report.Reindexed,
		"errors":     len(report.Errors),
	}).Info("question index rebuilt")
	return report, nil
}

func (service *ServiceCategory) ensureCategoryAbsent(ctx context.Context, id string) error {
	_, err := datastore.GetCategory(ctx, service.store, id)
	if err == nil {
		return &CategoryConflictError{CategoryID: id, Reason: "category already exists"}
	}
	if !errors.Is(err, datastore.ErrNotFound) {
		return err
	}
	return nil
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
