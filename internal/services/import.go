package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"lamah/internal/blobstore"
	"lamah/internal/content"
	"lamah/internal/datastore"
	"lamah/internal/interfaces"
	"lamah/internal/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
)

// ProgressFunc receives a snapshot every time an import run changes phase
// or finishes a chunk.
type ProgressFunc func(progress models.ImportProgress)

type ServiceImport struct {
	container *do.Injector
	store     datastore.Store
	blobs     blobstore.Store
	progress  interfaces.ProgressStore
	config    *ServiceConfig
	logger    logrus.FieldLogger
}

func NewServiceImport(container *do.Injector) (*ServiceImport, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	blobs, err := do.Invoke[blobstore.Store](container)
	if err != nil {
		return nil, err
	}

	progress, err := do.Invoke[interfaces.ProgressStore](container)
	if err != nil {
		return nil, err
	}

	config, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	logger, err := do.Invoke[*logrus.Entry](container)
	if err != nil {
		return nil, err
	}

	return &ServiceImport{container, store, blobs, progress, config, logger}, nil
}

// ImportStatus is what a caller polling a run sees.
type ImportStatus struct {
	Progress *models.ImportProgress `json:"progress"`
	Summary  *models.ImportSummary  `json:"summary"`
}

// GetImportStatus is limited to callers that may import, since summaries
// carry question texts and answers.
func (service *ServiceImport) GetImportStatus(ctx context.Context, caller *models.Caller, runID string) (*ImportStatus, error) {
	if !caller.CanWriteDirectly() {
		return nil, newPermissionError(caller, "read import status")
	}

	progress, err := service.progress.GetImportProgress(ctx, runID)
	if err != nil {
		return nil, err
	}

	status := &ImportStatus{Progress: progress}
	if progress.Phase == models.ImportPhaseDone {
		summary, err := service.progress.GetImportSummary(ctx, runID)
		if err != nil {
			return nil, err
		}
		status.Summary = summary
	}
	return status, nil
}

func (service *ServiceImport) ImportBulk(ctx context.Context, caller *models.Caller, text string, onProgress ProgressFunc) (*models.ImportSummary, error) {
	return service.importText(ctx, caller, text, false, onProgress)
}

// ImportBulkForced imports every parsed line without duplicate detection.
func (service *ServiceImport) ImportBulkForced(ctx context.Context, caller *models.Caller, text string, onProgress ProgressFunc) (*models.ImportSummary, error) {
	return service.importText(ctx, caller, text, true, onProgress)
}

type importWrite struct {
	question *models.Question
	similar  bool
	op       int
}

func (service *ServiceImport) importText(ctx context.Context, caller *models.Caller, text string, force bool, onProgress ProgressFunc) (*models.ImportSummary, error) {
	if !caller.CanWriteDirectly() {
		return nil, newPermissionError(caller, "import questions")
	}

	run := service.startRun(ctx, onProgress)
	log := service.logger.WithFields(logrus.Fields{"run": run.id, "forced": force})
	summary := models.NewImportSummary(run.id)

	run.report(models.ImportPhaseParsing, 0)
	parsed, skippedLines := content.ParseText(text, content.DefaultDelimiter)
	for _, line := range skippedLines {
		log.WithField("line", line).Warn("skipped malformed line")
	}
	summary.Total = len(parsed)
	run.total = len(parsed)

	run.report(models.ImportPhaseCategoryResolution, 0)
	snap, err := loadImportSnapshot(ctx, service.store)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	targets := make([]*models.Category, len(parsed))
	for i, pq := range parsed {
		category := snap.resolveCategory(pq.CategoryName, pq.CategoryImage, now)
		if category.IsMergedCategory {
			conflict := &CategoryConflictError{CategoryID: category.ID, Reason: ErrMergedCategoryTarget.Error()}
			summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: %v", pq.Line, conflict))
			continue
		}
		targets[i] = category
	}

	failedCategories := service.createCategories(ctx, run, snap, summary)
	for i, pq := range parsed {
		category := targets[i]
		if category == nil {
			continue
		}
		if err, ok := failedCategories[category.ID]; ok {
			summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: category %s: %v", pq.Line, category.ID, err))
			summary.SkippedQuestions = append(summary.SkippedQuestions, models.SkippedQuestion{
				Text:       pq.Text,
				Answer:     pq.Answer,
				CategoryID: category.ID,
				Reason:     models.SkipReasonWriteError,
				Error:      err.Error(),
			})
			targets[i] = nil
		}
	}

	run.report(models.ImportPhaseDuplicateDetection, 0)
	writes := make([]*importWrite, 0, len(parsed))
	for i, pq := range parsed {
		category := targets[i]
		if category == nil {
			continue
		}

		similar := false
		if !force {
			classification := snap.index.Classify(pq.Text, pq.Answer)
			switch classification.Kind {
			case content.KindExact:
				summary.DuplicatesSkipped++
				summary.SkippedQuestions = append(summary.SkippedQuestions, models.SkippedQuestion{
					Text:       pq.Text,
					Answer:     pq.Answer,
					CategoryID: category.ID,
					Reason:     models.SkipReasonDuplicate,
					ExistingID: classification.Existing.ID,
				})
				continue
			case content.KindSimilar:
				similar = true
			}
		}

		question := pq.QuestionData.ToQuestion(category, now)
		question.ID = service.store.NewID(datastore.CollectionQuestions)
		question.TrackingID = content.GenerateTrackingID(question, category.ID)
		snap.index.Accept(question)
		writes = append(writes, &importWrite{question: question, similar: similar, op: -1})
	}
	run.report(models.ImportPhaseDuplicateDetection, len(parsed))

	run.report(models.ImportPhaseWriting, 0)
	service.writeTextImport(ctx, run, snap, writes, summary, now)

	run.report(models.ImportPhaseSummarizing, len(parsed))
	for _, w := range writes {
		if w.op < 0 {
			continue
		}
		summary.Added++
		if w.similar {
			summary.SimilarQuestionsAdded++
		}
		summary.AddedQuestions = append(summary.AddedQuestions, addedQuestion(w.question, w.similar))
	}

	log.WithFields(logrus.Fields{
		"total":      summary.Total,
		"added":      summary.Added,
		"duplicates": summary.DuplicatesSkipped,
		"errors":     len(summary.Errors),
	}).Info("import finished")

	run.finish(summary)
	return summary, nil
}

// createCategories writes every category the run created in memory, with
// one data version bump, before any question refers to them. Categories
// that could not be written are returned with their error.
func (service *ServiceImport) createCategories(ctx context.Context, run *importRun, snap *importSnapshot, summary *models.ImportSummary) map[string]error {
	failed := map[string]error{}

	ids := make([]string, 0, len(snap.createdOrder))
	ops := make([]datastore.Op, 0, len(snap.createdOrder)+1)
	for _, categoryID := range snap.createdOrder {
		op, err := datastore.SetCategoryOp(snap.byID[categoryID])
		if err != nil {
			failed[categoryID] = err
			continue
		}
		ids = append(ids, categoryID)
		ops = append(ops, op)
	}
	snap.createdOrder = nil
	if len(ops) == 0 {
		return failed
	}
	ops = append(ops, dataVersionOp())

	result := batchWriter(ctx, service.store, service.config, run.logger).Commit(ctx, ops)
	for i, categoryID := range ids {
		if e := result.ErrorAt(i); e != nil {
			failed[categoryID] = e.Err
			continue
		}
		summary.CreatedCategories = append(summary.CreatedCategories, categoryID)
	}
	if e := result.ErrorAt(len(ops) - 1); e != nil && len(failed) == 0 {
		summary.Errors = append(summary.Errors, "data version: "+e.Err.Error())
	}
	return failed
}

// writeTextImport commits the questions and then, knowing which chunks
// landed, the category question lists and the version bump. Writes whose
// chunk failed are left with op -1 and listed as skipped.
func (service *ServiceImport) writeTextImport(ctx context.Context, run *importRun, snap *importSnapshot, writes []*importWrite, summary *models.ImportSummary, now time.Time) {
	writer := batchWriter(ctx, service.store, service.config, run.logger)

	ops := make([]datastore.Op, 0, len(writes))
	for _, w := range writes {
		op, err := datastore.SetQuestionOp(w.question)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("question %q: %v", w.question.Text, err))
			summary.SkippedQuestions = append(summary.SkippedQuestions, writeErrorSkip(w.question, err))
			continue
		}
		w.op = len(ops)
		ops = append(ops, op)
	}

	result := writer.WithProgress(func(done int) {
		run.report(models.ImportPhaseWriting, done)
	}).Commit(ctx, ops)
	summary.Errors = append(summary.Errors, result.ErrorStrings()...)

	var touched []string
	added := map[string][]string{}
	for _, w := range writes {
		if w.op < 0 {
			continue
		}
		if e := result.ErrorAt(w.op); e != nil {
			summary.SkippedQuestions = append(summary.SkippedQuestions, writeErrorSkip(w.question, e.Err))
			w.op = -1
			continue
		}
		categoryID := w.question.CategoryID
		if _, ok := added[categoryID]; !ok {
			touched = append(touched, categoryID)
		}
		added[categoryID] = append(added[categoryID], w.question.TrackingID)
	}
	if len(touched) == 0 {
		return
	}

	indexOps := make([]datastore.Op, 0, len(touched)+1)
	for _, categoryID := range touched {
		category := snap.byID[categoryID]
		ids := category.QuestionIDs
		for _, trackingID := range added[categoryID] {
			ids = withTrackingID(ids, trackingID)
		}
		category.QuestionIDs = ids
		category.UpdatedAt = now

		indexOps = append(indexOps, datastore.UpdateOp(datastore.CollectionCategories, categoryID, map[string]any{
			"questionIds": ids,
			"updatedAt":   now,
		}))
	}
	indexOps = append(indexOps, dataVersionOp())

	indexResult := writer.Commit(ctx, indexOps)
	for i, categoryID := range touched {
		if e := indexResult.ErrorAt(i); e != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("category %s index: %v", categoryID, e.Err))
		}
	}
	if e := indexResult.ErrorAt(len(indexOps) - 1); e != nil && e.Start == len(indexOps)-1 {
		summary.Errors = append(summary.Errors, "data version: "+e.Err.Error())
	}
}

func writeErrorSkip(q *models.Question, err error) models.SkippedQuestion {
	return models.SkippedQuestion{
		Text:       q.Text,
		Answer:     q.Answer,
		CategoryID: q.CategoryID,
		Reason:     models.SkipReasonWriteError,
		Error:      err.Error(),
	}
}

func (service *ServiceImport) ImportArchive(ctx context.Context, caller *models.Caller, data []byte, categoryName string, onProgress ProgressFunc) (*models.ImportSummary, error) {
	if !caller.CanWriteDirectly() {
		return nil, newPermissionError(caller, "import questions")
	}

	rows, skipped, media, err := content.ReadArchive(data)
	if err != nil {
		return nil, &ValidationError{Field: "archive", Reason: err.Error()}
	}
	for _, line := range skipped {
		service.logger.WithField("line", line).Warn("skipped malformed row")
	}

	return service.ImportFromStructuredFile(ctx, caller, rows, media, categoryName, onProgress)
}

// ImportFromStructuredFile imports sheet rows into one category. Media
// referenced by file name are uploaded from the media map before the row is
// written; a row whose write fails has its uploads removed again.
func (service *ServiceImport) ImportFromStructuredFile(ctx context.Context, caller *models.Caller, rows []content.Row, media map[string][]byte, categoryName string, onProgress ProgressFunc) (*models.ImportSummary, error) {
	if !caller.CanWriteDirectly() {
		return nil, newPermissionError(caller, "import questions")
	}
	categoryName = strings.TrimSpace(categoryName)
	if categoryName == "" {
		return nil, &ValidationError{Field: "categoryName", Reason: "must not be empty"}
	}

	run := service.startRun(ctx, onProgress)
	run.total = len(rows)
	log := service.logger.WithFields(logrus.Fields{"run": run.id, "category": categoryName})
	summary := models.NewImportSummary(run.id)
	summary.Total = len(rows)

	run.report(models.ImportPhaseParsing, len(rows))

	run.report(models.ImportPhaseCategoryResolution, 0)
	snap, err := loadImportSnapshot(ctx, service.store)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category := snap.resolveCategory(categoryName, "", now)
	if category.IsMergedCategory {
		return nil, &CategoryConflictError{CategoryID: category.ID, Reason: ErrMergedCategoryTarget.Error()}
	}
	if err := service.createCategories(ctx, run, snap, summary)[category.ID]; err != nil {
		return nil, err
	}

	run.report(models.ImportPhaseDuplicateDetection, 0)
	run.report(models.ImportPhaseWriting, 0)
	for i, row := range rows {
		classification := snap.index.Classify(row.Text, row.Answer)
		if classification.Kind == content.KindExact {
			summary.DuplicatesSkipped++
			summary.SkippedQuestions = append(summary.SkippedQuestions, models.SkippedQuestion{
				Text:       row.Text,
				Answer:     row.Answer,
				CategoryID: category.ID,
				Reason:     models.SkipReasonDuplicate,
				ExistingID: classification.Existing.ID,
			})
			run.report(models.ImportPhaseWriting, i+1)
			continue
		}
		similar := classification.Kind == content.KindSimilar

		data := models.QuestionData{
			Text:       row.Text,
			Answer:     row.Answer,
			Difficulty: row.Difficulty,
			Options:    row.Options,
		}
		question := data.ToQuestion(category, now)
		question.ID = service.store.NewID(datastore.CollectionQuestions)
		question.TrackingID = content.GenerateTrackingID(question, category.ID)

		uploaded, err := service.uploadMedia(ctx, question, row.Media, media)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", row.Line, err))
			service.cleanupMedia(ctx, uploaded, log)
			run.report(models.ImportPhaseWriting, i+1)
			continue
		}

		ids := withTrackingID(category.QuestionIDs, question.TrackingID)
		if err := service.writeRow(ctx, question, category.ID, ids, now); err != nil {
			log.WithError(err).WithField("row", row.Line).Error("question write failed")
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", row.Line, err))
			summary.SkippedQuestions = append(summary.SkippedQuestions, writeErrorSkip(question, err))
			service.cleanupMedia(ctx, uploaded, log)
			run.report(models.ImportPhaseWriting, i+1)
			continue
		}

		category.QuestionIDs = ids
		snap.index.Accept(question)
		summary.Added++
		if similar {
			summary.SimilarQuestionsAdded++
		}
		summary.AddedQuestions = append(summary.AddedQuestions, addedQuestion(question, similar))
		run.report(models.ImportPhaseWriting, i+1)
	}

	run.report(models.ImportPhaseSummarizing, len(rows))
	log.WithFields(logrus.Fields{
		"total":      summary.Total,
		"added":      summary.Added,
		"duplicates": summary.DuplicatesSkipped,
		"errors":     len(summary.Errors),
	}).Info("structured import finished")

	run.finish(summary)
	return summary, nil
}

func (service *ServiceImport) writeRow(ctx context.Context, question *models.Question, categoryID string, questionIDs []string, now time.Time) error {
	op, err := datastore.SetQuestionOp(question)
	if err != nil {
		return err
	}

	batch := service.store.Batch()
	op.Apply(batch)
	batch.Update(datastore.CollectionCategories, categoryID, map[string]any{
		"questionIds": questionIDs,
		"updatedAt":   now,
	})
	dataVersionOp().Apply(batch)
	return batch.Commit(ctx)
}

func (service *ServiceImport) uploadMedia(ctx context.Context, question *models.Question, refs map[content.MediaSlot]string, files map[string][]byte) ([]string, error) {
	var uploaded []string
	for _, slot := range content.MediaSlots {
		ref, ok := refs[slot]
		if !ok {
			continue
		}
		if content.IsURL(ref) {
			content.SetMedia(&question.QuestionMedia, slot, ref)
			continue
		}

		data, ok := files[path.Base(ref)]
		if !ok {
			return uploaded, fmt.Errorf("media file %q not found", ref)
		}

		mtype := mimetype.Detect(data)
		objectPath := path.Join(MEDIA_ROOT, question.CategoryID, slot.Kind(), question.ID+"-"+string(slot)+mtype.Extension())
		url, err := service.blobs.Put(ctx, data, mtype.String(), objectPath)
		if err != nil {
			return uploaded, fmt.Errorf("upload %s: %w", ref, err)
		}
		uploaded = append(uploaded, url)
		content.SetMedia(&question.QuestionMedia, slot, url)
	}
	return uploaded, nil
}

// cleanupMedia removes blobs of a question that was not written. Failures
// are logged only; the write error stays the one reported.
func (service *ServiceImport) cleanupMedia(ctx context.Context, urls []string, log logrus.FieldLogger) {
	var orphaned []string
	var lastErr error
	for _, url := range urls {
		if err := service.blobs.Delete(ctx, url); err != nil {
			orphaned = append(orphaned, url)
			lastErr = err
		}
	}
	if len(orphaned) > 0 {
		log.WithError(&OrphanMediaError{URLs: orphaned, Err: lastErr}).Warn("media cleanup failed")
	}
}

func addedQuestion(q *models.Question, similar bool) models.AddedQuestion {
	return models.AddedQuestion{
		ID:           q.ID,
		TrackingID:   q.TrackingID,
		Text:         q.Text,
		Answer:       q.Answer,
		CategoryID:   q.CategoryID,
		CategoryName: q.CategoryName,
		Similar:      similar,
	}
}

type importRun struct {
	ctx        context.Context
	id         string
	total      int
	onProgress ProgressFunc
	progress   interfaces.ProgressStore
	logger     logrus.FieldLogger
}

func (service *ServiceImport) startRun(ctx context.Context, onProgress ProgressFunc) *importRun {
	id := uuid.NewString()
	return &importRun{
		ctx:        ctx,
		id:         id,
		onProgress: onProgress,
		progress:   service.progress,
		logger:     service.logger.WithField("run", id),
	}
}

func (run *importRun) report(phase models.ImportPhase, processed int) {
	progress := models.ImportProgress{
		RunID:     run.id,
		Phase:     phase,
		Processed: processed,
		Total:     run.total,
		UpdatedAt: time.Now().UTC(),
	}
	if run.onProgress != nil {
		run.onProgress(progress)
	}
	if run.progress != nil {
		if err := run.progress.SaveImportProgress(run.ctx, &progress); err != nil {
			run.logger.WithError(err).Warn("save import progress")
		}
	}
}

func (run *importRun) finish(summary *models.ImportSummary) {
	if run.progress != nil {
		if err := run.progress.SaveImportSummary(run.ctx, summary); err != nil {
			run.logger.WithError(err).Warn("save import summary")
		}
	}
	run.report(models.ImportPhaseDone, run.total)
}

// importSnapshot is the state an import run reads once and then keeps
// current in memory.
type importSnapshot struct {
	byID   map[string]*models.Category
	byName map[string]*models.Category
	index  *content.Index

	// categories created in memory and not yet written
	createdOrder []string
}

func loadImportSnapshot(ctx context.Context, store datastore.Store) (*importSnapshot, error) {
	categories, err := datastore.GetCategories(ctx, store)
	if err != nil {
		return nil, err
	}

	questions, err := datastore.GetAllQuestions(ctx, store)
	if err != nil {
		return nil, err
	}

	snap := &importSnapshot{
		byID:   make(map[string]*models.Category, len(categories)),
		byName: make(map[string]*models.Category, len(categories)),
		index:  content.NewIndex(questions),
	}
	for _, category := range categories {
		snap.byID[category.ID] = category
		if _, ok := snap.byName[category.Name]; !ok {
			snap.byName[category.Name] = category
		}
	}
	return snap, nil
}

// resolveCategory finds a category by id or exact name, or creates one in
// memory with an id derived from the name.
func (snap *importSnapshot) resolveCategory(name, image string, now time.Time) *models.Category {
	name = strings.TrimSpace(name)
	if category, ok := snap.byID[name]; ok {
		return category
	}
	if category, ok := snap.byName[name]; ok {
		return category
	}

	id := content.CategoryIDFromName(name)
	if category, ok := snap.byID[id]; ok {
		return category
	}

	category := models.CategoryData{Name: name, Image: image}.ToCategory(id, now)
	snap.byID[id] = category
	snap.byName[name] = category
	snap.createdOrder = append(snap.createdOrder, id)
	return category
}
