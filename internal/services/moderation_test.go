package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"lamah/internal/datastore"
	"lamah/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submit(t *testing.T, env *testEnv, categoryID, text, answer string) string {
	t.Helper()
	id, err := env.moderation(t).SubmitForApproval(context.Background(), player, categoryID, models.QuestionData{Text: text, Answer: answer})
	require.NoError(t, err)
	return id
}

func TestSubmitForApproval(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	category := env.createCategory(t, "Movies")

	id, err := env.moderation(t).SubmitForApproval(ctx, player, category.ID, models.QuestionData{
		Text:    " Who directed Jaws? ",
		Answer:  "Spielberg",
		Options: []string{"Spielberg", "Lucas"},
	})
	require.NoError(t, err)

	pending, err := datastore.GetPendingQuestion(ctx, env.store, id)
	require.NoError(t, err)
	assert.Equal(t, models.PendingStatusPending, pending.Status)
	assert.Equal(t, "Who directed Jaws?", pending.Text)
	assert.Equal(t, models.QuestionEasy, pending.Difficulty)
	assert.Equal(t, player.ID, pending.SubmittedBy)
	assert.Equal(t, category.ID, pending.CategoryID)
	assert.Nil(t, pending.QuestionID)

	require.Len(t, env.notifier.notified, 1)
	assert.Equal(t, id, env.notifier.notified[0].ID)
}

func TestSubmitForApprovalRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := env.moderation(t)
	category := env.createCategory(t, "Movies")

	_, err := service.SubmitForApproval(ctx, editor, category.ID, models.QuestionData{Text: "q", Answer: "a"})
	var permErr *PermissionError
	assert.True(t, errors.As(err, &permErr))

	_, err = service.SubmitForApproval(ctx, nil, category.ID, models.QuestionData{Text: "q", Answer: "a"})
	assert.True(t, errors.As(err, &permErr))

	_, err = service.SubmitForApproval(ctx, player, category.ID, models.QuestionData{Text: "q"})
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "answer", validationErr.Field)

	_, err = service.SubmitForApproval(ctx, player, "missing", models.QuestionData{Text: "q", Answer: "a"})
	assert.ErrorIs(t, err, datastore.ErrNotFound)
}

func TestSubmitForApprovalRateLimited(t *testing.T) {
	env := newTestEnv(t)
	env.limiter.allowed = 1
	category := env.createCategory(t, "Movies")

	submit(t, env, category.ID, "q1", "a1")
	_, err := env.moderation(t).SubmitForApproval(context.Background(), player, category.ID, models.QuestionData{Text: "q2", Answer: "a2"})

	assert.True(t, IsRateLimited(err))
	pendings, err := env.moderation(t).ListPending(context.Background(), admin, "")
	require.NoError(t, err)
	assert.Len(t, pendings, 1)
}

func TestSubmitForApprovalNotifyFailure(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.err = errors.New("telegram down")
	category := env.createCategory(t, "Movies")

	id := submit(t, env, category.ID, "q1", "a1")
	assert.NotEmpty(t, id)
}

func TestApprove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := env.moderation(t)
	category := env.createCategory(t, "Movies")
	pendingID := submit(t, env, category.ID, "Who directed Jaws?", "Spielberg")
	version := env.dataVersion(t)

	questionID, err := service.Approve(ctx, admin, pendingID, "")
	require.NoError(t, err)

	question, err := datastore.GetQuestion(ctx, env.store, questionID)
	require.NoError(t, err)
	assert.Equal(t, category.ID, question.CategoryID)
	assert.Equal(t, "Movies", question.CategoryName)
	require.NotNil(t, question.SubmittedBy)
	assert.Equal(t, player.ID, *question.SubmittedBy)
	assert.Equal(t, 200, question.Points)

	stored, err := datastore.GetCategory(ctx, env.store, category.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{question.TrackingID}, stored.QuestionIDs)

	pending, err := datastore.GetPendingQuestion(ctx, env.store, pendingID)
	require.NoError(t, err)
	assert.Equal(t, models.PendingStatusApproved, pending.Status)
	require.NotNil(t, pending.QuestionID)
	assert.Equal(t, questionID, *pending.QuestionID)
	assert.NotNil(t, pending.ApprovedAt)
	assert.Equal(t, version+1, env.dataVersion(t))

	_, err = service.Approve(ctx, admin, pendingID, "")
	var stateErr *StateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, models.PendingStatusApproved, stateErr.Status)

	err = service.Deny(ctx, admin, pendingID, "late")
	assert.True(t, errors.As(err, &stateErr))

	questions, err := datastore.GetQuestionsByCategory(ctx, env.store, category.ID)
	require.NoError(t, err)
	assert.Len(t, questions, 1)
}

func TestApproveIntoOtherCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	movies := env.createCategory(t, "Movies")
	series := env.createCategory(t, "Series")
	pendingID := submit(t, env, movies.ID, "Who created Lost?", "Abrams")

	questionID, err := env.moderation(t).Approve(ctx, admin, pendingID, series.ID)
	require.NoError(t, err)

	question, err := datastore.GetQuestion(ctx, env.store, questionID)
	require.NoError(t, err)
	assert.Equal(t, series.ID, question.CategoryID)
}

func TestApproveRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := env.moderation(t)
	a := env.createCategory(t, "Alpha")
	b := env.createCategory(t, "Beta")
	merged, err := env.categories(t).MergeCategories(ctx, admin, "Mixed", []string{a.ID, b.ID}, models.CategoryData{})
	require.NoError(t, err)
	pendingID := submit(t, env, a.ID, "q", "a")

	_, err = service.Approve(ctx, editor, pendingID, "")
	var permErr *PermissionError
	assert.True(t, errors.As(err, &permErr))

	_, err = service.Approve(ctx, admin, pendingID, merged.ID)
	var conflict *CategoryConflictError
	assert.True(t, errors.As(err, &conflict))

	_, err = service.Approve(ctx, admin, "missing", "")
	assert.ErrorIs(t, err, datastore.ErrNotFound)

	pending, err := datastore.GetPendingQuestion(ctx, env.store, pendingID)
	require.NoError(t, err)
	assert.Equal(t, models.PendingStatusPending, pending.Status)
}

func TestApproveConcurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := env.moderation(t)
	category := env.createCategory(t, "Movies")
	pendingID := submit(t, env, category.ID, "q", "a")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		approved  int
		stateErrs int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Approve(ctx, admin, pendingID, "")
			mu.Lock()
			defer mu.Unlock()
			var stateErr *StateError
			switch {
			case err == nil:
				approved++
			case errors.As(err, &stateErr):
				stateErrs++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, approved)
	assert.Equal(t, 7, stateErrs)

	questions, err := datastore.GetQuestionsByCategory(ctx, env.store, category.ID)
	require.NoError(t, err)
	assert.Len(t, questions, 1)
}

func TestDeny(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := env.moderation(t)
	category := env.createCategory(t, "Movies")
	pendingID := submit(t, env, category.ID, "q", "a")

	require.NoError(t, service.Deny(ctx, admin, pendingID, " off topic "))

	pending, err := datastore.GetPendingQuestion(ctx, env.store, pendingID)
	require.NoError(t, err)
	assert.Equal(t, models.PendingStatusDenied, pending.Status)
	require.NotNil(t, pending.DenialReason)
	assert.Equal(t, "off topic", *pending.DenialReason)
	assert.NotNil(t, pending.DeniedAt)

	_, err = service.Approve(ctx, admin, pendingID, "")
	var stateErr *StateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, models.PendingStatusDenied, stateErr.Status)
}

func TestListAndDeletePending(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	service := env.moderation(t)
	category := env.createCategory(t, "Movies")
	first := submit(t, env, category.ID, "q1", "a1")
	second := submit(t, env, category.ID, "q2", "a2")
	require.NoError(t, service.Deny(ctx, admin, second, ""))

	pendings, err := service.ListPending(ctx, admin, models.PendingStatusPending)
	require.NoError(t, err)
	require.Len(t, pendings, 1)
	assert.Equal(t, first, pendings[0].ID)

	all, err := service.ListPending(ctx, admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = service.ListPending(ctx, player, "")
	var permErr *PermissionError
	assert.True(t, errors.As(err, &permErr))

	require.NoError(t, service.DeletePending(ctx, admin, second))
	assert.ErrorIs(t, service.DeletePending(ctx, admin, second), datastore.ErrNotFound)

	all, err = service.ListPending(ctx, admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
