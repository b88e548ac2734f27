package datastore

import (
	"context"

	"lamah/internal/models"
)

func GetPendingQuestion(ctx context.Context, db Store, pendingID string) (*models.PendingQuestion, error) {
	doc, err := db.Get(ctx, CollectionPendingQuestions, pendingID)
	if err != nil {
		return nil, err
	}

	var pending models.PendingQuestion
	if err := doc.Decode(&pending); err != nil {
		return nil, err
	}
	return &pending, nil
}

// GetPendingQuestions lists submissions, optionally filtered by status.
func GetPendingQuestions(ctx context.Context, db Store, status models.PendingStatus) ([]*models.PendingQuestion, error) {
	var where []Where
	if status != "" {
		where = append(where, Eq("status", string(status)))
	}

	docs, err := db.Query(ctx, CollectionPendingQuestions, where...)
	if err != nil {
		return nil, err
	}

	pendings := make([]*models.PendingQuestion, 0, len(docs))
	for _, doc := range docs {
		var pending models.PendingQuestion
		if err := doc.Decode(&pending); err != nil {
			return nil, err
		}
		pendings = append(pendings, &pending)
	}
	return pendings, nil
}
