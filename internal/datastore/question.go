package datastore

import (
	"context"

	"lamah/internal/models"
)

func GetQuestion(ctx context.Context, db Store, questionID string) (*models.Question, error) {
	doc, err := db.Get(ctx, CollectionQuestions, questionID)
	if err != nil {
		return nil, err
	}

	var question models.Question
	if err := doc.Decode(&question); err != nil {
		return nil, err
	}
	return &question, nil
}

func GetQuestionsByCategory(ctx context.Context, db Store, categoryID string) ([]*models.Question, error) {
	docs, err := db.Query(ctx, CollectionQuestions, Eq("categoryId", categoryID))
	if err != nil {
		return nil, err
	}
	return decodeQuestions(docs)
}

func GetAllQuestions(ctx context.Context, db Store) ([]*models.Question, error) {
	docs, err := db.Query(ctx, CollectionQuestions)
	if err != nil {
		return nil, err
	}
	return decodeQuestions(docs)
}

func SetQuestionOp(question *models.Question) (Op, error) {
	data, err := Encode(question)
	if err != nil {
		return Op{}, err
	}
	return SetOp(CollectionQuestions, question.ID, data), nil
}

func decodeQuestions(docs []*Doc) ([]*models.Question, error) {
	questions := make([]*models.Question, 0, len(docs))
	for _, doc := range docs {
		var question models.Question
		if err := doc.Decode(&question); err != nil {
			return nil, err
		}
		questions = append(questions, &question)
	}
	return questions, nil
}
