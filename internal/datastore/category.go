package datastore

import (
	"context"

	"lamah/internal/models"
)

func GetCategory(ctx context.Context, db Store, categoryID string) (*models.Category, error) {
	doc, err := db.Get(ctx, CollectionCategories, categoryID)
	if err != nil {
		return nil, err
	}

	var category models.Category
	if err := doc.Decode(&category); err != nil {
		return nil, err
	}
	return &category, nil
}

func GetCategories(ctx context.Context, db Store) ([]*models.Category, error) {
	docs, err := db.Query(ctx, CollectionCategories)
	if err != nil {
		return nil, err
	}

	categories := make([]*models.Category, 0, len(docs))
	for _, doc := range docs {
		var category models.Category
		if err := doc.Decode(&category); err != nil {
			return nil, err
		}
		categories = append(categories, &category)
	}
	return categories, nil
}

func SetCategoryOp(category *models.Category) (Op, error) {
	data, err := Encode(category)
	if err != nil {
		return Op{}, err
	}
	return SetOp(CollectionCategories, category.ID, data), nil
}
