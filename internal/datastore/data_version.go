package datastore

import (
	"context"
	"errors"

	"lamah/internal/models"
)

const DocDataVersion = "dataVersion"

// GetDataVersion returns version 0 until the first structural write.
func GetDataVersion(ctx context.Context, db Store) (*models.DataVersion, error) {
	doc, err := db.Get(ctx, CollectionMeta, DocDataVersion)
	if errors.Is(err, ErrNotFound) {
		return &models.DataVersion{}, nil
	}
	if err != nil {
		return nil, err
	}

	var version models.DataVersion
	if err := doc.Decode(&version); err != nil {
		return nil, err
	}
	return &version, nil
}
