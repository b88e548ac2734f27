package datastore

import (
	"context"

	"lamah/internal/models"
)

func InsertConfig(ctx context.Context, db Store, config models.Config) error {
	return db.Set(ctx, CollectionConfig, config.Key, map[string]any{"key": config.Key, "value": config.Value})
}

func GetConfigByKey(ctx context.Context, db Store, key string) (*models.Config, error) {
	doc, err := db.Get(ctx, CollectionConfig, key)
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := doc.Decode(&config); err != nil {
		return nil, err
	}
	config.Key = key
	return &config, nil
}

func EditConfig(ctx context.Context, db Store, config *models.Config) (*models.Config, error) {
	err := db.Update(ctx, CollectionConfig, config.Key, map[string]any{"value": config.Value})
	if err != nil {
		return nil, err
	}

	return config, nil
}
