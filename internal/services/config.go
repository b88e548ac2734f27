package services

import (
	"context"
	"errors"
	"strconv"

	"lamah/internal/datastore"
	"lamah/internal/models"
	"lamah/internal/pkg/caching"

	"github.com/samber/do"
)

type ServiceConfig struct {
	container     *do.Injector
	store         datastore.Store
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache
}

func NewServiceConfig(container *do.Injector) (*ServiceConfig, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readOnlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceConfig{container, store, cache, readOnlyCache}, nil
}

func (service *ServiceConfig) GetStringConfig(ctx context.Context, key string, defaultValue string) (string, error) {
	callback := func() (string, error) {
		config, err := datastore.GetConfigByKey(ctx, service.store, key)
		if err != nil {
			return defaultValue, err
		}
		return config.Value, nil
	}

	value, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

func (service *ServiceConfig) GetIntConfig(ctx context.Context, key string, defaultValue int) (int, error) {
	callback := func() (int, error) {
		config, err := datastore.GetConfigByKey(ctx, service.store, key)
		if err != nil {
			return defaultValue, err
		}

		intValue, err := strconv.Atoi(config.Value)
		if err != nil {
			return defaultValue, err
		}

		return intValue, nil
	}

	value, err := caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyConfig(key), CACHE_TTL_5_MINS, callback)
	if err != nil {
		return defaultValue, err
	}

	return value, nil
}

// SetConfig writes a runtime setting and drops its cached value.
func (service *ServiceConfig) SetConfig(ctx context.Context, key string, value string) (*models.Config, error) {
	config := models.Config{Key: key, Value: value}
	if err := datastore.InsertConfig(ctx, service.store, config); err != nil {
		return nil, err
	}

	// nolint:errcheck
	service.cache.Delete(ctx, DBKeyConfig(key))
	return &config, nil
}

// EnsureConfig inserts a setting only when it is missing.
func (service *ServiceConfig) EnsureConfig(ctx context.Context, key string, value string) (*models.Config, error) {
	config, err := datastore.GetConfigByKey(ctx, service.store, key)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, datastore.ErrNotFound) {
		return nil, err
	}
	return service.SetConfig(ctx, key, value)
}
