package services

import (
	"context"
	"time"

	"lamah/internal/datastore"

	"github.com/samber/do"
)

// ServiceDataVersion owns the counter caches compare against. Every
// structural write carries a bump in the same batch.
type ServiceDataVersion struct {
	container *do.Injector
	store     datastore.Store
}

func NewServiceDataVersion(container *do.Injector) (*ServiceDataVersion, error) {
	store, err := do.Invoke[datastore.Store](container)
	if err != nil {
		return nil, err
	}

	return &ServiceDataVersion{container, store}, nil
}

func (service *ServiceDataVersion) GetDataVersion(ctx context.Context) (int64, error) {
	dv, err := datastore.GetDataVersion(ctx, service.store)
	if err != nil {
		return 0, err
	}
	return dv.Version, nil
}

func (service *ServiceDataVersion) BumpDataVersion(ctx context.Context) error {
	batch := service.store.Batch()
	service.BumpOp(batch)
	return batch.Commit(ctx)
}

// BumpOp queues the increment on a batch the caller commits.
func (service *ServiceDataVersion) BumpOp(batch datastore.Batch) {
	dataVersionOp().Apply(batch)
}

func dataVersionOp() datastore.Op {
	return datastore.IncrementOp(datastore.CollectionMeta, datastore.DocDataVersion, "version", 1, map[string]any{
		"lastUpdated": time.Now().UTC(),
	})
}
