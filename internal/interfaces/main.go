package interfaces

import (
	"context"

	"github.com/go-redis/redis_rate/v10"

	"lamah/internal/models"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}

// Locker returns an unlock function once the key is held.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type ProgressStore interface {
	SaveImportProgress(ctx context.Context, progress *models.ImportProgress) error
	GetImportProgress(ctx context.Context, runID string) (*models.ImportProgress, error)
	SaveImportSummary(ctx context.Context, summary *models.ImportSummary) error
	GetImportSummary(ctx context.Context, runID string) (*models.ImportSummary, error)
}

type Notifier interface {
	NotifyPendingSubmission(ctx context.Context, pending *models.PendingQuestion) error
}
