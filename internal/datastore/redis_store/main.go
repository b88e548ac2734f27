package redis_store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lamah/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	IMPORT_PROGRESS_TTL = 24 * time.Hour
	NOTIFY_COOLDOWN     = 10 * time.Minute
)

var ErrRunNotFound = errors.New("import run not found")

func dbKeyImportProgress(runID string) string {
	return fmt.Sprintf("import:%s:progress", runID)
}

func dbKeyImportSummary(runID string) string {
	return fmt.Sprintf("import:%s:summary", runID)
}

func dbKeyPendingNotified(submitterID string) string {
	return fmt.Sprintf("pending:notified:%s", submitterID)
}

func dbKeyLastReindex() string {
	return "questions:last_reindex"
}

func SaveImportProgress(ctx context.Context, cmd redis.Cmdable, v *models.ImportProgress) error {
	if v.RunID == "" {
		return errors.New("invalid import run")
	}

	b, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}

	return cmd.Set(ctx, dbKeyImportProgress(v.RunID), b, IMPORT_PROGRESS_TTL).Err()
}

func GetImportProgress(ctx context.Context, cmd redis.Cmdable, runID string) (*models.ImportProgress, error) {
	b, err := cmd.Get(ctx, dbKeyImportProgress(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	var v *models.ImportProgress
	err = msgpack.Unmarshal(b, &v)
	return v, err
}

func SaveImportSummary(ctx context.Context, cmd redis.Cmdable, v *models.ImportSummary) error {
	if v.RunID == "" {
		return errors.New("invalid import run")
	}

	b, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}

	return cmd.Set(ctx, dbKeyImportSummary(v.RunID), b, IMPORT_PROGRESS_TTL).Err()
}

func GetImportSummary(ctx context.Context, cmd redis.Cmdable, runID string) (*models.ImportSummary, error) {
	b, err := cmd.Get(ctx, dbKeyImportSummary(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	var v *models.ImportSummary
	err = msgpack.Unmarshal(b, &v)
	return v, err
}

// MarkPendingNotified reports whether the submitter was not notified about
// within the cooldown, recording the notification if so.
func MarkPendingNotified(ctx context.Context, cmd redis.Cmdable, submitterID string) (bool, error) {
	return cmd.SetNX(ctx, dbKeyPendingNotified(submitterID), time.Now().UTC().Format(time.RFC3339), NOTIFY_COOLDOWN).Result()
}

func SetLastReindex(ctx context.Context, cmd redis.Cmdable, at time.Time) error {
	return cmd.Set(ctx, dbKeyLastReindex(), at.UTC().Format(time.RFC3339), 0).Err()
}

func GetLastReindex(ctx context.Context, cmd redis.Cmdable) (time.Time, error) {
	result, err := cmd.Get(ctx, dbKeyLastReindex()).Result()
	if err != nil {
		return time.Time{}, err
	}

	return time.Parse(time.RFC3339, result)
}

// ProgressStore keeps import progress and summaries in redis.
type ProgressStore struct {
	cmd redis.Cmdable
}

func NewProgressStore(cmd redis.Cmdable) *ProgressStore {
	return &ProgressStore{cmd}
}

func (s *ProgressStore) SaveImportProgress(ctx context.Context, progress *models.ImportProgress) error {
	return SaveImportProgress(ctx, s.cmd, progress)
}

func (s *ProgressStore) GetImportProgress(ctx context.Context, runID string) (*models.ImportProgress, error) {
	return GetImportProgress(ctx, s.cmd, runID)
}

func (s *ProgressStore) SaveImportSummary(ctx context.Context, summary *models.ImportSummary) error {
	return SaveImportSummary(ctx, s.cmd, summary)
}

func (s *ProgressStore) GetImportSummary(ctx context.Context, runID string) (*models.ImportSummary, error) {
	return GetImportSummary(ctx, s.cmd, runID)
}
