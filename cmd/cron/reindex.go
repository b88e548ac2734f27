package main

import (
	"context"
	"time"

	"lamah/internal/datastore/redis_store"
	"lamah/internal/services"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
)

// ReindexJob periodically assigns missing tracking ids and repairs the
// category question lists.
type ReindexJob struct {
	category *services.ServiceCategory
	config   *services.ServiceConfig
	redis    redis.UniversalClient
	logger   *logrus.Entry
}

func NewReindexJob(injector *do.Injector) (*ReindexJob, error) {
	category, err := do.Invoke[*services.ServiceCategory](injector)
	if err != nil {
		return nil, err
	}

	config, err := do.Invoke[*services.ServiceConfig](injector)
	if err != nil {
		return nil, err
	}

	redis, err := do.InvokeNamed[redis.UniversalClient](injector, "redis-progress")
	if err != nil {
		return nil, err
	}

	logger, err := do.Invoke[*logrus.Entry](injector)
	if err != nil {
		return nil, err
	}

	return &ReindexJob{
		category: category,
		config:   config,
		redis:    redis,
		logger:   logger.WithField("job", "reindex"),
	}, nil
}

func (j *ReindexJob) Start(ctx context.Context, cronRunner *cron.Cron) error {
	timeline, err := j.config.GetStringConfig(ctx, services.CONFIG_CRONJOB_TIME_REINDEX, services.DEFAULT_CRONJOB_TIME_REINDEX)
	if err != nil {
		return err
	}

	_, err = cronRunner.AddFunc(timeline, j.runScheduledTask)
	if err != nil {
		return err
	}

	last, err := redis_store.GetLastReindex(ctx, j.redis)
	if err != nil {
		j.logger.WithError(err).Warn("read last reindex")
	}
	j.logger.WithFields(logrus.Fields{
		"cron":        timeline,
		"lastReindex": last,
	}).Info("Reindex cronjob start")
	return nil
}

func (j *ReindexJob) runScheduledTask() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	start := time.Now()
	report, err := j.category.RebuildQuestionIndex(ctx)
	if err != nil {
		j.logger.WithError(err).Error("rebuild question index")
		return
	}

	if err := redis_store.SetLastReindex(ctx, j.redis, start); err != nil {
		j.logger.WithError(err).Warn("save last reindex")
	}

	j.logger.WithFields(logrus.Fields{
		"report":   report,
		"duration": time.Since(start).String(),
	}).Info("Question index rebuilt")
}
