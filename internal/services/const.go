package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrPendingLock = errors.New("pending question locked")
var ErrMergedCategoryTarget = errors.New("merged categories do not own questions")

const (
	CONFIG_SERVER_MODE                  = "SERVER_MODE"
	CONFIG_BATCH_LIMIT                  = "BATCH_LIMIT"
	CONFIG_VERIFY_BATCH_DELAY_MS        = "VERIFY_BATCH_DELAY_MS"
	CONFIG_SUBMIT_RATE_LIMIT_PER_MINUTE = "SUBMIT_RATE_LIMIT_PER_MINUTE"
	CONFIG_ADMIN_CHAT_ID                = "ADMIN_CHAT_ID"
	CONFIG_CRONJOB_TIME_REINDEX         = "CRONJOB_TIME_REINDEX"

	SERVER_MODE_DEVELOPMENT = "development"
	SERVER_MODE_STAGING     = "staging"
	SERVER_MODE_PRODUCTION  = "production"

	DEFAULT_BATCH_LIMIT                  = 500
	DEFAULT_VERIFY_BATCH_DELAY_MS        = 1000
	DEFAULT_SUBMIT_RATE_LIMIT_PER_MINUTE = 10
	DEFAULT_CRONJOB_TIME_REINDEX         = "@every 6h"

	CACHE_TTL_5_SECONDS  = 5 * time.Second
	CACHE_TTL_15_SECONDS = 15 * time.Second
	CACHE_TTL_1_MIN      = 1 * time.Minute
	CACHE_TTL_5_MINS     = 5 * time.Minute
	CACHE_TTL_15_MINS    = 15 * time.Minute
	CACHE_TTL_1_HOUR     = 1 * time.Hour
	CACHE_TTL_1_DAY      = 24 * time.Hour

	MEDIA_ROOT = "questions"
)

func LockKeyPendingQuestion(pendingID string) string {
	return fmt.Sprintf("lock:pending-question:%s", pendingID)
}

func LockKeyCategory(categoryID string) string {
	return fmt.Sprintf("lock:category:%s", categoryID)
}

func LimitKeySubmission(submitterID string) string {
	return fmt.Sprintf("limit:submission:%s", submitterID)
}

// db
func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyCategoryQuestions(categoryID string) string {
	return fmt.Sprintf("category:%s:questions", categoryID)
}

func DBKeyCategories() string {
	return "categories:all"
}
