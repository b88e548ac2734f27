package container

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"lamah/internal/blobstore"
	"lamah/internal/datastore"
	"lamah/internal/datastore/redis_store"
	"lamah/internal/interfaces"
	"lamah/internal/pkg/caching"
	"lamah/internal/pkg/limiter"
	"lamah/internal/pkg/locking"
	"lamah/internal/pkg/logger"
	"lamah/internal/services"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	STORE_DRIVER_POSTGRES = "postgres"
	STORE_DRIVER_MONGO    = "mongo"
	STORE_DRIVER_MEMORY   = "memory"
)

// New wires every service of the engine. vs holds the process environment
// the binary validated; optional variables are read from os.Getenv.
func New(service string, vs map[string]string) *do.Injector {
	injector := do.New()
	vs["STORE_DRIVER"] = os.Getenv("STORE_DRIVER")
	vs["API_MODE"] = os.Getenv("API_MODE")
	vs["API_ORIGINS"] = os.Getenv("API_ORIGINS")

	if vs["STORE_DRIVER"] == "" {
		vs["STORE_DRIVER"] = STORE_DRIVER_POSTGRES
	}
	if vs["API_MODE"] == "" {
		vs["API_MODE"] = "production"
	}
	if vs["API_ORIGINS"] == "" {
		vs["API_ORIGINS"] = "*"
	}

	do.ProvideNamedValue(injector, "envs", vs)

	do.Provide(injector, func(i *do.Injector) (*logrus.Entry, error) {
		return logger.New(service), nil
	})

	do.Provide(injector, func(i *do.Injector) (*bun.DB, error) {
		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithDSN(os.Getenv("DB_DSN")),
			pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
		))

		db := bun.NewDB(sqldb, pgdialect.New())
		return db, nil
	})

	do.Provide(injector, func(i *do.Injector) (*mongo.Client, error) {
		return mongo.Connect(context.Background(), options.Client().ApplyURI(os.Getenv("MONGO_URI")))
	})

	do.Provide(injector, func(i *do.Injector) (datastore.Store, error) {
		return NewStore(i, vs["STORE_DRIVER"])
	})

	do.Provide(injector, func(i *do.Injector) (blobstore.Store, error) {
		useSSL, _ := strconv.ParseBool(os.Getenv("MINIO_USE_SSL"))
		return blobstore.NewMinioStore(context.Background(), &blobstore.MinioConfig{
			Endpoint:        os.Getenv("MINIO_ENDPOINT"),
			AccessKeyID:     os.Getenv("MINIO_ACCESS_KEY"),
			SecretAccessKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:          os.Getenv("MINIO_BUCKET"),
			Region:          os.Getenv("MINIO_REGION"),
			UseSSL:          useSSL,
			PublicURL:       os.Getenv("MEDIA_PUBLIC_URL"),
		})
	})

	provideRedis(injector, "redis-cache", "REDIS_CACHE", "CLUSTER_REDIS_CACHE")
	provideRedis(injector, "redis-limiter", "REDIS_LIMITER", "CLUSTER_REDIS_LIMITER")
	provideRedis(injector, "redis-mutex", "REDIS_MUTEX", "CLUSTER_REDIS_MUTEX")
	provideRedis(injector, "redis-progress", "REDIS_PROGRESS", "CLUSTER_REDIS_PROGRESS")

	do.ProvideNamed(injector, "redis-cache-readonly", func(i *do.Injector) (redis.UniversalClient, error) {
		var clusterOpts *redis.ClusterOptions
		var err error
		clusterCacheRedisReadOnlyURL := os.Getenv("CLUSTER_REDIS_CACHE_READONLY")
		if clusterCacheRedisReadOnlyURL != "" {
			clusterOpts, err = redis.ParseClusterURL(clusterCacheRedisReadOnlyURL)
		} else {
			clusterCacheRedisURL := os.Getenv("CLUSTER_REDIS_CACHE")
			if clusterCacheRedisURL != "" {
				clusterOpts, err = redis.ParseClusterURL(clusterCacheRedisURL)
			}
		}

		if err != nil {
			return nil, err
		}
		if clusterOpts != nil {
			clusterOpts.ReadOnly = true
			return redis.NewClusterClient(clusterOpts), nil
		}

		url := os.Getenv("REDIS_CACHE_READONLY")
		if url == "" {
			url = os.Getenv("REDIS_CACHE")
		}
		return db.InitRedis(&db.RedisConfig{
			URL: url,
		})
	})

	do.Provide(injector, func(i *do.Injector) (caching.Cache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache")
		if err != nil {
			return nil, err
		}

		return caching.NewCacheRedis(dbRedis, true)
	})

	do.Provide(injector, func(i *do.Injector) (caching.ReadOnlyCache, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-cache-readonly")
		if err != nil {
			return nil, err
		}

		return caching.NewCacheRedis(dbRedis, false)
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Limiter, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-limiter")
		if err != nil {
			return nil, err
		}

		return limiter.NewLimiter(dbRedis)
	})

	do.Provide(injector, func(i *do.Injector) (*redsync.Redsync, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-mutex")
		if err != nil {
			return nil, err
		}

		pool := goredis.NewPool(dbRedis)
		rs := redsync.New(pool)
		return rs, nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Locker, error) {
		rs, err := do.Invoke[*redsync.Redsync](i)
		if err != nil {
			return nil, err
		}
		return locking.NewRedisLocker(rs), nil
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.ProgressStore, error) {
		dbRedis, err := do.InvokeNamed[redis.UniversalClient](i, "redis-progress")
		if err != nil {
			return nil, err
		}
		return redis_store.NewProgressStore(dbRedis), nil
	})

	do.Provide(injector, func(i *do.Injector) (*services.Bot, error) {
		return services.NewBot(os.Getenv("BOT_TOKEN"))
	})

	do.Provide(injector, func(i *do.Injector) (*services.Authentication, error) {
		return services.NewAuthentication(os.Getenv("JWT_SECRET"))
	})

	do.Provide(injector, func(i *do.Injector) (interfaces.Notifier, error) {
		return services.NewModeratorNotifier(i)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceConfig, error) {
		return services.NewServiceConfig(i)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceDataVersion, error) {
		return services.NewServiceDataVersion(i)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceImport, error) {
		return services.NewServiceImport(i)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceCategory, error) {
		return services.NewServiceCategory(i)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceQuestion, error) {
		return services.NewServiceQuestion(i)
	})

	do.Provide(injector, func(i *do.Injector) (*services.ServiceModeration, error) {
		return services.NewServiceModeration(i)
	})

	return injector
}

// NewStore opens the document store selected by driver.
func NewStore(i *do.Injector, driver string) (datastore.Store, error) {
	switch driver {
	case STORE_DRIVER_POSTGRES:
		db, err := do.Invoke[*bun.DB](i)
		if err != nil {
			return nil, err
		}
		return datastore.NewPostgresStore(db), nil
	case STORE_DRIVER_MONGO:
		client, err := do.Invoke[*mongo.Client](i)
		if err != nil {
			return nil, err
		}
		return datastore.NewMongoStore(client, os.Getenv("MONGO_DATABASE")), nil
	case STORE_DRIVER_MEMORY:
		return datastore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func provideRedis(injector *do.Injector, name, urlEnv, clusterEnv string) {
	do.ProvideNamed(injector, name, func(i *do.Injector) (redis.UniversalClient, error) {
		clusterURL := os.Getenv(clusterEnv)
		if clusterURL != "" {
			clusterOpts, err := redis.ParseClusterURL(clusterURL)
			if err != nil {
				return nil, err
			}
			return redis.NewClusterClient(clusterOpts), nil
		}
		return db.InitRedis(&db.RedisConfig{
			URL: os.Getenv(urlEnv),
		})
	})
}
