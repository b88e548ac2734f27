package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"lamah/internal/container"
	"lamah/internal/datastore"
	"lamah/internal/services"

	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandConfigMigration(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			injector := container.New("migrate", map[string]string{})
			vs := do.MustInvokeNamed[map[string]string](injector, "envs")

			switch vs["STORE_DRIVER"] {
			case container.STORE_DRIVER_MONGO:
				client, err := do.Invoke[*mongo.Client](injector)
				if err != nil {
					return err
				}
				store := datastore.NewMongoStore(client, os.Getenv("MONGO_DATABASE"))
				if err := datastore.CreateMongoIndexes(ctx, store); err != nil {
					return err
				}
			case container.STORE_DRIVER_MEMORY:
				log.Println("memory store needs no migration")
				return nil
			default:
				db, err := do.Invoke[*bun.DB](injector)
				if err != nil {
					return err
				}
				if err := datastore.CreateTableDocument(ctx, db); err != nil {
					return err
				}
			}

			log.Println("Migrate success")
			return nil
		},
	}
}

func commandConfigMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate-config",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			injector := container.New("migrate", map[string]string{})

			serviceConfig, err := do.Invoke[*services.ServiceConfig](injector)
			if err != nil {
				return err
			}

			defaults := map[string]string{
				services.CONFIG_SERVER_MODE:                  services.SERVER_MODE_DEVELOPMENT,
				services.CONFIG_BATCH_LIMIT:                  strconv.Itoa(services.DEFAULT_BATCH_LIMIT),
				services.CONFIG_VERIFY_BATCH_DELAY_MS:        strconv.Itoa(services.DEFAULT_VERIFY_BATCH_DELAY_MS),
				services.CONFIG_SUBMIT_RATE_LIMIT_PER_MINUTE: strconv.Itoa(services.DEFAULT_SUBMIT_RATE_LIMIT_PER_MINUTE),
				services.CONFIG_CRONJOB_TIME_REINDEX:         services.DEFAULT_CRONJOB_TIME_REINDEX,
			}
			for key, value := range defaults {
				config, err := serviceConfig.EnsureConfig(ctx, key, value)
				if err != nil {
					return err
				}
				log.Println(config.Key, "=", config.Value)
			}

			return nil
		},
	}
}
