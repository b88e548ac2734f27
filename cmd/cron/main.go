package main

import (
	"log"
	"os"

	"lamah/internal/container"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
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
		Name: "cronjob",
		Commands: []*cli.Command{
			commandCronjob(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandCronjob() *cli.Command {
	return &cli.Command{
		Name: "cron",
		Action: func(c *cli.Context) error {
			injector := container.New("cron", map[string]string{})
			defer injector.Shutdown() //nolint:errcheck

			job, err := NewReindexJob(injector)
			if err != nil {
				return err
			}

			cronRunner := cron.New()
			if err := job.Start(c.Context, cronRunner); err != nil {
				return err
			}

			log.Println("Start cronjob")
			cronRunner.Run()
			return nil
		},
	}
}
