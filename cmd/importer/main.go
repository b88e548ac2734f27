package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"lamah/internal/container"
	"lamah/internal/content"
	"lamah/internal/models"
	"lamah/internal/services"

	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/sirupsen/logrus"
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

// the CLI acts with full access
var operator = &models.Caller{ID: "cli", Role: models.RoleAdmin}

func main() {
	injector := container.New("importer", map[string]string{})

	app := &cli.App{
		Name: "importer",
		Commands: []*cli.Command{
			commandImport(injector, "import", false),
			commandImport(injector, "import-forced", true),
			commandImportArchive(injector),
			commandBackfill(injector),
			commandVerify(injector),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandImport(injector *do.Injector, name string, force bool) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: "import delimited question lines from a text file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "input",
				Value: "./questions.txt",
			},
		},
		Action: func(c *cli.Context) error {
			text, err := os.ReadFile(c.String("input"))
			if err != nil {
				return err
			}

			serviceImport, err := do.Invoke[*services.ServiceImport](injector)
			if err != nil {
				return err
			}

			importer := serviceImport.ImportBulk
			if force {
				importer = serviceImport.ImportBulkForced
			}
			summary, err := importer(c.Context, operator, string(text), progressLogger(injector))
			if err != nil {
				return err
			}

			return printJSON(summary)
		},
	}
}

func commandImportArchive(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "import-archive",
		Usage: "import a zip holding one csv sheet and its media",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "input",
				Value: "./questions.zip",
			},
			&cli.StringFlag{
				Name:     "category",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			input := c.String("input")
			data, err := os.ReadFile(input)
			if err != nil {
				return err
			}

			serviceImport, err := do.Invoke[*services.ServiceImport](injector)
			if err != nil {
				return err
			}

			var summary *models.ImportSummary
			if strings.HasSuffix(strings.ToLower(input), ".csv") {
				rows, skipped, err := content.ParseRows(bytes.NewReader(data))
				if err != nil {
					return err
				}
				if len(skipped) > 0 {
					log.Println("skipped rows", skipped)
				}
				summary, err = serviceImport.ImportFromStructuredFile(c.Context, operator, rows, nil, c.String("category"), progressLogger(injector))
				if err != nil {
					return err
				}
			} else {
				summary, err = serviceImport.ImportArchive(c.Context, operator, data, c.String("category"), progressLogger(injector))
				if err != nil {
					return err
				}
			}

			return printJSON(summary)
		},
	}
}

func commandBackfill(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "backfill",
		Usage: "assign missing tracking ids and rebuild category question lists",
		Action: func(c *cli.Context) error {
			serviceCategory, err := do.Invoke[*services.ServiceCategory](injector)
			if err != nil {
				return err
			}

			report, err := serviceCategory.RebuildQuestionIndex(c.Context)
			if err != nil {
				return err
			}

			return printJSON(report)
		},
	}
}

func commandVerify(injector *do.Injector) *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "mark every question of a category as verified",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "category",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "unverify",
				Usage: "clear the flag instead",
			},
		},
		Action: func(c *cli.Context) error {
			serviceCategory, err := do.Invoke[*services.ServiceCategory](injector)
			if err != nil {
				return err
			}
			serviceQuestion, err := do.Invoke[*services.ServiceQuestion](injector)
			if err != nil {
				return err
			}

			questions, err := serviceCategory.ResolveQuestions(c.Context, c.String("category"))
			if err != nil {
				return err
			}

			ids := make([]string, 0, len(questions))
			for _, question := range questions {
				ids = append(ids, question.ID)
			}

			result, err := serviceQuestion.SetVerification(c.Context, operator, ids, !c.Bool("unverify"))
			if err != nil {
				return err
			}
			if err := printJSON(result); err != nil {
				return err
			}
			if len(result.Errors) > 0 {
				return errors.Join(errors.New("some chunks failed"), result.Errors[0])
			}
			return nil
		},
	}
}

func progressLogger(injector *do.Injector) services.ProgressFunc {
	logger := do.MustInvoke[*logrus.Entry](injector)
	return func(progress models.ImportProgress) {
		logger.WithFields(logrus.Fields{
			"run":       progress.RunID,
			"phase":     progress.Phase,
			"processed": progress.Processed,
			"total":     progress.Total,
		}).Info("import progress")
	}
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
