package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/shelfmark/shelfmark/pkg/auth"
	"github.com/shelfmark/shelfmark/pkg/categories"
	"github.com/shelfmark/shelfmark/pkg/config"
	"github.com/shelfmark/shelfmark/pkg/reports"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

func newApp(cfg *config.Config, db *bun.DB, out io.Writer) *cli.App {
	reportService := reports.NewService(db)
	categoryService := categories.NewService(db)
	authService := auth.NewService(db, cfg.JWTSecret)

	return &cli.App{
		Name:        "shelfctl",
		Usage:       "catalog maintenance commands",
		Description: "Exports and statistics over the book catalog, plus helpers for local setup",
		Writer:      out,
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "write every book with its activity counts to books.json",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "directory",
						Usage: "directory the export file is written to",
						Value: cfg.ExportDirectory,
					},
				},
				Action: func(c *cli.Context) error {
					path, err := reportService.ExportBooks(c.Context, c.String("directory"))
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Exported books to %s\n", path)
					return nil
				},
			},
			{
				Name:  "review-statistics",
				Usage: "print the day (or month) with the most published reviews",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "month",
						Usage: "group reviews by month instead of by day",
					},
				},
				Action: func(c *cli.Context) error {
					granularity := reports.ByDay
					if c.Bool("month") {
						granularity = reports.ByMonth
					}

					peak, err := reportService.ReviewPeak(c.Context, granularity)
					if errors.Is(err, reports.ErrNoReviews) {
						fmt.Fprintln(out, "There are no reviews yet.")
						return nil
					}
					if err != nil {
						return err
					}

					fmt.Fprintln(out, peak.Describe(granularity))
					return nil
				},
			},
			{
				Name:  "fixtures",
				Usage: "load the default categories",
				Action: func(c *cli.Context) error {
					created, err := categoryService.LoadFixtures(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Loaded %d of %d categories\n", created, len(categories.Fixtures))
					return nil
				},
			},
			{
				Name:      "token",
				Usage:     "issue an API token for a user",
				ArgsUsage: "<user-id>",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "how long the token stays valid",
						Value: auth.TokenExpiry,
					},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errors.New("expected exactly one user id")
					}

					user, err := authService.GetUserByID(c.Context, c.Args().First())
					if err != nil {
						return err
					}

					token, err := authService.GenerateToken(user, c.Duration("ttl"))
					if err != nil {
						return err
					}
					fmt.Fprintln(out, token)
					return nil
				},
			},
		},
	}
}
