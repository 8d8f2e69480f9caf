/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"feedwords/db"
	"fmt"

	"github.com/urfave/cli/v2"
)

func tidyCmd() *cli.Command {
	return &cli.Command{
		Name:  "tidy",
		Usage: "Tidy up the database",
		Description: `Tidy up the database by removing analysis runs that are old.

		Removes analysis history older than the retention period, 90 days
		by default. Feed selection and stopwords are never removed.`,
		Flags: []cli.Flag{
			databaseFlag(),
			&cli.DurationFlag{
				Name:    "retention",
				Value:   db.DefaultRetention,
				Usage:   "Keep analysis runs younger than this",
				EnvVars: []string{"FEEDWORDS_RETENTION"},
			},
		},
		Action: func(ctx *cli.Context) error {
			database := ctx.String("database")
			fmt.Println("Database configured: ", database)
			if err := db.Migrate(database); err != nil {
				return err
			}
			removed, err := db.Tidy(database, ctx.Duration("retention"))
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d analysis runs\n", removed)
			return nil
		},
	}
}
