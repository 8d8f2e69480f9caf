/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "feedwords",
		Usage: "Word frequency analysis of RSS and Atom feeds",
		Description: `Fetches a selection of RSS and Atom feeds and counts the words
		used in their titles and descriptions.

		Common English stopwords and your own custom stopwords are left out.
		For each feed the most frequent words are reported together with the
		articles they appeared in. Results are served over an HTTP API with a
		small browser UI, or printed as JSON by the analyze command.

		Flags can generally be set via environment variables, e.g.:

		--database => FEEDWORDS_DATABASE=feedwords.db
		--port => FEEDWORDS_PORT=3000
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level: trace, debug, info, warn, error",
				EnvVars: []string{"FEEDWORDS_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:    "log-json",
				Usage:   "Log as JSON instead of text",
				EnvVars: []string{"FEEDWORDS_LOG_JSON"},
			},
		},
		Before: func(ctx *cli.Context) error {
			level, err := log.ParseLevel(ctx.String("log-level"))
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			log.SetLevel(level)
			if ctx.Bool("log-json") {
				log.SetFormatter(&log.JSONFormatter{})
			}
			// Stdout is reserved for command output
			log.SetOutput(os.Stderr)
			return nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			analyzeCmd(),
			migrateCmd(),
			rollbackCmd(),
			tidyCmd(),
			feedsCmd(),
			stopwordsCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}
