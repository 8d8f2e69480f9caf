/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"feedwords/analyzer"
	"feedwords/feeds"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Run one analysis pass and print the result",
		Description: `Fetches the selected feeds, counts their words and prints the
result as a single JSON object on stdout. Use a tool like jq to process
the output.

Prints all log messages to stderr.`,
		Flags: []cli.Flag{
			databaseFlag(),
			configFlag(),
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Indent the JSON output",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record the run in the analysis history",
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			opts := []analyzer.Option{analyzer.WithLimits(cfg.Limits())}
			if !ctx.Bool("no-history") {
				opts = append(opts, analyzer.WithHistory(store))
			}
			a := analyzer.New(feeds.NewFetcher(cfg.FetcherConfig()), store, opts...)

			runCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt)
			defer stop()

			response, err := a.Run(runCtx)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			if ctx.Bool("pretty") {
				encoder.SetIndent("", "  ")
			}
			if err := encoder.Encode(response); err != nil {
				return fmt.Errorf("error encoding result: %w", err)
			}
			return nil
		},
	}
}
