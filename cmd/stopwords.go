/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"feedwords/analysis"
	"fmt"
	"strings"

	"github.com/cqroot/prompt"
	"github.com/urfave/cli/v2"
)

func stopwordsCmd() *cli.Command {
	return &cli.Command{
		Name:  "stopwords",
		Usage: "Show and change the custom stopwords",
		Flags: []cli.Flag{
			databaseFlag(),
			configFlag(),
		},
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the custom stopwords, or the built-in ones with --builtin",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "builtin",
						Usage: "List the built-in English stopwords",
					},
				},
				Action: func(ctx *cli.Context) error {
					if ctx.Bool("builtin") {
						for _, word := range analysis.BuiltinStopwords() {
							fmt.Println(word)
						}
						return nil
					}

					cfg, err := loadConfig(ctx)
					if err != nil {
						return err
					}
					store, err := openStore(ctx, cfg)
					if err != nil {
						return err
					}
					defer store.Close()

					words, err := store.CustomStopwords(ctx.Context)
					if err != nil {
						return err
					}
					for _, word := range words {
						fmt.Println(word)
					}
					return nil
				},
			},
			{
				Name:        "add",
				Usage:       "Add custom stopwords",
				ArgsUsage:   "[WORD...]",
				Description: `Adds the given words to the custom stopwords. Asks for a comma separated list when no words are given.`,
				Action: func(ctx *cli.Context) error {
					words := ctx.Args().Slice()
					if len(words) == 0 {
						answer, err := prompt.New().Ask("Stopwords (comma separated):").Input("")
						if err != nil {
							return err
						}
						words = splitWords(answer)
					}

					cfg, err := loadConfig(ctx)
					if err != nil {
						return err
					}
					store, err := openStore(ctx, cfg)
					if err != nil {
						return err
					}
					defer store.Close()

					existing, err := store.CustomStopwords(ctx.Context)
					if err != nil {
						return err
					}
					if err := store.SaveCustomStopwords(ctx.Context, append(existing, words...)); err != nil {
						return err
					}

					saved, err := store.CustomStopwords(ctx.Context)
					if err != nil {
						return err
					}
					fmt.Printf("%d custom stopwords\n", len(saved))
					return nil
				},
			},
			{
				Name:  "clear",
				Usage: "Remove all custom stopwords",
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

					return store.SaveCustomStopwords(ctx.Context, nil)
				},
			},
		},
	}
}

func splitWords(answer string) []string {
	return analysis.NormalizeStopwords(strings.FieldsFunc(answer, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	}))
}
