/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"feedwords/feeds"
	"feedwords/models"
	"fmt"
	"strings"

	"github.com/cqroot/prompt"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
)

func feedsCmd() *cli.Command {
	return &cli.Command{
		Name:  "feeds",
		Usage: "Show and change the selected feeds",
		Flags: []cli.Flag{
			databaseFlag(),
			configFlag(),
		},
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the selected feeds, or the whole catalog with --catalog",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "catalog",
						Usage: "List every feed of the catalog grouped by category",
					},
				},
				Action: func(ctx *cli.Context) error {
					cfg, err := loadConfig(ctx)
					if err != nil {
						return err
					}

					if ctx.Bool("catalog") {
						catalog := cfg.Catalog()
						for _, category := range feeds.Categories(catalog) {
							fmt.Println(category)
							for _, feed := range feeds.InCategory(catalog, category) {
								fmt.Printf("  %s\t%s\n", feed.Name, feed.URL)
							}
						}
						return nil
					}

					store, err := openStore(ctx, cfg)
					if err != nil {
						return err
					}
					defer store.Close()

					selected, err := store.SelectedFeeds(ctx.Context)
					if err != nil {
						return err
					}
					for _, name := range selected.Keys() {
						url, _ := selected.Get(name)
						fmt.Printf("%s\t%s\n", name, url)
					}
					return nil
				},
			},
			{
				Name:        "select",
				Usage:       "Pick feeds from the catalog interactively",
				Description: `Shows the feed catalog and saves the feeds you pick as the new selection.`,
				Action: func(ctx *cli.Context) error {
					cfg, err := loadConfig(ctx)
					if err != nil {
						return err
					}
					catalog := cfg.Catalog()

					choices := lo.Map(catalog, func(feed models.Feed, _ int) string {
						return feed.Name
					})
					picked, err := prompt.New().Ask("Select feeds:").MultiChoose(choices)
					if err != nil {
						return err
					}

					urls := feeds.ToFeedList(catalog)
					selection := models.NewOrderedMap[string]()
					for _, name := range picked {
						url, _ := urls.Get(name)
						selection.Set(name, url)
					}

					store, err := openStore(ctx, cfg)
					if err != nil {
						return err
					}
					defer store.Close()

					if err := store.SaveSelectedFeeds(ctx.Context, selection); err != nil {
						return err
					}
					fmt.Printf("Selected %d feeds\n", selection.Len())
					return nil
				},
			},
			{
				Name:      "set",
				Usage:     "Replace the selection with the given feeds",
				ArgsUsage: "NAME=URL [NAME=URL...]",
				Action: func(ctx *cli.Context) error {
					selection, err := parseFeedArgs(ctx.Args().Slice())
					if err != nil {
						return err
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

					if err := store.SaveSelectedFeeds(ctx.Context, selection); err != nil {
						return err
					}
					fmt.Printf("Selected %d feeds\n", selection.Len())
					return nil
				},
			},
		},
	}
}

// parseFeedArgs parses NAME=URL arguments in order, the url being everything after the first =
func parseFeedArgs(args []string) (*models.FeedList, error) {
	if len(args) == 0 {
		return nil, errors.New("at least one NAME=URL argument is required")
	}

	selection := models.NewOrderedMap[string]()
	for _, arg := range args {
		name, url, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		url = strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			return nil, fmt.Errorf("invalid feed %q, expected NAME=URL", arg)
		}
		selection.Set(name, url)
	}
	return selection, nil
}
