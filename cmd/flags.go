/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"feedwords/config"
	"feedwords/db"
	"feedwords/feeds"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func databaseFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "database",
		Aliases: []string{"d"},
		Value:   "feedwords.db",
		Usage:   "SQLite database file location",
		EnvVars: []string{"FEEDWORDS_DATABASE"},
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   config.DefaultPath,
		Usage:   "Path to the TOML configuration file, defaults are used when it does not exist",
		EnvVars: []string{"FEEDWORDS_CONFIG"},
	}
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	path := ctx.String("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	log.WithField("config", path).Debug("Configuration loaded")
	return cfg, nil
}

// openStore migrates the database and opens it with the configured catalog as default feeds
func openStore(ctx *cli.Context, cfg *config.Config) (*db.Store, error) {
	database := ctx.String("database")
	if err := db.Migrate(database); err != nil {
		return nil, err
	}
	return db.NewStore(database, feeds.ToFeedList(cfg.Catalog()))
}
