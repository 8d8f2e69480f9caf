/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"feedwords/analyzer"
	"feedwords/db"
	"feedwords/feeds"
	"feedwords/scheduler"
	"feedwords/server"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the feedwords API and browser UI",
		Description: `Starts the feedwords HTTP server.

Each request to /api/analyze fetches the selected feeds and runs a full
analysis pass. With --schedule passes also run in the background, their
summaries are kept in the history and pushed to connected browsers.`,
		Flags: []cli.Flag{
			databaseFlag(),
			configFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   3000,
				Usage:   "Port to listen on",
				EnvVars: []string{"FEEDWORDS_PORT"},
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Cron spec for background analysis, e.g. \"@every 1h\", empty disables it",
				EnvVars: []string{"FEEDWORDS_SCHEDULE"},
			},
			&cli.StringFlag{
				Name:    "cors",
				Usage:   "Comma separated allowed CORS origins, overrides the configuration file",
				EnvVars: []string{"FEEDWORDS_CORS_ORIGINS"},
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

			if removed, err := store.TidyRuns(ctx.Context, db.DefaultRetention); err != nil {
				log.WithError(err).Error("Error tidying database")
			} else if removed > 0 {
				log.WithField("removed", removed).Info("Tidied analysis history")
			}

			bc := server.NewBroadcaster()
			a := analyzer.New(
				feeds.NewFetcher(cfg.FetcherConfig()),
				store,
				analyzer.WithLimits(cfg.Limits()),
				analyzer.WithHistory(store),
			)
			a.OnComplete(bc.BroadcastAnalysis)

			corsOrigins := cfg.Server.CorsOrigins
			if ctx.String("cors") != "" {
				corsOrigins = ctx.String("cors")
			}

			app := server.Server(&server.ServerConfig{
				Settings:    store,
				History:     store,
				Analyzer:    a,
				Broadcaster: bc,
				Catalog:     cfg.Catalog(),
				CorsOrigins: corsOrigins,
			})

			runCtx, cancel := context.WithCancel(ctx.Context)
			defer cancel()

			sched := scheduler.New(time.Local)
			if spec := ctx.String("schedule"); spec != "" {
				err := sched.Schedule(spec, func() {
					if _, err := a.Run(runCtx); err != nil {
						log.WithError(err).Warn("Scheduled analysis failed")
					}
				})
				if err != nil {
					return err
				}
				sched.Start()
				log.WithFields(log.Fields{
					"schedule": spec,
					"next":     sched.Next(),
				}).Info("Background analysis enabled")
			}

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
			done := make(chan struct{})

			go func() {
				<-c
				log.WithField("clients", bc.ClientCount()).Info("Gracefully shutting down...")
				cancel()
				sched.Stop()
				bc.Shutdown()
				if err := app.ShutdownWithTimeout(60 * time.Second); err != nil {
					log.WithError(err).Error("Error shutting down server")
				}
				close(done)
			}()

			log.WithField("port", ctx.Int("port")).Info("Starting server...")
			if err := app.Listen(fmt.Sprintf(":%d", ctx.Int("port"))); err != nil {
				return err
			}

			<-done
			log.Info("Done!")
			return nil
		},
	}
}
