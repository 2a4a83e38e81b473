// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/feastfit/internal/meallog"
	"github.com/pdiddy/feastfit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve starts the JSON API on the configured address:

  POST /api/search-restaurants   ranked, scored restaurants plus a snapshot
  POST /api/refine-results       conversational follow-up on a result set
  POST /api/coach                nutrition coaching with search and log context
  POST /api/log-meal             record a meal for a signed-in user
  GET  /api/logs?userId=...      list a user's meals, newest first
  GET  /health                   liveness

If the meal log database cannot be opened the API still serves searches;
the log endpoints then report a configuration error.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	log, err := newLogger(cmd, true)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Upstream.APIKey == "" {
		log.Warn("no upstream API key configured; searches will fail with a configuration error")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store server.LogStore
	db, err := meallog.Open(cfg.Store)
	if err != nil {
		log.Warn("meal log store unavailable", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	} else {
		defer db.Close()
		store = db
	}

	p := newPipeline(cfg, log)
	go p.Limiter().Run(ctx, cfg.RateLimit.SweepInterval)

	return server.New(p, store, log).Run(ctx, cfg.Server)
}
