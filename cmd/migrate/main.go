// Package main applies the embedded schema migrations.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"etf-turtle/internal/config"
	"etf-turtle/internal/logging"
	"etf-turtle/internal/storage/migrations"
	"etf-turtle/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()
	pool := postgres.New(cfg.Pool())
	defer pool.Close()

	if err := migrations.Run(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}
	log.Info().Msg("migrations applied")
}
