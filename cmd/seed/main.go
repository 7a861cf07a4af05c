// Package main loads the built-in ETF universe (and optionally demo
// indicator snapshots) into the database. All writes run in one explicit
// transaction so a partial seed never survives.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"etf-turtle/internal/config"
	"etf-turtle/internal/domain"
	"etf-turtle/internal/logging"
	"etf-turtle/internal/storage/migrations"
	"etf-turtle/internal/storage/postgres"
	"etf-turtle/internal/universe"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	withDemo := flag.Bool("demo-indicators", false, "Also seed one demo indicator snapshot per symbol")
	migrate := flag.Bool("migrate", true, "Apply migrations before seeding")
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

	if *migrate {
		if err := migrations.Run(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
	}

	entries := universe.Defaults()

	var snapshots []*domain.IndicatorSnapshot
	if *withDemo {
		snapshots = demoSnapshots(entries)
	}

	if err := migrations.Seed(ctx, pool, entries, snapshots); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().
		Int("universe", len(entries)).
		Int("snapshots", len(snapshots)).
		Msg("seed applied")
}

// demoSnapshots fabricates one current snapshot per symbol so a fresh
// environment has data for the scanner sweep. Values are placeholders, not
// market data.
func demoSnapshots(entries []domain.UniverseEntry) []*domain.IndicatorSnapshot {
	today := time.Now().Truncate(24 * time.Hour)

	var snapshots []*domain.IndicatorSnapshot
	for i, e := range entries {
		base := 100 + float64(i)*25
		snapshots = append(snapshots, &domain.IndicatorSnapshot{
			Symbol:     e.Symbol,
			CalcDate:   today,
			N:          base * 0.02,
			Donchian10: &domain.Channel{Period: domain.ChannelPeriod10, Upper: base * 1.03, Lower: base * 0.97},
			Donchian20: &domain.Channel{Period: domain.ChannelPeriod20, Upper: base * 1.05, Lower: base * 0.95},
			Donchian55: &domain.Channel{Period: domain.ChannelPeriod55, Upper: base * 1.08, Lower: base * 0.92},
		})
	}
	return snapshots
}
