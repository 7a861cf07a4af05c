// Package main runs the position-monitor task. Exit decisions live in the
// strategy engine; this binary verifies connectivity and flags symbols whose
// indicator snapshots need a refresh, producing the audit run for it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"etf-turtle/internal/config"
	"etf-turtle/internal/domain"
	"etf-turtle/internal/logging"
	"etf-turtle/internal/observability"
	"etf-turtle/internal/runlog"
	"etf-turtle/internal/storage"
	"etf-turtle/internal/storage/memory"
	pgstore "etf-turtle/internal/storage/postgres"
	"etf-turtle/internal/universe"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	staleAfter := flag.Duration("stale-after", 72*time.Hour, "Snapshot age that needs a refresh action")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	metrics := observability.NewMetrics("")
	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		runs       storage.RunStore
		indicators storage.IndicatorStore
		catalog    storage.UniverseStore
		connected  = true
	)
	if *useMemory {
		memUniverse := memory.NewUniverseStore()
		for _, e := range universe.Defaults() {
			memUniverse.Put(e)
		}
		runs = memory.NewRunStore()
		indicators = memory.NewIndicatorStore()
		catalog = memUniverse
	} else {
		pool := pgstore.New(cfg.Pool()).WithMetrics(metrics)
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			// Connectivity is part of the monitor's audit trail; the run
			// itself may still fail to persist, which is surfaced below.
			log.Error().Err(err).Msg("database unreachable")
			connected = false
		}
		runs = pgstore.NewRunStore(pool)
		indicators = pgstore.NewIndicatorStore(pool)
		catalog = pgstore.NewUniverseStore(pool)
	}

	logger := runlog.New(runs).WithMetrics(metrics)
	if err := runMonitor(ctx, logger, catalog, indicators, connected, *staleAfter); err != nil {
		log.Fatal().Err(err).Msg("monitor task failed")
	}
}

// runMonitor opens a monitor run, records one check per universe symbol and
// finalizes the run. Without connectivity the run is failed immediately.
func runMonitor(ctx context.Context, logger *runlog.Logger, catalog storage.UniverseStore, indicators storage.IndicatorStore, connected bool, staleAfter time.Duration) error {
	run := logger.StartMonitor(connected)

	if !connected {
		return logger.Fail(ctx, run, "database unreachable")
	}

	entries, err := catalog.ActiveSymbols(ctx)
	if err != nil {
		if failErr := logger.Fail(ctx, run, fmt.Sprintf("list universe: %v", err)); failErr != nil {
			return errors.Join(err, failErr)
		}
		return err
	}

	for _, e := range entries {
		snap, err := indicators.Latest(ctx, e.Symbol)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			logger.RecordMonitorCheck(run, domain.MonitorCheck{
				Symbol: e.Symbol,
				Action: "calculate initial indicators",
			})
		case err != nil:
			logger.RecordMonitorCheck(run, domain.MonitorCheck{
				Symbol: e.Symbol,
				Error:  err.Error(),
			})
		case time.Since(snap.CalcDate) > staleAfter:
			logger.RecordMonitorCheck(run, domain.MonitorCheck{
				Symbol: e.Symbol,
				Action: fmt.Sprintf("refresh indicators (last %s)", snap.CalcDate.Format("2006-01-02")),
			})
		default:
			logger.RecordMonitorCheck(run, domain.MonitorCheck{Symbol: e.Symbol})
		}
	}

	return logger.Complete(ctx, run)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	log.Info().Str("addr", addr).Msg("metrics server listening")
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metrics server error")
	}
}
