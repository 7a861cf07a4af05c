// Package main runs the daily scanner task. Signal detection lives in the
// strategy engine; this binary runs the indicator-freshness sweep over the
// ETF universe and produces the audit run for it.
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
	staleAfter := flag.Duration("stale-after", 72*time.Hour, "Snapshot age that counts as stale")
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
		runs = pgstore.NewRunStore(pool)
		indicators = pgstore.NewIndicatorStore(pool)
		catalog = pgstore.NewUniverseStore(pool)
	}

	logger := runlog.New(runs).WithMetrics(metrics)
	if err := runScan(ctx, logger, catalog, indicators, *staleAfter); err != nil {
		log.Fatal().Err(err).Msg("scanner task failed")
	}
}

// runScan opens a scanner run, records one check per universe symbol and
// finalizes the run. A universe listing failure aborts early via Fail.
func runScan(ctx context.Context, logger *runlog.Logger, catalog storage.UniverseStore, indicators storage.IndicatorStore, staleAfter time.Duration) error {
	entries, err := catalog.ActiveSymbols(ctx)
	if err != nil {
		run := logger.StartScanner(0, "")
		if failErr := logger.Fail(ctx, run, fmt.Sprintf("list universe: %v", err)); failErr != nil {
			return errors.Join(err, failErr)
		}
		return err
	}

	marketDate := time.Now().Format("2006-01-02")
	run := logger.StartScanner(len(entries), marketDate)

	for _, e := range entries {
		snap, err := indicators.Latest(ctx, e.Symbol)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			logger.RecordScannerCheck(run, domain.ScannerCheck{
				Symbol: e.Symbol,
				Error:  "no indicator snapshot",
			})
		case err != nil:
			logger.RecordScannerCheck(run, domain.ScannerCheck{
				Symbol: e.Symbol,
				Error:  err.Error(),
			})
		case time.Since(snap.CalcDate) > staleAfter:
			logger.RecordScannerCheck(run, domain.ScannerCheck{
				Symbol: e.Symbol,
				Error:  fmt.Sprintf("stale snapshot: %s", snap.CalcDate.Format("2006-01-02")),
			})
		default:
			logger.RecordScannerCheck(run, domain.ScannerCheck{Symbol: e.Symbol})
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
