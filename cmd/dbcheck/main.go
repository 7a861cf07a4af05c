// Package main is the SQL connectivity smoke test: it pings the database and
// reports row counts for the three audit tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"etf-turtle/internal/config"
	"etf-turtle/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	timeout := flag.Duration("timeout", 10*time.Second, "Overall check timeout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool := postgres.New(cfg.Pool())
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Connectivity check failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Database reachable")

	for _, table := range []string{"runs", "trades", "calculated_indicators"} {
		var count int64
		err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %-22s error: %v\n", table, err)
			os.Exit(1)
		}
		fmt.Printf("  %-22s %d row(s)\n", table, count)
	}
}
