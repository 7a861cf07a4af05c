// Package main prints recent runs and trades as tables on stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"etf-turtle/internal/config"
	"etf-turtle/internal/domain"
	"etf-turtle/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	limit := flag.Int("limit", 10, "Maximum rows per table")
	task := flag.String("task", "", "Restrict runs to one task type (scanner|monitor)")
	symbol := flag.String("symbol", "", "Also print recent trades for this symbol")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool := postgres.New(cfg.Pool())
	defer pool.Close()

	if err := printRuns(ctx, postgres.NewRunStore(pool), *task, *limit); err != nil {
		fmt.Fprintf(os.Stderr, "Error listing runs: %v\n", err)
		os.Exit(1)
	}

	if *symbol != "" {
		if err := printTrades(ctx, postgres.NewTradeStore(pool), *symbol, *limit); err != nil {
			fmt.Fprintf(os.Stderr, "Error listing trades: %v\n", err)
			os.Exit(1)
		}
	}
}

func printRuns(ctx context.Context, runs *postgres.RunStore, task string, limit int) error {
	var taskType *domain.TaskType
	if task != "" {
		t := domain.TaskType(task)
		taskType = &t
	}

	recent, err := runs.Recent(ctx, taskType, limit)
	if err != nil {
		return err
	}

	fmt.Printf("Recent runs (%d):\n", len(recent))
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Started", "Task", "Status", "Checked", "Signals", "Actions", "Errors", "Summary")
	for _, r := range recent {
		summary := ""
		if r.Summary != nil {
			summary = *r.Summary
		}
		table.Append(
			r.StartedAt.Format(time.DateTime),
			string(r.TaskType),
			string(r.Status),
			strconv.Itoa(r.SymbolsChecked),
			strconv.Itoa(r.SignalsFound),
			strconv.Itoa(r.ActionsNeeded),
			strconv.Itoa(r.ErrorsCount),
			summary,
		)
	}
	table.Render()
	return nil
}

func printTrades(ctx context.Context, trades *postgres.TradeStore, symbol string, limit int) error {
	recent, err := trades.RecentBySymbol(ctx, symbol, limit)
	if err != nil {
		return err
	}

	fmt.Printf("\nRecent trades for %s (%d):\n", symbol, len(recent))
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Exit", "Dir", "Sys", "Entry", "Exit px", "Days", "Net PnL", "R", "Win")
	for _, t := range recent {
		table.Append(
			t.ExitDate.Format(time.DateOnly),
			string(t.Direction),
			string(t.System),
			fmt.Sprintf("%.2f", t.EntryPrice),
			fmt.Sprintf("%.2f", t.ExitPrice),
			strconv.Itoa(t.HoldingDays()),
			fmt.Sprintf("%.2f", t.NetPnL()),
			fmt.Sprintf("%.2f", t.RMultiple()),
			strconv.FormatBool(t.IsWinner()),
		)
	}
	table.Render()
	return nil
}
