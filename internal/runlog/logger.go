// Package runlog owns the in-memory lifecycle of task execution records:
// a run is created at task start, accumulates per-symbol check results
// without touching storage, and is persisted exactly once when finalized.
package runlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"etf-turtle/internal/domain"
	"etf-turtle/internal/observability"
	"etf-turtle/internal/storage"
)

// Logger drives the running -> {success, partial, failed} state machine.
// It exclusively owns a run's state until the terminal save hands ownership
// to the run store.
type Logger struct {
	runs    storage.RunStore
	metrics *observability.Metrics
	now     func() time.Time
}

// New creates a run lifecycle logger backed by the given store.
func New(runs storage.RunStore) *Logger {
	return &Logger{runs: runs, now: time.Now}
}

// WithClock overrides the clock, for deterministic tests.
func (l *Logger) WithClock(now func() time.Time) *Logger {
	l.now = now
	return l
}

// WithMetrics attaches run-outcome metrics.
func (l *Logger) WithMetrics(m *observability.Metrics) *Logger {
	l.metrics = m
	return l
}

// StartScanner creates a scanner run in the running state. Nothing is
// persisted until Complete or Fail.
func (l *Logger) StartScanner(universeSize int, marketDate string) *domain.Run {
	return l.start(domain.TaskScanner, &domain.ScannerDetail{
		UniverseSize: universeSize,
		MarketDate:   marketDate,
		Checks:       []domain.ScannerCheck{},
	})
}

// StartMonitor creates a monitor run in the running state.
func (l *Logger) StartMonitor(connected bool) *domain.Run {
	return l.start(domain.TaskMonitor, &domain.MonitorDetail{
		Connected: connected,
		Checks:    []domain.MonitorCheck{},
	})
}

func (l *Logger) start(taskType domain.TaskType, detail domain.RunDetail) *domain.Run {
	run := &domain.Run{
		ID:        uuid.NewString(),
		TaskType:  taskType,
		StartedAt: l.now(),
		Status:    domain.RunStatusRunning,
		Details:   detail,
	}
	log.Debug().Str("run_id", run.ID).Str("task", string(taskType)).Msg("run started")
	return run
}

// RecordScannerCheck appends one symbol's outcome to a scanner run. A check
// carrying an error string is data, not a failure: it is recorded and counted,
// and the run stays alive. No I/O happens here.
func (l *Logger) RecordScannerCheck(run *domain.Run, check domain.ScannerCheck) {
	detail, ok := run.Details.(*domain.ScannerDetail)
	if !ok || run.Terminal() {
		l.dropCheck(run, "scanner")
		return
	}

	detail.Checks = append(detail.Checks, check)
	if check.Error != "" {
		run.ErrorsCount++
		return
	}
	run.SymbolsChecked++
	if check.Signal != "" {
		run.SignalsFound++
	}
}

// RecordMonitorCheck appends one position's outcome to a monitor run.
func (l *Logger) RecordMonitorCheck(run *domain.Run, check domain.MonitorCheck) {
	detail, ok := run.Details.(*domain.MonitorDetail)
	if !ok || run.Terminal() {
		l.dropCheck(run, "monitor")
		return
	}

	detail.Checks = append(detail.Checks, check)
	if check.Error != "" {
		run.ErrorsCount++
		return
	}
	run.SymbolsChecked++
	if check.Action != "" {
		run.ActionsNeeded++
	}
}

func (l *Logger) dropCheck(run *domain.Run, kind string) {
	if l.metrics != nil {
		l.metrics.ChecksDropped.Inc()
	}
	log.Warn().Str("run_id", run.ID).Str("kind", kind).Msg("check dropped: run not open")
}

// Complete finalizes a run: stamps the completion time, decides the terminal
// status from the counters, renders the summary and persists. A persistence
// failure is returned to the caller; the run log is best-effort but its
// failure is never swallowed.
func (l *Logger) Complete(ctx context.Context, run *domain.Run) error {
	now := l.now()
	run.CompletedAt = &now
	run.Status = decideStatus(run.ErrorsCount, run.SymbolsChecked)

	summary := summarize(run)
	run.Summary = &summary

	if err := l.runs.Save(ctx, run); err != nil {
		return fmt.Errorf("persist completed run: %w", err)
	}

	if l.metrics != nil {
		l.metrics.RunsCompleted.WithLabelValues(string(run.TaskType), string(run.Status)).Inc()
		if run.Status == domain.RunStatusSuccess {
			l.metrics.LastSuccessfulRun.WithLabelValues(string(run.TaskType)).Set(float64(now.Unix()))
		}
	}
	log.Info().
		Str("run_id", run.ID).
		Str("task", string(run.TaskType)).
		Str("status", string(run.Status)).
		Str("summary", summary).
		Msg("run completed")
	return nil
}

// Fail finalizes a run as failed after an unrecoverable abort, recording the
// error message in the summary and under the reserved detail key, then
// persists.
func (l *Logger) Fail(ctx context.Context, run *domain.Run, errMsg string) error {
	now := l.now()
	run.CompletedAt = &now
	run.Status = domain.RunStatusFailed
	run.Summary = &errMsg

	switch detail := run.Details.(type) {
	case *domain.ScannerDetail:
		detail.Error = errMsg
	case *domain.MonitorDetail:
		detail.Error = errMsg
	}

	if err := l.runs.Save(ctx, run); err != nil {
		return fmt.Errorf("persist failed run: %w", err)
	}

	if l.metrics != nil {
		l.metrics.RunsCompleted.WithLabelValues(string(run.TaskType), string(run.Status)).Inc()
	}
	log.Error().
		Str("run_id", run.ID).
		Str("task", string(run.TaskType)).
		Str("error", errMsg).
		Msg("run failed")
	return nil
}

// decideStatus applies the terminal-status precedence: any errors alongside
// successful checks means partial, errors with nothing checked means failed,
// everything else (including zero checks, zero errors) means success.
func decideStatus(errorsCount, symbolsChecked int) domain.RunStatus {
	switch {
	case errorsCount > 0 && symbolsChecked > 0:
		return domain.RunStatusPartial
	case errorsCount > 0:
		return domain.RunStatusFailed
	default:
		return domain.RunStatusSuccess
	}
}

// summarize renders the deterministic task-specific summary line.
func summarize(run *domain.Run) string {
	switch run.TaskType {
	case domain.TaskScanner:
		return fmt.Sprintf("Scanned %d ETFs, found %d signal(s), %d error(s)",
			run.SymbolsChecked, run.SignalsFound, run.ErrorsCount)
	case domain.TaskMonitor:
		return fmt.Sprintf("Checked %d position(s), %d action(s) needed, %d error(s)",
			run.SymbolsChecked, run.ActionsNeeded, run.ErrorsCount)
	default:
		return fmt.Sprintf("Completed with %d checked, %d error(s)",
			run.SymbolsChecked, run.ErrorsCount)
	}
}
