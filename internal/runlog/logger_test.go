package runlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etf-turtle/internal/domain"
	"etf-turtle/internal/storage"
	"etf-turtle/internal/storage/memory"
)

var fixedTime = time.Date(2025, 3, 3, 22, 30, 0, 0, time.UTC)

func newTestLogger(t *testing.T) (*Logger, *memory.RunStore) {
	t.Helper()
	store := memory.NewRunStore()
	logger := New(store).WithClock(func() time.Time { return fixedTime })
	return logger, store
}

func TestStartScanner_InitialState(t *testing.T) {
	logger, _ := newTestLogger(t)

	run := logger.StartScanner(8, "2025-03-03")

	require.NotEmpty(t, run.ID)
	assert.Equal(t, domain.TaskScanner, run.TaskType)
	assert.Equal(t, domain.RunStatusRunning, run.Status)
	assert.Equal(t, fixedTime, run.StartedAt)
	assert.Nil(t, run.CompletedAt)
	assert.Zero(t, run.SymbolsChecked)
	assert.Zero(t, run.SignalsFound)
	assert.Zero(t, run.ActionsNeeded)
	assert.Zero(t, run.ErrorsCount)

	detail, ok := run.Details.(*domain.ScannerDetail)
	require.True(t, ok)
	assert.Equal(t, 8, detail.UniverseSize)
	assert.Equal(t, "2025-03-03", detail.MarketDate)
	assert.Empty(t, detail.Checks)
}

func TestStartMonitor_InitialState(t *testing.T) {
	logger, _ := newTestLogger(t)

	run := logger.StartMonitor(true)

	assert.Equal(t, domain.TaskMonitor, run.TaskType)
	detail, ok := run.Details.(*domain.MonitorDetail)
	require.True(t, ok)
	assert.True(t, detail.Connected)
}

func TestRecordScannerCheck_CounterRules(t *testing.T) {
	logger, _ := newTestLogger(t)
	run := logger.StartScanner(3, "2025-03-03")

	logger.RecordScannerCheck(run, domain.ScannerCheck{Symbol: "SPY"})
	logger.RecordScannerCheck(run, domain.ScannerCheck{Symbol: "QQQ", Signal: "S1 long breakout"})
	logger.RecordScannerCheck(run, domain.ScannerCheck{Symbol: "USO", Error: "no data"})

	assert.Equal(t, 2, run.SymbolsChecked)
	assert.Equal(t, 1, run.SignalsFound)
	assert.Equal(t, 1, run.ErrorsCount)

	detail := run.Details.(*domain.ScannerDetail)
	assert.Len(t, detail.Checks, 3)
}

func TestRecordMonitorCheck_CounterRules(t *testing.T) {
	logger, _ := newTestLogger(t)
	run := logger.StartMonitor(true)

	logger.RecordMonitorCheck(run, domain.MonitorCheck{Symbol: "SPY"})
	logger.RecordMonitorCheck(run, domain.MonitorCheck{Symbol: "GLD", Action: "refresh indicators"})
	logger.RecordMonitorCheck(run, domain.MonitorCheck{Symbol: "TLT", Error: "query timeout"})

	assert.Equal(t, 2, run.SymbolsChecked)
	assert.Equal(t, 1, run.ActionsNeeded)
	assert.Equal(t, 1, run.ErrorsCount)
}

func TestComplete_StatusBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		checked int
		errors  int
		want    domain.RunStatus
	}{
		{"no errors, some checks", 5, 0, domain.RunStatusSuccess},
		{"no errors, no checks", 0, 0, domain.RunStatusSuccess},
		{"errors alongside checks", 3, 2, domain.RunStatusPartial},
		{"errors only", 0, 4, domain.RunStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := newTestLogger(t)
			run := logger.StartScanner(tt.checked+tt.errors, "2025-03-03")
			for i := 0; i < tt.checked; i++ {
				logger.RecordScannerCheck(run, domain.ScannerCheck{Symbol: "SPY"})
			}
			for i := 0; i < tt.errors; i++ {
				logger.RecordScannerCheck(run, domain.ScannerCheck{Symbol: "USO", Error: "boom"})
			}

			require.NoError(t, logger.Complete(context.Background(), run))
			assert.Equal(t, tt.want, run.Status)
			require.NotNil(t, run.CompletedAt)
			assert.Equal(t, fixedTime, *run.CompletedAt)
		})
	}
}

func TestComplete_ScannerEndToEnd(t *testing.T) {
	logger, store := newTestLogger(t)
	ctx := context.Background()

	run := logger.StartScanner(3, "2025-03-03")
	logger.RecordScannerCheck(run, domain.ScannerCheck{Symbol: "SPY"})
	logger.RecordScannerCheck(run, domain.ScannerCheck{Symbol: "QQQ", Signal: "S2 short breakout"})
	logger.RecordScannerCheck(run, domain.ScannerCheck{Symbol: "USO", Error: "no indicator snapshot"})

	require.NoError(t, logger.Complete(ctx, run))

	assert.Equal(t, 2, run.SymbolsChecked)
	assert.Equal(t, 1, run.SignalsFound)
	assert.Equal(t, 1, run.ErrorsCount)
	assert.Equal(t, domain.RunStatusPartial, run.Status)
	require.NotNil(t, run.Summary)
	assert.Contains(t, *run.Summary, "Scanned 2 ETFs, found 1 signal(s), 1 error(s)")

	// The terminal save reached the store
	persisted, err := store.ByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusPartial, persisted.Status)
}

func TestComplete_MonitorSummary(t *testing.T) {
	logger, _ := newTestLogger(t)
	run := logger.StartMonitor(true)

	logger.RecordMonitorCheck(run, domain.MonitorCheck{Symbol: "SPY"})
	logger.RecordMonitorCheck(run, domain.MonitorCheck{Symbol: "GLD", Action: "refresh indicators"})

	require.NoError(t, logger.Complete(context.Background(), run))
	require.NotNil(t, run.Summary)
	assert.Equal(t, "Checked 2 position(s), 1 action(s) needed, 0 error(s)", *run.Summary)
}

func TestFail_RecordsMessageAndPersists(t *testing.T) {
	logger, store := newTestLogger(t)
	ctx := context.Background()

	run := logger.StartScanner(0, "")
	require.NoError(t, logger.Fail(ctx, run, "list universe: connection refused"))

	assert.Equal(t, domain.RunStatusFailed, run.Status)
	require.NotNil(t, run.CompletedAt)
	require.NotNil(t, run.Summary)
	assert.Equal(t, "list universe: connection refused", *run.Summary)

	detail := run.Details.(*domain.ScannerDetail)
	assert.Equal(t, "list universe: connection refused", detail.Error)

	persisted, err := store.ByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusFailed, persisted.Status)
}

func TestRecordCheck_DroppedAfterTerminal(t *testing.T) {
	logger, _ := newTestLogger(t)
	run := logger.StartScanner(1, "2025-03-03")

	require.NoError(t, logger.Complete(context.Background(), run))
	logger.RecordScannerCheck(run, domain.ScannerCheck{Symbol: "SPY"})

	assert.Zero(t, run.SymbolsChecked, "checks after finalization must not count")
}

// failingRunStore always fails Save; the other lookups never match.
type failingRunStore struct{}

func (failingRunStore) Save(context.Context, *domain.Run) error { return errors.New("disk full") }
func (failingRunStore) ByID(context.Context, string) (*domain.Run, error) {
	return nil, storage.ErrNotFound
}
func (failingRunStore) Recent(context.Context, *domain.TaskType, int) ([]*domain.Run, error) {
	return nil, nil
}
func (failingRunStore) ByDate(context.Context, time.Time, *domain.TaskType) ([]*domain.Run, error) {
	return nil, nil
}

func TestComplete_PersistenceFailureSurfaces(t *testing.T) {
	logger := New(failingRunStore{})
	run := logger.StartScanner(1, "2025-03-03")

	err := logger.Complete(context.Background(), run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestFail_PersistenceFailureSurfaces(t *testing.T) {
	logger := New(failingRunStore{})
	run := logger.StartMonitor(false)

	err := logger.Fail(context.Background(), run, "database unreachable")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
