package domain

import "time"

// TaskType identifies which scheduled task produced a run.
type TaskType string

const (
	TaskScanner TaskType = "scanner"
	TaskMonitor TaskType = "monitor"
)

// RunStatus is the lifecycle state of a run. A run is "running" until it is
// finalized exactly once; the other three states are terminal.
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusPartial RunStatus = "partial"
	RunStatusFailed  RunStatus = "failed"
)

// Run is one execution instance of a scheduled task, with an audit trail of
// what was checked and decided. Corresponds to the runs table.
type Run struct {
	ID          string
	TaskType    TaskType
	StartedAt   time.Time
	CompletedAt *time.Time // set iff Status != running

	// Counters are monotonically non-decreasing while the run is open.
	SymbolsChecked int
	SignalsFound   int
	ActionsNeeded  int
	ErrorsCount    int

	Status  RunStatus
	Summary *string
	Details RunDetail
}

// Terminal reports whether the run has been finalized.
func (r *Run) Terminal() bool {
	return r.Status != RunStatusRunning
}
