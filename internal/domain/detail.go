package domain

import (
	"encoding/json"
	"fmt"
)

// RunDetail is the task-specific structured payload of a run. It is stored as
// a single JSON document and decoded back by task type. The concrete variants
// keep the payload typed in memory while preserving the document shape on the
// storage boundary.
type RunDetail interface {
	taskType() TaskType
}

// ScannerCheck is one symbol's outcome during a scanner run.
type ScannerCheck struct {
	Symbol string `json:"symbol"`
	Signal string `json:"signal,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ScannerDetail is the detail payload of a scanner run.
type ScannerDetail struct {
	UniverseSize int            `json:"universe_size"`
	MarketDate   string         `json:"market_date,omitempty"`
	Checks       []ScannerCheck `json:"checks"`
	Error        string         `json:"error,omitempty"` // set only by an early abort
}

func (*ScannerDetail) taskType() TaskType { return TaskScanner }

// MonitorCheck is one position's outcome during a monitor run.
type MonitorCheck struct {
	Symbol string `json:"symbol"`
	Action string `json:"action,omitempty"`
	Error  string `json:"error,omitempty"`
}

// MonitorDetail is the detail payload of a monitor run.
type MonitorDetail struct {
	Connected bool           `json:"connected"`
	Checks    []MonitorCheck `json:"checks"`
	Error     string         `json:"error,omitempty"` // set only by an early abort
}

func (*MonitorDetail) taskType() TaskType { return TaskMonitor }

// EncodeDetail serializes a detail payload for storage. A nil detail encodes
// as an empty document.
func EncodeDetail(d RunDetail) ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode run detail: %w", err)
	}
	return data, nil
}

// DecodeDetail deserializes a stored detail document into the variant for the
// given task type.
func DecodeDetail(taskType TaskType, data []byte) (RunDetail, error) {
	if len(data) == 0 {
		data = []byte("{}")
	}

	switch taskType {
	case TaskScanner:
		var d ScannerDetail
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("decode scanner detail: %w", err)
		}
		return &d, nil
	case TaskMonitor:
		var d MonitorDetail
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("decode monitor detail: %w", err)
		}
		return &d, nil
	default:
		return nil, fmt.Errorf("decode run detail: unknown task type %q", taskType)
	}
}
