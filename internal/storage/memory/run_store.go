package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"etf-turtle/internal/domain"
	"etf-turtle/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore. Detail
// payloads stay in their structured form; nothing is serialized.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Run // keyed by run id
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{data: make(map[string]*domain.Run)}
}

var _ storage.RunStore = (*RunStore)(nil)

// Save upserts a run by ID. On replace, task type and start time keep their
// stored values, mirroring the SQL conflict-update clause.
func (s *RunStore) Save(_ context.Context, r *domain.Run) error {
	if r == nil || r.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *r
	if prev, exists := s.data[r.ID]; exists {
		stored.TaskType = prev.TaskType
		stored.StartedAt = prev.StartedAt
	}
	s.data[r.ID] = &stored
	return nil
}

// ByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) ByID(_ context.Context, id string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	out := *r
	return &out, nil
}

// Recent retrieves up to limit runs, newest-first by start time.
func (s *RunStore) Recent(_ context.Context, taskType *domain.TaskType, limit int) ([]*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Run
	for _, r := range s.data {
		if taskType != nil && r.TaskType != *taskType {
			continue
		}
		out := *r
		result = append(result, &out)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// ByDate retrieves all runs started on the given calendar date, newest-first.
func (s *RunStore) ByDate(_ context.Context, day time.Time, taskType *domain.TaskType) ([]*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := day.Format("2006-01-02")

	var result []*domain.Run
	for _, r := range s.data {
		if r.StartedAt.Format("2006-01-02") != want {
			continue
		}
		if taskType != nil && r.TaskType != *taskType {
			continue
		}
		out := *r
		result = append(result, &out)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	return result, nil
}
