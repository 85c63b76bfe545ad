package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/jobs"
)

// Store is an in-memory implementation of TaskStore.
// It stores tasks in memory and is safe for concurrent use.
// Data is lost on restart.
type Store struct {
	mu    sync.RWMutex
	tasks map[string]*jobs.Task
}

// NewStore creates a new in-memory task store.
func NewStore() *Store {
	return &Store{
		tasks: make(map[string]*jobs.Task),
	}
}

// copyTask detaches a task from the stored one, including its time pointers and payloads.
func copyTask(t *jobs.Task) *jobs.Task {
	c := *t
	if t.StartedAt != nil {
		started := *t.StartedAt
		c.StartedAt = &started
	}
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		c.CompletedAt = &completed
	}
	c.Payload = append([]byte(nil), t.Payload...)
	c.Result = append([]byte(nil), t.Result...)
	return &c
}

// SaveTask implements the TaskStore interface.
func (s *Store) SaveTask(ctx context.Context, task *jobs.Task) error {
	if task.ID == "" {
		return fmt.Errorf("SaveTask: %w", domain.Invalid("id", "task id is required"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[task.ID] = copyTask(task)
	return nil
}

// GetTask implements the TaskStore interface.
func (s *Store) GetTask(ctx context.Context, id string) (*jobs.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[id]
	if !exists {
		return nil, fmt.Errorf("GetTask: task %s: %w", id, domain.ErrNotFound)
	}
	return copyTask(task), nil
}

// ListTasks implements the TaskStore interface.
func (s *Store) ListTasks(ctx context.Context, filter jobs.TaskFilter) ([]*jobs.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*jobs.Task{}
	for _, task := range s.tasks {
		if filter.Kind != "" && task.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		result = append(result, copyTask(task))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.Task{}, nil
		}
		result = result[filter.Offset:]
	}

	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

// UpdateTaskStatus implements the TaskStore interface.
func (s *Store) UpdateTaskStatus(ctx context.Context, id string, status jobs.TaskStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[id]
	if !exists {
		return fmt.Errorf("UpdateTaskStatus: task %s: %w", id, domain.ErrNotFound)
	}

	task.Status = status
	if errorMsg != "" {
		task.Error = errorMsg
	}
	return nil
}

// Ensure Store implements TaskStore interface.
var _ jobs.TaskStore = (*Store)(nil)
