package jobs

import (
	"context"
	"encoding/json"
	"time"
)

// TaskKind represents the type of work a task performs.
type TaskKind string

const (
	// TaskKindChat represents an assistant query.
	TaskKindChat TaskKind = "chat"
	// TaskKindPush represents uploading a record to remote storage.
	TaskKindPush TaskKind = "push"
)

// TaskStatus represents the current status of a task.
// Every task ends in exactly one of completed or failed; none stays pending forever.
type TaskStatus string

const (
	// TaskStatusPending indicates the task is waiting to be processed.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusRunning indicates the task is currently being processed.
	TaskStatusRunning TaskStatus = "running"
	// TaskStatusCompleted indicates the task completed successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusRetrying indicates the task failed and is being retried.
	TaskStatusRetrying TaskStatus = "retrying"
)

// Done reports whether s is a terminal status.
func (s TaskStatus) Done() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Task is one unit of asynchronous work and its observable state.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`

	Kind TaskKind `json:"kind"`

	// Payload is the kind-specific input, e.g. {"question": "..."} for chat.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Result is the kind-specific output once the task completed.
	Result json.RawMessage `json:"result,omitempty"`

	Status TaskStatus `json:"status"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the task failed.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Publisher defines the interface for publishing tasks to a queue.
type Publisher interface {
	// Publish enqueues a task. ID, status and creation time are filled in when empty.
	Publish(ctx context.Context, task *Task) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming tasks from a queue.
type Consumer interface {
	// Start begins consuming tasks from the queue.
	// The handler function is called for each task received.
	Start(ctx context.Context, handler TaskHandler) error

	// Stop stops consuming tasks and waits for in-flight tasks to complete.
	Stop(ctx context.Context) error
}

// TaskHandler processes a task and returns its result.
// It should return an error if the task failed and should be retried.
type TaskHandler func(ctx context.Context, task *Task) (json.RawMessage, error)

// TaskStore defines the interface for storing and retrieving task state.
type TaskStore interface {
	// SaveTask saves or updates a task's state.
	SaveTask(ctx context.Context, task *Task) error

	// GetTask retrieves a task by ID. Unknown ids yield an error wrapping domain.ErrNotFound.
	GetTask(ctx context.Context, id string) (*Task, error)

	// ListTasks retrieves tasks with optional filtering, oldest first.
	ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error)

	// UpdateTaskStatus updates the status of a task.
	UpdateTaskStatus(ctx context.Context, id string, status TaskStatus, errorMsg string) error
}

// TaskFilter defines filtering criteria for listing tasks.
type TaskFilter struct {
	Kind   TaskKind
	Status TaskStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
