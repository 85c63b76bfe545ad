package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/lifeos/internal/jobs"
)

// Options configures a Queue.
type Options struct {
	// BufferSize determines how many tasks can be queued before Publish blocks.
	BufferSize int
	// Workers is the number of tasks processed concurrently.
	Workers int
	// MaxRetries applies to tasks published without their own limit.
	MaxRetries int
	// Backoff is multiplied by the retry count before a failed task is re-enqueued.
	Backoff time.Duration
}

// Queue is an in-memory implementation of task publisher and consumer.
// It uses Go channels for task distribution and is safe for concurrent use.
type Queue struct {
	opts      Options
	taskChan  chan *jobs.Task
	closeChan chan struct{}
	wg        sync.WaitGroup
	inflight  sync.WaitGroup // Publish calls past the closed check
	mu        sync.RWMutex
	store     jobs.TaskStore
	log       zerolog.Logger
	closed    bool
}

// NewQueue creates a new in-memory task queue.
func NewQueue(opts Options, store jobs.TaskStore, log zerolog.Logger) *Queue {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 64
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	return &Queue{
		opts:      opts,
		taskChan:  make(chan *jobs.Task, opts.BufferSize),
		closeChan: make(chan struct{}),
		store:     store,
		log:       log,
	}
}

// Publish implements the Publisher interface.
// The queue keeps its own copy; the caller's task only receives the generated fields.
// The lock covers the closed check only, so a full buffer never blocks Stop.
func (q *Queue) Publish(ctx context.Context, task *jobs.Task) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("Publish: queue is closed")
	}
	q.inflight.Add(1)
	q.mu.RUnlock()
	defer q.inflight.Done()

	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = jobs.TaskStatusPending
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	if task.MaxRetries == 0 {
		task.MaxRetries = q.opts.MaxRetries
	}

	if q.store != nil {
		if err := q.store.SaveTask(ctx, task); err != nil {
			return fmt.Errorf("Publish: saving task: %w", err)
		}
	}

	owned := copyTask(task)
	select {
	case q.taskChan <- owned:
		return nil
	case <-ctx.Done():
		q.abandon(owned, ctx.Err().Error())
		return ctx.Err()
	case <-q.closeChan:
		q.abandon(owned, "queue is closed")
		return fmt.Errorf("Publish: queue is closed")
	}
}

// abandon records a task that will never run as failed.
func (q *Queue) abandon(task *jobs.Task, reason string) {
	task.Status = jobs.TaskStatusFailed
	task.Error = "not enqueued: " + reason
	q.save(context.Background(), task)
}

// Start implements the Consumer interface.
// The handler is called concurrently for each task, up to Options.Workers workers.
func (q *Queue) Start(ctx context.Context, handler jobs.TaskHandler) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return fmt.Errorf("Start: queue is closed")
	}
	q.mu.RUnlock()

	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	return nil
}

func (q *Queue) worker(ctx context.Context, handler jobs.TaskHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeChan:
			return
		case task := <-q.taskChan:
			if task == nil {
				return
			}
			q.processTask(ctx, task, handler)
		}
	}
}

// processTask executes a single task with retry logic.
func (q *Queue) processTask(ctx context.Context, task *jobs.Task, handler jobs.TaskHandler) {
	logger := q.log.With().Str("task_id", task.ID).Str("kind", string(task.Kind)).Logger()

	task.Status = jobs.TaskStatusRunning
	now := time.Now()
	task.StartedAt = &now
	q.save(ctx, task)

	result, err := handler(ctx, task)

	completedAt := time.Now()
	task.CompletedAt = &completedAt

	if err != nil {
		task.Error = err.Error()

		if task.RetryCount < task.MaxRetries {
			task.RetryCount++
			task.Status = jobs.TaskStatusRetrying
			q.save(ctx, task)
			logger.Warn().Err(err).Int("retry", task.RetryCount).Msg("Task failed, retrying")

			retry := copyTask(task)
			backoff := time.Duration(retry.RetryCount) * q.opts.Backoff
			time.AfterFunc(backoff, func() {
				retry.Status = jobs.TaskStatusPending
				retry.StartedAt = nil
				retry.CompletedAt = nil
				if err := q.Publish(ctx, retry); err != nil {
					retry.Status = jobs.TaskStatusFailed
					retry.Error = fmt.Sprintf("re-enqueue: %v", err)
					q.save(context.Background(), retry)
				}
			})
			return
		}

		task.Status = jobs.TaskStatusFailed
		logger.Error().Err(err).Msg("Task failed")
	} else {
		task.Status = jobs.TaskStatusCompleted
		task.Error = ""
		task.Result = result
		logger.Debug().Msg("Task completed")
	}

	q.save(ctx, task)
}

func (q *Queue) save(ctx context.Context, task *jobs.Task) {
	if q.store == nil {
		return
	}
	if err := q.store.SaveTask(ctx, task); err != nil {
		q.log.Error().Err(err).Str("task_id", task.ID).Msg("Failed to save task state")
	}
}

// Stop implements the Consumer interface.
// It stops the queue and waits for all in-flight tasks to complete.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.closeChan)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		q.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	// Tasks still buffered were accepted but will never be picked up.
	// No Publish can add more: all of them have returned.
	for {
		select {
		case task := <-q.taskChan:
			q.abandon(task, "queue stopped")
		default:
			return nil
		}
	}
}

// Close implements the Publisher interface.
func (q *Queue) Close() error {
	return q.Stop(context.Background())
}

// Ensure Queue implements both Publisher and Consumer interfaces.
var _ jobs.Publisher = (*Queue)(nil)
var _ jobs.Consumer = (*Queue)(nil)
