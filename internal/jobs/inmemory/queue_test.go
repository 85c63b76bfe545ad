package inmemory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/lifeos/internal/jobs"
)

func waitForStatus(t *testing.T, s *Store, id string, want jobs.TaskStatus) *jobs.Task {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		task, err := s.GetTask(context.Background(), id)
		if err == nil && task.Status == want {
			return task
		}
		time.Sleep(5 * time.Millisecond)
	}
	task, _ := s.GetTask(context.Background(), id)
	t.Fatalf("task %s did not reach %s, last state %+v", id, want, task)
	return nil
}

func newTestQueue(t *testing.T, opts Options, handler jobs.TaskHandler) (*Queue, *Store) {
	t.Helper()
	store := NewStore()
	q := NewQueue(opts, store, zerolog.New(io.Discard))
	if err := q.Start(context.Background(), handler); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = q.Close() })
	return q, store
}

func TestQueue_CompletesWithResult(t *testing.T) {
	q, store := newTestQueue(t, Options{Workers: 2}, func(ctx context.Context, task *jobs.Task) (json.RawMessage, error) {
		return json.RawMessage(`{"text":"done"}`), nil
	})

	task := &jobs.Task{Kind: jobs.TaskKindChat, Payload: json.RawMessage(`{"question":"hi"}`)}
	if err := q.Publish(context.Background(), task); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if task.ID == "" || task.Status != jobs.TaskStatusPending || task.CreatedAt.IsZero() {
		t.Errorf("published task = %+v", task)
	}

	got := waitForStatus(t, store, task.ID, jobs.TaskStatusCompleted)
	if string(got.Result) != `{"text":"done"}` || got.StartedAt == nil || got.CompletedAt == nil {
		t.Errorf("completed task = %+v", got)
	}
}

func TestQueue_FailsWithoutRetries(t *testing.T) {
	q, store := newTestQueue(t, Options{}, func(ctx context.Context, task *jobs.Task) (json.RawMessage, error) {
		return nil, errors.New("bucket unreachable")
	})

	task := &jobs.Task{Kind: jobs.TaskKindPush}
	if err := q.Publish(context.Background(), task); err != nil {
		t.Fatal(err)
	}
	got := waitForStatus(t, store, task.ID, jobs.TaskStatusFailed)
	if got.Error != "bucket unreachable" || got.RetryCount != 0 {
		t.Errorf("failed task = %+v", got)
	}
}

func TestQueue_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	q, store := newTestQueue(t, Options{MaxRetries: 2, Backoff: time.Millisecond}, func(ctx context.Context, task *jobs.Task) (json.RawMessage, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return nil, errors.New("flaky")
		}
		return json.RawMessage(`true`), nil
	})

	task := &jobs.Task{Kind: jobs.TaskKindPush}
	if err := q.Publish(context.Background(), task); err != nil {
		t.Fatal(err)
	}
	got := waitForStatus(t, store, task.ID, jobs.TaskStatusCompleted)
	if got.RetryCount != 2 || got.Error != "" {
		t.Errorf("task = %+v", got)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("handler calls = %d, want 3", n)
	}
}

func TestQueue_PublishAfterClose(t *testing.T) {
	q := NewQueue(Options{}, NewStore(), zerolog.New(io.Discard))
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}
	if err := q.Publish(context.Background(), &jobs.Task{Kind: jobs.TaskKindChat}); err == nil {
		t.Error("Publish() on a closed queue should fail")
	}
	if err := q.Start(context.Background(), nil); err == nil {
		t.Error("Start() on a closed queue should fail")
	}
}

func TestTaskStatus_Done(t *testing.T) {
	for status, want := range map[jobs.TaskStatus]bool{
		jobs.TaskStatusPending:   false,
		jobs.TaskStatusRunning:   false,
		jobs.TaskStatusRetrying:  false,
		jobs.TaskStatusCompleted: true,
		jobs.TaskStatusFailed:    true,
	} {
		if status.Done() != want {
			t.Errorf("%s.Done() = %v, want %v", status, status.Done(), want)
		}
	}
}

func TestQueue_StopWithFullBuffer(t *testing.T) {
	store := NewStore()
	q := NewQueue(Options{BufferSize: 1}, store, zerolog.New(io.Discard))

	first := &jobs.Task{Kind: jobs.TaskKindPush}
	if err := q.Publish(context.Background(), first); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	second := &jobs.Task{ID: "blocked", Kind: jobs.TaskKindPush}
	published := make(chan error, 1)
	go func() { published <- q.Publish(context.Background(), second) }()

	// Wait until the second task is saved, i.e. Publish is blocked on the full buffer.
	waitForStatus(t, store, "blocked", jobs.TaskStatusPending)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := q.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	select {
	case err := <-published:
		if err == nil {
			t.Error("blocked Publish() succeeded after Stop")
		}
	case <-time.After(time.Second):
		t.Fatal("Publish() still blocked after Stop")
	}

	for _, id := range []string{first.ID, "blocked"} {
		got := waitForStatus(t, store, id, jobs.TaskStatusFailed)
		if got.Error == "" {
			t.Errorf("task %s failed without a reason", id)
		}
	}
}
