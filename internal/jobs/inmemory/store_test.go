package inmemory

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/jobs"
)

func TestStore_CopyOnReadAndWrite(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	task := &jobs.Task{ID: "t1", Kind: jobs.TaskKindChat, Status: jobs.TaskStatusPending, Payload: json.RawMessage(`{"q":"hi"}`)}
	if err := s.SaveTask(ctx, task); err != nil {
		t.Fatalf("SaveTask() error = %v", err)
	}
	task.Status = jobs.TaskStatusFailed
	task.Payload[2] = 'X'

	got, err := s.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.Status != jobs.TaskStatusPending || string(got.Payload) != `{"q":"hi"}` {
		t.Errorf("stored task changed through caller pointer: %+v", got)
	}

	got.Status = jobs.TaskStatusCompleted
	again, _ := s.GetTask(ctx, "t1")
	if again.Status != jobs.TaskStatusPending {
		t.Error("returned task aliases stored task")
	}
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if err := s.SaveTask(ctx, &jobs.Task{}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("SaveTask(no id) error = %v", err)
	}
	if _, err := s.GetTask(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetTask(missing) error = %v", err)
	}
	if err := s.UpdateTaskStatus(ctx, "missing", jobs.TaskStatusFailed, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UpdateTaskStatus(missing) error = %v", err)
	}
}

func TestStore_ListTasks(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, tc := range []struct {
		id     string
		kind   jobs.TaskKind
		status jobs.TaskStatus
	}{
		{"a", jobs.TaskKindChat, jobs.TaskStatusCompleted},
		{"b", jobs.TaskKindPush, jobs.TaskStatusFailed},
		{"c", jobs.TaskKindChat, jobs.TaskStatusPending},
		{"d", jobs.TaskKindChat, jobs.TaskStatusCompleted},
	} {
		task := &jobs.Task{ID: tc.id, Kind: tc.kind, Status: tc.status, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := s.SaveTask(ctx, task); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter jobs.TaskFilter
		want   []string
	}{
		{name: "all oldest first", filter: jobs.TaskFilter{}, want: []string{"a", "b", "c", "d"}},
		{name: "by kind", filter: jobs.TaskFilter{Kind: jobs.TaskKindChat}, want: []string{"a", "c", "d"}},
		{name: "by status", filter: jobs.TaskFilter{Status: jobs.TaskStatusCompleted}, want: []string{"a", "d"}},
		{name: "offset and limit", filter: jobs.TaskFilter{Offset: 1, Limit: 2}, want: []string{"b", "c"}},
		{name: "offset past end", filter: jobs.TaskFilter{Offset: 10}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListTasks(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListTasks() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ListTasks() returned %d tasks, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("ListTasks()[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}
