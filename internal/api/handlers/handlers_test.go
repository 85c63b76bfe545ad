package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/lifeos/internal/app"
	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/gcs"
	"github.com/dvloznov/lifeos/internal/jobs"
	"github.com/dvloznov/lifeos/internal/jobs/inmemory"
	"github.com/dvloznov/lifeos/internal/ledger"
	"github.com/dvloznov/lifeos/internal/store"
)

type testServer struct {
	app   *app.App
	tasks *inmemory.Store
	http  http.Handler
}

func newTestServer(t *testing.T, blobs gcs.BlobStore) *testServer {
	t.Helper()
	log := zerolog.New(io.Discard)

	eng := ledger.NewEngine(time.UTC)
	eng.Today = func() civil.Date { return civil.Date{Year: 2025, Month: 3, Day: 14} }

	a, _ := app.New(app.Deps{
		Store:          store.New(store.NewMemoryKV(nil), log),
		Ledger:         eng,
		Log:            log,
		Blobs:          blobs,
		NetworkTimeout: time.Second,
	})

	taskStore := inmemory.NewStore()
	queue := inmemory.NewQueue(inmemory.Options{Workers: 1}, taskStore, log)
	ctx, cancel := context.WithCancel(context.Background())
	if err := queue.Start(ctx, a.HandleTask); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		cancel()
		_ = queue.Stop(context.Background())
	})

	return &testServer{
		app:   a,
		tasks: taskStore,
		http:  NewRouter(New(a, queue, taskStore, log), log),
	}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.http.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestTransactions(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{
			name:   "record expense",
			method: http.MethodPost,
			path:   "/api/transactions",
			body:   ledger.Form{Type: ledger.Expense, Amount: "25", Description: "Groceries"},
			want:   http.StatusCreated,
		},
		{
			name:   "invalid amount",
			method: http.MethodPost,
			path:   "/api/transactions",
			body:   ledger.Form{Type: ledger.Expense, Amount: "-5", Description: "Oops"},
			want:   http.StatusBadRequest,
		},
		{
			name:   "malformed body",
			method: http.MethodPost,
			path:   "/api/transactions",
			body:   "not an object",
			want:   http.StatusBadRequest,
		},
		{
			name:   "edit unknown",
			method: http.MethodPut,
			path:   "/api/transactions/missing",
			body:   ledger.Form{Type: ledger.Income, Amount: "5", Description: "x"},
			want:   http.StatusNotFound,
		},
		{
			name:   "delete unknown",
			method: http.MethodDelete,
			path:   "/api/transactions/missing",
			want:   http.StatusNotFound,
		},
		{
			name:   "reconcile without banks",
			method: http.MethodPost,
			path:   "/api/reconcile",
			body:   map[string]string{},
			want:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	var tx domain.Transaction
	rec := s.do(t, http.MethodPost, "/api/transactions", ledger.Form{Type: ledger.Income, Amount: "100", Description: "Bonus"})
	decodeBody(t, rec, &tx)

	rec = s.do(t, http.MethodDelete, "/api/transactions/"+tx.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if got := len(s.app.State().Financial.Transactions); got != 1 {
		t.Errorf("got %d transactions, want 1", got)
	}
}

func TestHabitFlow(t *testing.T) {
	s := newTestServer(t, nil)

	var habit domain.Habit
	rec := s.do(t, http.MethodPost, "/api/habits", map[string]string{"name": "Stretch"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	decodeBody(t, rec, &habit)

	rec = s.do(t, http.MethodPost, "/api/habits/"+habit.ID+"/toggle", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d", rec.Code)
	}
	var toggled struct {
		Habit     domain.Habit `json:"habit"`
		Completed bool         `json:"completed"`
	}
	decodeBody(t, rec, &toggled)
	if !toggled.Completed || toggled.Habit.Streak != 1 {
		t.Errorf("unexpected toggle result: %+v", toggled)
	}

	rec = s.do(t, http.MethodPost, "/api/habits/"+habit.ID+"/adjust", map[string]int{"delta": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("adjust status = %d", rec.Code)
	}

	rec = s.do(t, http.MethodDelete, "/api/habits/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete unknown status = %d", rec.Code)
	}
}

func TestBooksAndNotes(t *testing.T) {
	s := newTestServer(t, nil)

	var book domain.Book
	rec := s.do(t, http.MethodPost, "/api/books", map[string]string{"title": "Atomic Habits", "author": "James Clear"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	decodeBody(t, rec, &book)

	var note domain.NeuralNote
	rec = s.do(t, http.MethodPost, "/api/books/"+book.ID+"/notes", domain.NeuralNote{Concept: "Identity"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("note status = %d", rec.Code)
	}
	decodeBody(t, rec, &note)

	rec = s.do(t, http.MethodPut, "/api/books/"+book.ID+"/notes/"+note.ID, domain.NeuralNote{Concept: "Identity", Action: "Vote"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	rec = s.do(t, http.MethodDelete, "/api/books/"+book.ID+"/notes/"+note.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = s.do(t, http.MethodPost, "/api/books/unknown/notes", domain.NeuralNote{Concept: "x"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown book status = %d", rec.Code)
	}

	rec = s.do(t, http.MethodDelete, "/api/books/"+book.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete book status = %d", rec.Code)
	}
	rec = s.do(t, http.MethodDelete, "/api/books/"+book.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", rec.Code)
	}
}

func waitForTask(t *testing.T, s *testServer, id string) *jobs.Task {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		task, err := s.tasks.GetTask(context.Background(), id)
		if err == nil && task.Status.Done() {
			return task
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("task %s did not finish", id)
	return nil
}

func TestChat_IsQueued(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/chat", map[string]string{"question": "What should I focus on?"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}
	var queued map[string]string
	decodeBody(t, rec, &queued)

	task := waitForTask(t, s, queued["task_id"])
	if task.Status != jobs.TaskStatusCompleted {
		t.Fatalf("task status = %s (%s)", task.Status, task.Error)
	}

	rec = s.do(t, http.MethodGet, "/api/tasks/"+task.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get task status = %d", rec.Code)
	}
	var got jobs.Task
	decodeBody(t, rec, &got)
	var reply struct {
		Offline bool `json:"offline"`
	}
	if err := json.Unmarshal(got.Result, &reply); err != nil || !reply.Offline {
		t.Errorf("expected offline reply without an assistant, got %s", got.Result)
	}

	rec = s.do(t, http.MethodPost, "/api/chat", map[string]string{"question": " "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty question status = %d", rec.Code)
	}
	rec = s.do(t, http.MethodGet, "/api/tasks/unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown task status = %d", rec.Code)
	}
}

func TestSync(t *testing.T) {
	s := newTestServer(t, gcs.NewMemoryStore())

	rec := s.do(t, http.MethodPost, "/api/sync/pull?key=financial", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("pull before push status = %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/api/sync/push", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("push status = %d", rec.Code)
	}
	var queued map[string]string
	decodeBody(t, rec, &queued)
	if task := waitForTask(t, s, queued["task_id"]); task.Status != jobs.TaskStatusCompleted {
		t.Fatalf("push task status = %s (%s)", task.Status, task.Error)
	}

	rec = s.do(t, http.MethodPost, "/api/sync/pull?key=financial", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("unconfirmed pull status = %d", rec.Code)
	}
	rec = s.do(t, http.MethodPost, "/api/sync/pull?key=financial&confirm=true", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("confirmed pull status = %d (%s)", rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodPost, "/api/sync/pull?key=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad key status = %d", rec.Code)
	}
	rec = s.do(t, http.MethodPost, "/api/sync/push", map[string]string{"key": "bogus"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad push key status = %d", rec.Code)
	}
}

func TestExports_NotConfigured(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/api/export/bigquery", "/api/export/notion"} {
		rec := s.do(t, http.MethodPost, path, nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}

func TestRunCommand(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/command", map[string]string{"line": "open my journal"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var out struct {
		Kind    string `json:"kind"`
		Section string `json:"section"`
	}
	decodeBody(t, rec, &out)
	if out.Kind != "navigate" || out.Section != "journal" {
		t.Errorf("unexpected outcome: %+v", out)
	}

	rec = s.do(t, http.MethodPost, "/api/command", map[string]string{"line": ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty line status = %d", rec.Code)
	}
}
