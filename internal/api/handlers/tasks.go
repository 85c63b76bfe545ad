package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dvloznov/lifeos/internal/api/middleware"
	"github.com/dvloznov/lifeos/internal/app"
	"github.com/dvloznov/lifeos/internal/jobs"
	"github.com/dvloznov/lifeos/internal/store"
)

// RunCommand handles POST /api/command
func (h *Handler) RunCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Line string `json:"line"`
	}
	if !decode(w, r, &req) {
		return
	}

	out, err := h.svc.Dispatch(r.Context(), req.Line)
	if err != nil {
		h.writeErr(w, r, "Failed to run command", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, out)
}

// EnqueueChat handles POST /api/chat
func (h *Handler) EnqueueChat(w http.ResponseWriter, r *http.Request) {
	var req app.ChatPayload
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "question is required")
		return
	}
	h.enqueue(w, r, jobs.TaskKindChat, req)
}

// EnqueuePush handles POST /api/sync/push
// An empty body or key pushes every synced record.
func (h *Handler) EnqueuePush(w http.ResponseWriter, r *http.Request) {
	var req app.PushPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Key != "" {
		key, err := store.ParseKey(req.Key)
		if err != nil {
			h.writeErr(w, r, "Invalid key", err)
			return
		}
		req.Key = key.Short()
	}
	h.enqueue(w, r, jobs.TaskKindPush, req)
}

func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request, kind jobs.TaskKind, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.writeErr(w, r, "Failed to encode task payload", err)
		return
	}

	task := &jobs.Task{Kind: kind, Payload: data}
	if err := h.publisher.Publish(r.Context(), task); err != nil {
		h.log.Error().Err(err).Str("kind", string(kind)).Msg("Failed to enqueue task")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue task")
		return
	}

	h.log.Info().Str("task_id", task.ID).Str("kind", string(kind)).Msg("Task enqueued")
	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"task_id": task.ID,
		"kind":    string(task.Kind),
		"status":  string(task.Status),
	})
}

// GetTask handles GET /api/tasks/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, r, "Failed to get task", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, task)
}

// ListTasks handles GET /api/tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.TaskFilter{
		Kind:   jobs.TaskKind(query.Get("kind")),
		Status: jobs.TaskStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	tasks, err := h.tasks.ListTasks(r.Context(), filter)
	if err != nil {
		h.writeErr(w, r, "Failed to list tasks", err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"count": len(tasks),
	})
}
