// Package handlers exposes the application state over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/lifeos/internal/api/middleware"
	"github.com/dvloznov/lifeos/internal/app"
	"github.com/dvloznov/lifeos/internal/dispatch"
	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/jobs"
	"github.com/dvloznov/lifeos/internal/ledger"
	"github.com/dvloznov/lifeos/internal/metrics"
	"github.com/dvloznov/lifeos/internal/notionsync"
	"github.com/dvloznov/lifeos/internal/store"
	"github.com/dvloznov/lifeos/internal/syncer"
)

// Service is the application state the handlers operate on. *app.App implements it.
type Service interface {
	State() app.State
	Summary() metrics.Summary

	RecordTransaction(ctx context.Context, form ledger.Form) (domain.Transaction, error)
	EditTransaction(ctx context.Context, id string, form ledger.Form) (domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) (domain.Transaction, error)
	Reconcile(ctx context.Context, b ledger.Balances) (domain.FinancialRecord, error)
	AddAsset(ctx context.Context, a domain.Asset) (domain.Asset, error)
	DeleteAsset(ctx context.Context, id string) error
	AddBusiness(ctx context.Context, b domain.Business) (domain.Business, error)
	DeleteBusiness(ctx context.Context, id string) error
	AddLoan(ctx context.Context, l domain.Loan) (domain.Loan, error)
	DeleteLoan(ctx context.Context, id string) error

	AddHabit(ctx context.Context, name, category, reminder string) (domain.Habit, error)
	ToggleHabit(ctx context.Context, id string) (domain.Habit, bool, error)
	AdjustStreak(ctx context.Context, id string, delta int) (domain.Habit, error)
	DeleteHabit(ctx context.Context, id string) error

	AddBook(ctx context.Context, title, author string) (domain.Book, error)
	SetBookStatus(ctx context.Context, id, status string) (domain.Book, error)
	DeleteBook(ctx context.Context, id string) error
	AddNote(ctx context.Context, bookID string, note domain.NeuralNote) (domain.NeuralNote, error)
	UpdateNote(ctx context.Context, bookID, noteID string, note domain.NeuralNote) (domain.NeuralNote, error)
	DeleteNote(ctx context.Context, bookID, noteID string) error
	AddJournalEntry(ctx context.Context, content, mood, date string) (domain.JournalEntry, error)
	UpdateProfile(ctx context.Context, u app.ProfileUpdate) (domain.UserProfile, error)

	Dispatch(ctx context.Context, line string) (dispatch.Outcome, error)
	Pull(ctx context.Context, key store.Key, confirm syncer.ConfirmFunc) (syncer.Preview, error)
	ExportLedger(ctx context.Context) (int, error)
	ExportNotes(ctx context.Context, dryRun bool) (notionsync.Result, error)
}

// Handler serves every /api route.
type Handler struct {
	svc       Service
	publisher jobs.Publisher
	tasks     jobs.TaskStore
	log       zerolog.Logger
}

// New creates a Handler. Chat and push requests are queued on publisher and observed through tasks.
func New(svc Service, publisher jobs.Publisher, tasks jobs.TaskStore, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, publisher: publisher, tasks: tasks, log: log}
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPullDeclined):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCorruptData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, app.ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeErr logs err and writes it with its mapped status. Internal errors are not echoed.
func (h *Handler) writeErr(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
		middleware.WriteError(w, status, msg)
		return
	}
	h.log.Warn().Err(err).Str("path", r.URL.Path).Int("status", status).Msg(msg)
	middleware.WriteError(w, status, err.Error())
}

// decode reads a JSON body into v, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// GetState handles GET /api/state
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.svc.State())
}

// GetMetrics handles GET /api/metrics
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.svc.Summary())
}
