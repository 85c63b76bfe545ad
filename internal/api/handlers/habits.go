package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dvloznov/lifeos/internal/api/middleware"
	"github.com/dvloznov/lifeos/internal/app"
)

// ListHabits handles GET /api/habits
func (h *Handler) ListHabits(w http.ResponseWriter, r *http.Request) {
	habits := h.svc.State().Habits
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"habits": habits,
		"count":  len(habits),
	})
}

// CreateHabit handles POST /api/habits
func (h *Handler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name"`
		Category     string `json:"category"`
		ReminderTime string `json:"reminderTime"`
	}
	if !decode(w, r, &req) {
		return
	}

	habit, err := h.svc.AddHabit(r.Context(), req.Name, req.Category, req.ReminderTime)
	if err != nil {
		h.writeErr(w, r, "Failed to add habit", err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, habit)
}

// ToggleHabit handles POST /api/habits/{id}/toggle
func (h *Handler) ToggleHabit(w http.ResponseWriter, r *http.Request) {
	habit, completed, err := h.svc.ToggleHabit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, r, "Failed to toggle habit", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"habit":     habit,
		"completed": completed,
	})
}

// AdjustHabit handles POST /api/habits/{id}/adjust
func (h *Handler) AdjustHabit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if !decode(w, r, &req) {
		return
	}

	habit, err := h.svc.AdjustStreak(r.Context(), chi.URLParam(r, "id"), req.Delta)
	if err != nil {
		h.writeErr(w, r, "Failed to adjust streak", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, habit)
}

// DeleteHabit handles DELETE /api/habits/{id}
func (h *Handler) DeleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteHabit(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeErr(w, r, "Failed to delete habit", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateProfile handles PUT /api/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var u app.ProfileUpdate
	if !decode(w, r, &u) {
		return
	}

	p, err := h.svc.UpdateProfile(r.Context(), u)
	if err != nil {
		h.writeErr(w, r, "Failed to update profile", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, p)
}
