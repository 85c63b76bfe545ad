package handlers

import (
	"errors"
	"net/http"

	"github.com/dvloznov/lifeos/internal/api/middleware"
	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/store"
	"github.com/dvloznov/lifeos/internal/syncer"
)

// Pull handles POST /api/sync/pull?key=financial&confirm=true
// Without confirm=true nothing is replaced and the preview comes back with 409.
func (h *Handler) Pull(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	key, err := store.ParseKey(query.Get("key"))
	if err != nil {
		h.writeErr(w, r, "Invalid key", err)
		return
	}
	confirmed := query.Get("confirm") == "true"

	preview, err := h.svc.Pull(r.Context(), key, func(syncer.Preview) bool { return confirmed })
	if errors.Is(err, domain.ErrPullDeclined) {
		middleware.WriteJSON(w, http.StatusConflict, map[string]interface{}{
			"error":   "Pull not confirmed; repeat with confirm=true to overwrite the local record",
			"preview": preview,
		})
		return
	}
	if err != nil {
		h.writeErr(w, r, "Failed to pull record", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, preview)
}

// ExportBigQuery handles POST /api/export/bigquery
func (h *Handler) ExportBigQuery(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ExportLedger(r.Context())
	if err != nil {
		h.writeErr(w, r, "Failed to export ledger", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]int{"rows": n})
}

// ExportNotion handles POST /api/export/notion?dry_run=true
func (h *Handler) ExportNotion(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ExportNotes(r.Context(), r.URL.Query().Get("dry_run") == "true")
	if err != nil {
		h.writeErr(w, r, "Failed to export notes", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, res)
}
