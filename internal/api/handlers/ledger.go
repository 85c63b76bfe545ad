package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dvloznov/lifeos/internal/api/middleware"
	"github.com/dvloznov/lifeos/internal/domain"
	"github.com/dvloznov/lifeos/internal/ledger"
)

// CreateTransaction handles POST /api/transactions
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var form ledger.Form
	if !decode(w, r, &form) {
		return
	}

	tx, err := h.svc.RecordTransaction(r.Context(), form)
	if err != nil {
		h.writeErr(w, r, "Failed to record transaction", err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// UpdateTransaction handles PUT /api/transactions/{id}
func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var form ledger.Form
	if !decode(w, r, &form) {
		return
	}

	tx, err := h.svc.EditTransaction(r.Context(), chi.URLParam(r, "id"), form)
	if err != nil {
		h.writeErr(w, r, "Failed to edit transaction", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.DeleteTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, r, "Failed to delete transaction", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// Reconcile handles POST /api/reconcile
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var b ledger.Balances
	if !decode(w, r, &b) {
		return
	}

	rec, err := h.svc.Reconcile(r.Context(), b)
	if err != nil {
		h.writeErr(w, r, "Failed to reconcile balances", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"bankA": rec.BankA,
		"bankB": rec.BankB,
		"bankC": rec.BankC,
	})
}

// CreateAsset handles POST /api/assets
func (h *Handler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	var a domain.Asset
	if !decode(w, r, &a) {
		return
	}
	a.ID = ""

	created, err := h.svc.AddAsset(r.Context(), a)
	if err != nil {
		h.writeErr(w, r, "Failed to add asset", err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// DeleteAsset handles DELETE /api/assets/{id}
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAsset(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeErr(w, r, "Failed to delete asset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateBusiness handles POST /api/businesses
func (h *Handler) CreateBusiness(w http.ResponseWriter, r *http.Request) {
	var b domain.Business
	if !decode(w, r, &b) {
		return
	}
	b.ID = ""

	created, err := h.svc.AddBusiness(r.Context(), b)
	if err != nil {
		h.writeErr(w, r, "Failed to add business", err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// DeleteBusiness handles DELETE /api/businesses/{id}
func (h *Handler) DeleteBusiness(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteBusiness(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeErr(w, r, "Failed to delete business", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateLoan handles POST /api/loans
func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var l domain.Loan
	if !decode(w, r, &l) {
		return
	}
	l.ID = ""

	created, err := h.svc.AddLoan(r.Context(), l)
	if err != nil {
		h.writeErr(w, r, "Failed to add loan", err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// DeleteLoan handles DELETE /api/loans/{id}
func (h *Handler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteLoan(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeErr(w, r, "Failed to delete loan", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
