package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dvloznov/lifeos/internal/api/middleware"
	"github.com/dvloznov/lifeos/internal/domain"
)

// ListBooks handles GET /api/books
func (h *Handler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books := h.svc.State().Library
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"books": books,
		"count": len(books),
	})
}

// CreateBook handles POST /api/books
func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title  string `json:"title"`
		Author string `json:"author"`
	}
	if !decode(w, r, &req) {
		return
	}

	book, err := h.svc.AddBook(r.Context(), req.Title, req.Author)
	if err != nil {
		h.writeErr(w, r, "Failed to add book", err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, book)
}

// SetBookStatus handles PUT /api/books/{id}/status
func (h *Handler) SetBookStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}

	book, err := h.svc.SetBookStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeErr(w, r, "Failed to update book", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, book)
}

// DeleteBook handles DELETE /api/books/{id}
func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteBook(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeErr(w, r, "Failed to delete book", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateNote handles POST /api/books/{id}/notes
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var note domain.NeuralNote
	if !decode(w, r, &note) {
		return
	}

	created, err := h.svc.AddNote(r.Context(), chi.URLParam(r, "id"), note)
	if err != nil {
		h.writeErr(w, r, "Failed to add note", err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// UpdateNote handles PUT /api/books/{id}/notes/{noteID}
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var note domain.NeuralNote
	if !decode(w, r, &note) {
		return
	}

	updated, err := h.svc.UpdateNote(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "noteID"), note)
	if err != nil {
		h.writeErr(w, r, "Failed to update note", err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// DeleteNote handles DELETE /api/books/{id}/notes/{noteID}
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNote(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "noteID")); err != nil {
		h.writeErr(w, r, "Failed to delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateJournalEntry handles POST /api/journal
func (h *Handler) CreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
		Mood    string `json:"mood"`
		Date    string `json:"date"`
	}
	if !decode(w, r, &req) {
		return
	}

	entry, err := h.svc.AddJournalEntry(r.Context(), req.Content, req.Mood, req.Date)
	if err != nil {
		h.writeErr(w, r, "Failed to add journal entry", err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, entry)
}
