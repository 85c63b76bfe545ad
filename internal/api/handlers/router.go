package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/lifeos/internal/api/middleware"
)

// NewRouter mounts every route on a chi router wrapped in the standard middleware.
func NewRouter(h *Handler, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS)

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Get("/metrics", h.GetMetrics)
		r.Put("/profile", h.UpdateProfile)

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", h.CreateTransaction)
			r.Put("/{id}", h.UpdateTransaction)
			r.Delete("/{id}", h.DeleteTransaction)
		})
		r.Post("/reconcile", h.Reconcile)

		r.Post("/assets", h.CreateAsset)
		r.Delete("/assets/{id}", h.DeleteAsset)
		r.Post("/businesses", h.CreateBusiness)
		r.Delete("/businesses/{id}", h.DeleteBusiness)
		r.Post("/loans", h.CreateLoan)
		r.Delete("/loans/{id}", h.DeleteLoan)

		r.Route("/habits", func(r chi.Router) {
			r.Get("/", h.ListHabits)
			r.Post("/", h.CreateHabit)
			r.Post("/{id}/toggle", h.ToggleHabit)
			r.Post("/{id}/adjust", h.AdjustHabit)
			r.Delete("/{id}", h.DeleteHabit)
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", h.ListBooks)
			r.Post("/", h.CreateBook)
			r.Put("/{id}/status", h.SetBookStatus)
			r.Delete("/{id}", h.DeleteBook)
			r.Post("/{id}/notes", h.CreateNote)
			r.Put("/{id}/notes/{noteID}", h.UpdateNote)
			r.Delete("/{id}/notes/{noteID}", h.DeleteNote)
		})
		r.Post("/journal", h.CreateJournalEntry)

		r.Post("/command", h.RunCommand)
		r.Post("/chat", h.EnqueueChat)
		r.Get("/tasks", h.ListTasks)
		r.Get("/tasks/{id}", h.GetTask)

		r.Post("/sync/push", h.EnqueuePush)
		r.Post("/sync/pull", h.Pull)

		r.Post("/export/bigquery", h.ExportBigQuery)
		r.Post("/export/notion", h.ExportNotion)
	})

	return r
}
