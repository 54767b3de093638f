package invoices

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the invoice endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{number}", h.Show)
		r.Post("/{number}/send", h.Send)
	})
}
