package quotations

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes attaches the quotation endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/quotations", h.List)
	r.Post("/quotations", h.Create)
	r.Get("/quotations/{id}", h.Show)
	r.Get("/quotations/number/{number}", h.ShowByNumber)
	r.Patch("/quotations/{id}", h.Update)
	r.Delete("/quotations/{id}", h.Delete)

	r.Post("/quotations/{id}/send", h.Send)
	r.Post("/quotations/{id}/view", h.RecordView)
	r.Post("/quotations/{id}/accept", h.Accept)
	r.Post("/quotations/{id}/reject", h.Reject)
}
