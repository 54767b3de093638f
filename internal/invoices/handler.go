package invoices

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/horizon-travel/horizon/internal/platform/httpx"
)

// Handler wires the invoice JSON API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed request body")
		return
	}

	inv, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.respondError(w, "get invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListInvoicesRequest{Limit: 50}

	query := r.URL.Query()
	if s := query.Get("quotation_id"); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			req.QuotationID = &id
		}
	}
	if s := query.Get("status"); s != "" {
		status := Status(s)
		req.Status = &status
	}
	if n, err := strconv.Atoi(query.Get("limit")); err == nil && n > 0 {
		req.Limit = n
	}
	if n, err := strconv.Atoi(query.Get("offset")); err == nil && n >= 0 {
		req.Offset = n
	}

	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, "list invoices", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoices": items,
		"total":    total,
	})
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Send(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.respondError(w, "send invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, httpx.ErrNotFound) && !errors.Is(err, httpx.ErrValidation) {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
