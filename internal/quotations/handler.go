package quotations

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/horizon-travel/horizon/internal/platform/httpx"
	"github.com/horizon-travel/horizon/internal/shared"
)

// Handler wires the quotation JSON API.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed request body")
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	q, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, "create quotation", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	q, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

// ShowByNumber resolves a quotation by its external-facing number, the form
// customers quote back in correspondence.
func (h *Handler) ShowByNumber(w http.ResponseWriter, r *http.Request) {
	q, err := h.service.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.respondError(w, "get quotation by number", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListQuotationsRequest{Limit: 50}

	query := r.URL.Query()
	if s := query.Get("status"); s != "" {
		status := Status(s)
		req.Status = &status
	}
	if s := query.Get("service_type"); s != "" {
		st := shared.ServiceType(s)
		req.ServiceType = &st
	}
	if s := query.Get("email"); s != "" {
		req.Email = &s
	}
	req.DateFrom = parseDate(query.Get("date_from"))
	req.DateTo = parseDate(query.Get("date_to"))
	if n, err := strconv.Atoi(query.Get("limit")); err == nil && n > 0 {
		req.Limit = n
	}
	if n, err := strconv.Atoi(query.Get("offset")); err == nil && n >= 0 {
		req.Offset = n
	}

	items, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, "list quotations", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"quotations": items,
		"total":      total,
	})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateQuotationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed request body")
		return
	}
	if err := httpx.Validate(req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	q, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete quotation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "send", h.service.Send)
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "accept", h.service.Accept)
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reject", h.service.Reject)
}

// RecordView tracks a quotation being opened. Only requests flagged as the
// customer's own view (?customer=1) affect the counters.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	customer := r.URL.Query().Get("customer") == "1"

	q, err := h.service.RecordView(r.Context(), id, customer)
	if err != nil {
		h.respondError(w, "record view", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, action string, fn func(ctx context.Context, id int64) (*Quotation, error)) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	q, err := fn(r.Context(), id)
	if err != nil {
		h.respondError(w, action+" quotation", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid quotation id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrInvalidTransition) {
		httpx.Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
		return
	}
	if !errors.Is(err, httpx.ErrNotFound) && !errors.Is(err, httpx.ErrValidation) {
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
