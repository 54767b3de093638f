package quotations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/horizon-travel/horizon/internal/catalog"
	"github.com/horizon-travel/horizon/internal/mail"
	"github.com/horizon-travel/horizon/internal/observability"
	"github.com/horizon-travel/horizon/internal/platform/httpx"
	"github.com/horizon-travel/horizon/internal/pricing"
	"github.com/horizon-travel/horizon/internal/sequence"
	"github.com/horizon-travel/horizon/internal/shared"
)

// ErrInvalidTransition indicates a lifecycle move outside the transition table.
var ErrInvalidTransition = errors.New("invalid status transition")

// CatalogLookup is the slice of the catalog service the lifecycle needs.
type CatalogLookup interface {
	Get(ctx context.Context, serviceType shared.ServiceType, id int64) (*catalog.ServiceRecord, error)
}

// Service drives quotation creation and lifecycle transitions.
type Service struct {
	repo      Repository
	catalog   CatalogLookup
	numbers   sequence.Generator
	sender    mail.Dispatcher
	notifier  mail.Dispatcher
	metrics   *observability.Metrics
	logger    *slog.Logger
	operator  string
	sendLimit time.Duration
	now       func() time.Time
}

// ServiceParams groups the service dependencies.
type ServiceParams struct {
	Repo    Repository
	Catalog CatalogLookup
	Numbers sequence.Generator
	// Sender delivers the quotation email synchronously; a failed delivery
	// blocks the send transition.
	Sender mail.Dispatcher
	// Notifier handles best-effort notifications (acceptance alerts); its
	// failures are logged, never surfaced.
	Notifier      mail.Dispatcher
	Metrics       *observability.Metrics
	Logger        *slog.Logger
	OperatorEmail string
	SendTimeout   time.Duration
}

// NewService constructs the quotation service.
func NewService(p ServiceParams) *Service {
	limit := p.SendTimeout
	if limit <= 0 {
		limit = 15 * time.Second
	}
	return &Service{
		repo:      p.Repo,
		catalog:   p.Catalog,
		numbers:   p.Numbers,
		sender:    p.Sender,
		notifier:  p.Notifier,
		metrics:   p.Metrics,
		logger:    p.Logger,
		operator:  p.OperatorEmail,
		sendLimit: limit,
		now:       time.Now,
	}
}

// Create prices the request, allocates a number, resolves the included
// services and persists the quotation in draft.
func (s *Service) Create(ctx context.Context, req CreateQuotationRequest) (*Quotation, error) {
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	now := s.now()

	days := req.DurationDays
	if days == 0 {
		days = int(req.EndDate.Sub(req.StartDate).Hours() / 24)
		if days < 1 {
			days = 1
		}
	}
	tier := req.AccommodationTier
	if tier == "" {
		tier = shared.TierStandard
	}

	breakdown := pricing.Calculate(pricing.Input{
		ServiceType:       req.ServiceType,
		BasePriceOverride: req.BasePrice,
		DurationDays:      days,
		Adults:            req.Adults,
		Children:          req.Children,
		Infants:           req.Infants,
		NumRooms:          req.NumRooms,
		Tier:              tier,
		StartDate:         req.StartDate,
	})

	depositPct := shared.DefaultDepositPercentage
	if req.DepositPercentage != nil {
		depositPct = *req.DepositPercentage
	}
	deposit, balance := shared.SplitDeposit(breakdown.Total, depositPct)

	included := catalog.IncludedServices(req.IncludedServices, req.ServiceType, s.lookupRecord(ctx, req.ServiceType, req.ServiceID))

	q := Quotation{
		CustomerName:         req.CustomerName,
		CustomerEmail:        req.CustomerEmail,
		CustomerPhone:        req.CustomerPhone,
		CustomerCountry:      req.CustomerCountry,
		ServiceType:          req.ServiceType,
		ServiceID:            req.ServiceID,
		ServiceDetails:       req.ServiceDetails,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		DurationDays:         days,
		Adults:               req.Adults,
		Children:             req.Children,
		Infants:              req.Infants,
		NumRooms:             req.NumRooms,
		AccommodationTier:    tier,
		BasePrice:            breakdown.BasePrice,
		AccommodationUpgrade: breakdown.AccommodationUpgrade,
		DiscountAmount:       breakdown.DiscountAmount,
		DiscountPercentage:   breakdown.DiscountPercentage,
		Subtotal:             breakdown.Subtotal,
		TotalAmount:          breakdown.Total,
		DepositPercentage:    depositPct,
		DepositAmount:        deposit,
		BalanceAmount:        balance,
		IncludedServices:     included,
		AdminNotes:           req.AdminNotes,
		Status:               StatusDraft,
		CreatedAt:            now,
		UpdatedAt:            now,
		ValidUntil:           now.AddDate(0, 0, ValidityDays),
	}

	// A duplicate number is an infrastructure collision, not a user error:
	// retry with a fresh number before surfacing anything.
	var id int64
	for attempt := 0; attempt < 2; attempt++ {
		number, err := s.numbers.NextQuotationNumber(ctx, now)
		if err != nil {
			return nil, fmt.Errorf("allocate quotation number: %w", err)
		}
		q.Number = number

		id, err = s.repo.Create(ctx, q)
		if err == nil {
			break
		}
		if errors.Is(err, ErrDuplicateNumber) && attempt == 0 {
			s.logger.Warn("quotation number collision, retrying", slog.String("number", number))
			continue
		}
		return nil, fmt.Errorf("create quotation: %w", err)
	}

	s.metrics.QuotationCreated()
	return s.repo.Get(ctx, id)
}

// Update applies the bounded staff correction path. A status change still
// goes through the transition table, and moving to accepted triggers the
// acceptance side effects.
func (s *Service) Update(ctx context.Context, id int64, req UpdateQuotationRequest) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates, err := s.buildUpdates(existing, req)
	if err != nil {
		return nil, err
	}

	acceptedNow := req.Status != nil && *req.Status == StatusAccepted && existing.Status != StatusAccepted
	if acceptedNow {
		updates["accepted_at"] = s.now()
	}

	if len(updates) > 0 {
		updates["updated_at"] = s.now()
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, fmt.Errorf("update quotation: %w", err)
		}
	}

	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if acceptedNow {
		s.metrics.TransitionApplied("accept")
		s.notifyAccepted(ctx, updated)
	}
	return updated, nil
}

// Send moves a draft quotation to sent. The customer email is dispatched
// first; if delivery fails the quotation stays in draft with sentAt unset.
func (s *Service) Send(ctx context.Context, id int64) (*Quotation, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status != StatusDraft {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, q.Status, StatusSent)
	}

	subject, body, err := mail.QuotationEmail(s.emailData(q))
	if err != nil {
		return nil, err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendLimit)
	defer cancel()
	res, err := s.sender.Send(sendCtx, mail.Message{To: q.CustomerEmail, Subject: subject, HTMLBody: body})
	if err != nil || !res.Success {
		s.metrics.EmailDispatched("quotation", false)
		if err == nil {
			err = errors.New(res.Err)
		}
		return nil, fmt.Errorf("dispatch quotation email: %w: %w", httpx.ErrDependency, err)
	}
	s.metrics.EmailDispatched("quotation", true)

	if err := s.repo.MarkSent(ctx, id, s.now()); err != nil {
		return nil, fmt.Errorf("mark sent: %w", err)
	}
	s.metrics.TransitionApplied("send")
	return s.repo.Get(ctx, id)
}

// RecordView tracks a customer opening the quotation. Every customer view
// bumps viewCount and viewedAt; the status flips to viewed only from sent,
// and never regresses from a later state. Staff previews are ignored.
func (s *Service) RecordView(ctx context.Context, id int64, customer bool) (*Quotation, error) {
	if !customer {
		return s.repo.Get(ctx, id)
	}
	q, err := s.repo.RecordView(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	s.metrics.TransitionApplied("view")
	return q, nil
}

// Accept finalises the quotation. The status change is committed first:
// a customer-initiated acceptance is never lost over a notification hiccup,
// so both follow-up messages are best-effort.
func (s *Service) Accept(ctx context.Context, id int64) (*Quotation, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status == StatusAccepted {
		return q, nil
	}
	if !CanTransition(q.Status, StatusAccepted) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, q.Status, StatusAccepted)
	}

	if err := s.repo.MarkAccepted(ctx, id, s.now()); err != nil {
		return nil, fmt.Errorf("mark accepted: %w", err)
	}
	s.metrics.TransitionApplied("accept")

	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifyAccepted(ctx, updated)
	return updated, nil
}

// Reject closes the quotation without side effects.
func (s *Service) Reject(ctx context.Context, id int64) (*Quotation, error) {
	q, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status == StatusRejected {
		return q, nil
	}
	if !CanTransition(q.Status, StatusRejected) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, q.Status, StatusRejected)
	}

	if err := s.repo.MarkRejected(ctx, id); err != nil {
		return nil, fmt.Errorf("mark rejected: %w", err)
	}
	s.metrics.TransitionApplied("reject")
	return s.repo.Get(ctx, id)
}

// Get returns one quotation.
func (s *Service) Get(ctx context.Context, id int64) (*Quotation, error) {
	return s.repo.Get(ctx, id)
}

// GetByNumber returns one quotation by its external-facing number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Quotation, error) {
	return s.repo.GetByNumber(ctx, number)
}

// List returns quotations matching the filters.
func (s *Service) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

// Delete removes a quotation. Admin only; invoices keep their own snapshots.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) validateCreate(req CreateQuotationRequest) error {
	var fields []httpx.FieldError
	if !req.ServiceType.Valid() {
		fields = append(fields, httpx.FieldError{Field: "service_type", Message: "must be one of: tour vehicle hotel other"})
	}
	if !req.EndDate.IsZero() && !req.StartDate.IsZero() && req.EndDate.Before(req.StartDate) {
		fields = append(fields, httpx.FieldError{Field: "end_date", Message: "must not be before start_date"})
	}
	if req.AccommodationTier != "" && !req.AccommodationTier.Valid() {
		fields = append(fields, httpx.FieldError{Field: "accommodation_tier", Message: "must be one of: standard deluxe luxury"})
	}
	if len(fields) > 0 {
		return &httpx.ValidationError{Fields: fields}
	}
	return nil
}

// lookupRecord fetches the catalog record behind the quotation. Lookup
// failures degrade to the generic included-services fallback instead of
// failing the request.
func (s *Service) lookupRecord(ctx context.Context, serviceType shared.ServiceType, id int64) *catalog.ServiceRecord {
	if id == 0 || serviceType == shared.ServiceOther {
		return nil
	}
	rec, err := s.catalog.Get(ctx, serviceType, id)
	if err != nil {
		s.logger.Warn("catalog lookup failed, using fallback inclusions",
			slog.String("service_type", string(serviceType)),
			slog.Int64("service_id", id),
			slog.Any("error", err))
		return nil
	}
	return rec
}

func (s *Service) buildUpdates(existing *Quotation, req UpdateQuotationRequest) (map[string]any, error) {
	updates := make(map[string]any)

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, &httpx.ValidationError{Fields: []httpx.FieldError{
				{Field: "status", Message: "must be one of: draft sent viewed accepted rejected"},
			}}
		}
		if *req.Status != existing.Status {
			if !CanTransition(existing.Status, *req.Status) {
				return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, existing.Status, *req.Status)
			}
			updates["status"] = *req.Status
		}
	}

	setString := func(col string, v *string) {
		if v != nil {
			updates[col] = *v
		}
	}
	setString("customer_name", req.CustomerName)
	setString("customer_email", req.CustomerEmail)
	setString("customer_phone", req.CustomerPhone)
	setString("customer_country", req.CustomerCountry)
	setString("admin_notes", req.AdminNotes)

	if req.StartDate != nil {
		updates["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		updates["end_date"] = *req.EndDate
	}
	if req.DurationDays != nil {
		updates["duration_days"] = *req.DurationDays
	}
	if req.Adults != nil {
		updates["adults"] = *req.Adults
	}
	if req.Children != nil {
		updates["children"] = *req.Children
	}
	if req.Infants != nil {
		updates["infants"] = *req.Infants
	}

	setAmount := func(col string, v *float64) {
		if v != nil {
			updates[col] = shared.Round2(*v)
		}
	}
	setAmount("base_price", req.BasePrice)
	setAmount("accommodation_upgrade", req.AccommodationUpgrade)
	setAmount("discount_amount", req.DiscountAmount)
	setAmount("discount_percentage", req.DiscountPercentage)
	setAmount("subtotal", req.Subtotal)
	setAmount("total_amount", req.TotalAmount)
	setAmount("deposit_percentage", req.DepositPercentage)

	// Deposit and balance stay consistent with whatever total applies after
	// the update.
	if req.TotalAmount != nil || req.DepositPercentage != nil {
		total := existing.TotalAmount
		if req.TotalAmount != nil {
			total = *req.TotalAmount
		}
		pct := existing.DepositPercentage
		if req.DepositPercentage != nil {
			pct = *req.DepositPercentage
		}
		deposit, balance := shared.SplitDeposit(total, pct)
		updates["deposit_amount"] = deposit
		updates["balance_amount"] = balance
	}

	if req.ValidUntil != nil {
		updates["valid_until"] = *req.ValidUntil
	}
	if req.IncludedServices != nil {
		updates["included_services"] = *req.IncludedServices
	}

	return updates, nil
}

// notifyAccepted dispatches the operator alert and the customer confirmation.
// Failures are logged only; the accepted status is already final.
func (s *Service) notifyAccepted(ctx context.Context, q *Quotation) {
	data := s.emailData(q)

	if subject, body, err := mail.AcceptanceAlert(data); err == nil {
		s.dispatchBestEffort(ctx, "acceptance_alert", s.operator, subject, body)
	} else {
		s.logger.Error("render acceptance alert", slog.Any("error", err))
	}

	if subject, body, err := mail.AcceptanceConfirmation(data); err == nil {
		s.dispatchBestEffort(ctx, "acceptance_confirmation", q.CustomerEmail, subject, body)
	} else {
		s.logger.Error("render acceptance confirmation", slog.Any("error", err))
	}
}

func (s *Service) dispatchBestEffort(ctx context.Context, kind, to, subject, body string) {
	res, err := s.notifier.Send(ctx, mail.Message{To: to, Subject: subject, HTMLBody: body})
	if err != nil || !res.Success {
		s.metrics.EmailDispatched(kind, false)
		s.logger.Error("notification dispatch failed",
			slog.String("kind", kind),
			slog.String("to", to),
			slog.Any("error", err),
			slog.String("dispatch_error", res.Err))
		return
	}
	s.metrics.EmailDispatched(kind, true)
}

func (s *Service) emailData(q *Quotation) mail.QuotationEmailData {
	serviceName := string(q.ServiceType)
	if q.ServiceDetails != nil {
		if name, ok := q.ServiceDetails["name"].(string); ok && name != "" {
			serviceName = name
		}
	}
	return mail.QuotationEmailData{
		Number:           q.Number,
		CustomerName:     q.CustomerName,
		CustomerEmail:    q.CustomerEmail,
		CustomerPhone:    q.CustomerPhone,
		ServiceName:      serviceName,
		StartDate:        q.StartDate,
		EndDate:          q.EndDate,
		Adults:           q.Adults,
		Children:         q.Children,
		Infants:          q.Infants,
		Subtotal:         q.Subtotal,
		DiscountAmount:   q.DiscountAmount,
		TotalAmount:      q.TotalAmount,
		DepositAmount:    q.DepositAmount,
		BalanceAmount:    q.BalanceAmount,
		ValidUntil:       q.ValidUntil,
		IncludedServices: q.IncludedServices,
	}
}
