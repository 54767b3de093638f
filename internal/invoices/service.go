package invoices

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
	"github.com/horizon-travel/horizon/internal/quotations"
	"github.com/horizon-travel/horizon/internal/sequence"
	"github.com/horizon-travel/horizon/internal/shared"
)

// QuotationSource is the slice of the quotation module the reconciler needs.
type QuotationSource interface {
	Get(ctx context.Context, id int64) (*quotations.Quotation, error)
}

// CatalogLookup resolves service records for the invoice snapshot.
type CatalogLookup interface {
	Get(ctx context.Context, serviceType shared.ServiceType, id int64) (*catalog.ServiceRecord, error)
}

// Service turns payments against quotations into immutable invoices.
type Service struct {
	repo       Repository
	quotations QuotationSource
	catalog    CatalogLookup
	numbers    sequence.Generator
	sender     mail.Dispatcher
	metrics    *observability.Metrics
	logger     *slog.Logger
	sendLimit  time.Duration
	now        func() time.Time
}

// ServiceParams groups the service dependencies.
type ServiceParams struct {
	Repo        Repository
	Quotations  QuotationSource
	Catalog     CatalogLookup
	Numbers     sequence.Generator
	Sender      mail.Dispatcher
	Metrics     *observability.Metrics
	Logger      *slog.Logger
	SendTimeout time.Duration
}

// NewService constructs the invoice service.
func NewService(p ServiceParams) *Service {
	limit := p.SendTimeout
	if limit <= 0 {
		limit = 15 * time.Second
	}
	return &Service{
		repo:       p.Repo,
		quotations: p.Quotations,
		catalog:    p.Catalog,
		numbers:    p.Numbers,
		sender:     p.Sender,
		metrics:    p.Metrics,
		logger:     p.Logger,
		sendLimit:  limit,
		now:        time.Now,
	}
}

// Create records a payment against a quotation: it reconciles the paid
// amount with the deposit split, allocates a year-scoped invoice number and
// freezes the customer and service details onto the invoice.
func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest) (*Invoice, error) {
	if err := httpx.Validate(req); err != nil {
		return nil, err
	}

	q, err := s.quotations.Get(ctx, req.QuotationID)
	if err != nil {
		return nil, err
	}

	pct := ResolveDepositPercentage(req.DepositPercentage, q.DepositPercentage)
	amounts, status := Reconcile(q.TotalAmount, req.PaidAmount, pct)

	now := s.now()
	inv := Invoice{
		QuotationID:     q.ID,
		QuotationNumber: q.Number,

		CustomerName:    q.CustomerName,
		CustomerEmail:   q.CustomerEmail,
		CustomerPhone:   q.CustomerPhone,
		CustomerCountry: q.CustomerCountry,

		ServiceType:     q.ServiceType,
		ServiceSnapshot: s.serviceSnapshot(ctx, q),

		PaymentType:       req.PaymentType,
		PaymentReference:  req.PaymentReference,
		PaidAmount:        shared.Round2(req.PaidAmount),
		TotalAmount:       q.TotalAmount,
		DepositPercentage: amounts.DepositPercentage,
		DepositAmount:     amounts.DepositAmount,
		RemainingAmount:   amounts.RemainingAmount,
		Status:            status,

		Notes:     req.Notes,
		CreatedAt: now,
	}

	// A sequence collision is an infrastructure race, not a caller error;
	// one retry with a fresh number resolves it.
	for attempt := 0; attempt < 2; attempt++ {
		inv.Number, err = s.numbers.NextInvoiceNumber(ctx, now)
		if err != nil {
			return nil, fmt.Errorf("allocate invoice number: %w", err)
		}
		inv.ID, err = s.repo.Create(ctx, inv)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrDuplicateNumber) {
			return nil, fmt.Errorf("create invoice: %w", err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	s.metrics.InvoiceCreated(string(status))
	s.logger.InfoContext(ctx, "invoice created",
		"invoice_number", inv.Number,
		"quotation_number", inv.QuotationNumber,
		"status", status,
		"paid_amount", inv.PaidAmount,
	)
	return s.repo.Get(ctx, inv.ID)
}

// Send emails the invoice to the customer. The email bookkeeping fields are
// set only after a confirmed delivery.
func (s *Service) Send(ctx context.Context, number string) (*Invoice, error) {
	inv, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	subject, body, err := mail.InvoiceEmail(mail.InvoiceEmailData{
		InvoiceNumber:    inv.Number,
		QuotationNumber:  inv.QuotationNumber,
		CustomerName:     inv.CustomerName,
		TotalAmount:      inv.TotalAmount,
		PaidAmount:       inv.PaidAmount,
		RemainingAmount:  inv.RemainingAmount,
		Status:           string(inv.Status),
		PaymentReference: inv.PaymentReference,
	})
	if err != nil {
		return nil, err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendLimit)
	defer cancel()
	res, err := s.sender.Send(sendCtx, mail.Message{To: inv.CustomerEmail, Subject: subject, HTMLBody: body})
	if err != nil || !res.Success {
		s.metrics.EmailDispatched("invoice", false)
		if err == nil {
			err = errors.New(res.Err)
		}
		return nil, fmt.Errorf("dispatch invoice email: %w: %w", httpx.ErrDependency, err)
	}
	s.metrics.EmailDispatched("invoice", true)

	if err := s.repo.MarkEmailSent(ctx, inv.ID, s.now()); err != nil {
		return nil, fmt.Errorf("mark email sent: %w", err)
	}
	return s.repo.Get(ctx, inv.ID)
}

// Get returns one invoice by internal id.
func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

// GetByNumber returns one invoice by its external number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	return s.repo.GetByNumber(ctx, number)
}

// List returns invoices matching the filter, newest first.
func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	if req.Limit <= 0 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

// serviceSnapshot freezes the catalog record onto the invoice. When the
// catalog is unavailable the quotation's own snapshot is used instead, so
// invoice creation never fails on a catalog outage.
func (s *Service) serviceSnapshot(ctx context.Context, q *quotations.Quotation) map[string]any {
	if q.ServiceID == 0 {
		return q.ServiceDetails
	}
	rec, err := s.catalog.Get(ctx, q.ServiceType, q.ServiceID)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog lookup failed, using quotation snapshot",
			"service_type", q.ServiceType, "service_id", q.ServiceID, "error", err)
		return q.ServiceDetails
	}
	return rec.Snapshot()
}
