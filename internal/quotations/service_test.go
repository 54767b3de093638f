package quotations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizon-travel/horizon/internal/catalog"
	"github.com/horizon-travel/horizon/internal/mail"
	"github.com/horizon-travel/horizon/internal/shared"
)

// ============================================================================
// MOCK DEPENDENCIES
// ============================================================================

type mockRepository struct {
	quotations map[int64]*Quotation
	nextID     int64

	createCalls     int
	duplicateOnCall int
	getError        error
}

func newMockRepository() *mockRepository {
	return &mockRepository{quotations: make(map[int64]*Quotation), nextID: 1}
}

func (m *mockRepository) Create(ctx context.Context, q Quotation) (int64, error) {
	m.createCalls++
	if m.duplicateOnCall == m.createCalls {
		return 0, ErrDuplicateNumber
	}
	q.ID = m.nextID
	m.quotations[q.ID] = &q
	m.nextID++
	return q.ID, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Quotation, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	q, ok := m.quotations[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (m *mockRepository) GetByNumber(ctx context.Context, number string) (*Quotation, error) {
	for _, q := range m.quotations {
		if q.Number == number {
			cp := *q
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepository) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	var out []Quotation
	for _, q := range m.quotations {
		if req.Status != nil && q.Status != *req.Status {
			continue
		}
		out = append(out, *q)
	}
	return out, len(out), nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) error {
	q, ok := m.quotations[id]
	if !ok {
		return ErrNotFound
	}
	for col, v := range updates {
		if _, allowed := updatableColumns[col]; !allowed {
			return fmt.Errorf("column %q is not updatable", col)
		}
		switch col {
		case "status":
			q.Status = v.(Status)
		case "customer_name":
			q.CustomerName = v.(string)
		case "total_amount":
			q.TotalAmount = v.(float64)
		case "deposit_percentage":
			q.DepositPercentage = v.(float64)
		case "deposit_amount":
			q.DepositAmount = v.(float64)
		case "balance_amount":
			q.BalanceAmount = v.(float64)
		case "accepted_at":
			at := v.(time.Time)
			q.AcceptedAt = &at
		case "valid_until":
			q.ValidUntil = v.(time.Time)
		}
	}
	return nil
}

func (m *mockRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	q, ok := m.quotations[id]
	if !ok {
		return ErrNotFound
	}
	q.Status = StatusSent
	q.SentAt = &at
	return nil
}

func (m *mockRepository) MarkAccepted(ctx context.Context, id int64, at time.Time) error {
	q, ok := m.quotations[id]
	if !ok {
		return ErrNotFound
	}
	q.Status = StatusAccepted
	q.AcceptedAt = &at
	return nil
}

func (m *mockRepository) MarkRejected(ctx context.Context, id int64) error {
	q, ok := m.quotations[id]
	if !ok {
		return ErrNotFound
	}
	q.Status = StatusRejected
	return nil
}

func (m *mockRepository) RecordView(ctx context.Context, id int64, at time.Time) (*Quotation, error) {
	q, ok := m.quotations[id]
	if !ok {
		return nil, ErrNotFound
	}
	q.ViewCount++
	q.ViewedAt = &at
	if q.FirstViewedAt == nil {
		q.FirstViewedAt = &at
	}
	if q.Status == StatusSent {
		q.Status = StatusViewed
	}
	cp := *q
	return &cp, nil
}

func (m *mockRepository) ListExpiring(ctx context.Context, from, until time.Time) ([]Quotation, error) {
	return nil, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.quotations[id]; !ok {
		return ErrNotFound
	}
	delete(m.quotations, id)
	return nil
}

type fakeCatalog struct {
	rec *catalog.ServiceRecord
	err error
}

func (f *fakeCatalog) Get(ctx context.Context, serviceType shared.ServiceType, id int64) (*catalog.ServiceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

type fakeGenerator struct {
	quotationSeq int64
	invoiceSeq   int64
}

func (f *fakeGenerator) NextQuotationNumber(ctx context.Context, at time.Time) (string, error) {
	f.quotationSeq++
	return fmt.Sprintf("QT-%s-%04d", at.Format("200601"), f.quotationSeq), nil
}

func (f *fakeGenerator) NextInvoiceNumber(ctx context.Context, at time.Time) (string, error) {
	f.invoiceSeq++
	return fmt.Sprintf("INV-%s-%04d", at.Format("2006"), f.invoiceSeq), nil
}

type fakeDispatcher struct {
	messages []mail.Message
	fail     bool
	err      error
}

func (f *fakeDispatcher) Send(ctx context.Context, msg mail.Message) (mail.Result, error) {
	f.messages = append(f.messages, msg)
	if f.err != nil {
		return mail.Result{Success: false, Err: f.err.Error()}, f.err
	}
	if f.fail {
		return mail.Result{Success: false, Err: "relay refused"}, nil
	}
	return mail.Result{Success: true, MessageID: "msg-1"}, nil
}

type fixture struct {
	repo     *mockRepository
	catalog  *fakeCatalog
	sender   *fakeDispatcher
	notifier *fakeDispatcher
	service  *Service
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:     newMockRepository(),
		catalog:  &fakeCatalog{},
		sender:   &fakeDispatcher{},
		notifier: &fakeDispatcher{},
		now:      time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC),
	}
	f.service = NewService(ServiceParams{
		Repo:          f.repo,
		Catalog:       f.catalog,
		Numbers:       &fakeGenerator{},
		Sender:        f.sender,
		Notifier:      f.notifier,
		Logger:        slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		OperatorEmail: "bookings@horizon.example",
		SendTimeout:   time.Second,
	})
	f.service.now = func() time.Time { return f.now }
	return f
}

func validCreateRequest() CreateQuotationRequest {
	return CreateQuotationRequest{
		CustomerName:  "Nuwan Silva",
		CustomerEmail: "nuwan@example.com",
		ServiceType:   shared.ServiceTour,
		ServiceID:     7,
		StartDate:     time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2026, time.January, 24, 0, 0, 0, 0, time.UTC),
		DurationDays:  4,
		Adults:        3,
	}
}

// ============================================================================
// CREATE
// ============================================================================

func TestCreateComputesCatalogPricing(t *testing.T) {
	f := newFixture(t)

	q, err := f.service.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	// 100*4*3 = 1200, January *1.2 = 1440, party of 3 -> 5%.
	assert.Equal(t, 1440.0, q.BasePrice)
	assert.Equal(t, 1440.0, q.Subtotal)
	assert.Equal(t, 72.0, q.DiscountAmount)
	assert.Equal(t, 1368.0, q.TotalAmount)

	assert.Equal(t, StatusDraft, q.Status)
	assert.Equal(t, "QT-202601-0001", q.Number)
	assert.Equal(t, f.now.AddDate(0, 0, 14), q.ValidUntil)

	assert.Equal(t, 30.0, q.DepositPercentage)
	assert.InDelta(t, q.TotalAmount, q.DepositAmount+q.BalanceAmount, 0.01)
}

func TestCreateWithOverridePrice(t *testing.T) {
	f := newFixture(t)
	req := validCreateRequest()
	price := 200.0
	req.BasePrice = &price
	req.Adults = 2
	req.Children = 1
	req.DurationDays = 5

	q, err := f.service.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 540.0, q.TotalAmount)
	assert.Zero(t, q.DiscountAmount)
}

func TestCreateUsesCatalogInclusions(t *testing.T) {
	f := newFixture(t)
	f.catalog.rec = &catalog.ServiceRecord{
		Type:       shared.ServiceTour,
		Includings: "Accommodation, Breakfast",
	}

	q, err := f.service.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"Accommodation", "Breakfast"}, q.IncludedServices)
}

func TestCreateDegradesWhenCatalogFails(t *testing.T) {
	f := newFixture(t)
	f.catalog.err = errors.New("catalog unavailable")

	q, err := f.service.Create(context.Background(), validCreateRequest())
	require.NoError(t, err, "catalog outage must not block quotation creation")
	assert.NotEmpty(t, q.IncludedServices, "generic fallback list applies")
}

func TestCreateRetriesOnNumberCollision(t *testing.T) {
	f := newFixture(t)
	f.repo.duplicateOnCall = 1

	q, err := f.service.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, 2, f.repo.createCalls)
	assert.Equal(t, "QT-202601-0002", q.Number, "second number used after collision")
}

func TestCreateRejectsEndBeforeStart(t *testing.T) {
	f := newFixture(t)
	req := validCreateRequest()
	req.EndDate = req.StartDate.AddDate(0, 0, -1)

	_, err := f.service.Create(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end_date")
}

// ============================================================================
// SEND (Scenario E)
// ============================================================================

func TestSendDispatchesAndMarksSent(t *testing.T) {
	f := newFixture(t)
	q, err := f.service.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	sent, err := f.service.Send(context.Background(), q.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusSent, sent.Status)
	require.NotNil(t, sent.SentAt)
	assert.Equal(t, f.now, *sent.SentAt)

	require.Len(t, f.sender.messages, 1)
	assert.Equal(t, "nuwan@example.com", f.sender.messages[0].To)
	assert.Contains(t, f.sender.messages[0].Subject, sent.Number)
}

func TestSendFailureKeepsDraft(t *testing.T) {
	f := newFixture(t)
	q, err := f.service.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	f.sender.fail = true
	_, err = f.service.Send(context.Background(), q.ID)
	require.Error(t, err)

	after, err := f.service.Get(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, after.Status, "failed dispatch must not mark as sent")
	assert.Nil(t, after.SentAt)
}

func TestSendRejectsNonDraft(t *testing.T) {
	f := newFixture(t)
	q, err := f.service.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	_, err = f.service.Send(context.Background(), q.ID)
	require.NoError(t, err)

	_, err = f.service.Send(context.Background(), q.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// ============================================================================
// RECORD VIEW
// ============================================================================

func TestRecordViewFlipsSentToViewed(t *testing.T) {
	f := newFixture(t)
	q, _ := f.service.Create(context.Background(), validCreateRequest())
	_, err := f.service.Send(context.Background(), q.ID)
	require.NoError(t, err)

	viewed, err := f.service.RecordView(context.Background(), q.ID, true)
	require.NoError(t, err)
	assert.Equal(t, StatusViewed, viewed.Status)
	assert.Equal(t, 1, viewed.ViewCount)
	require.NotNil(t, viewed.FirstViewedAt)

	first := *viewed.FirstViewedAt
	f.now = f.now.Add(time.Hour)

	again, err := f.service.RecordView(context.Background(), q.ID, true)
	require.NoError(t, err)
	assert.Equal(t, StatusViewed, again.Status, "repeat views never regress")
	assert.Equal(t, 2, again.ViewCount)
	assert.Equal(t, first, *again.FirstViewedAt, "firstViewedAt set once")
	assert.Equal(t, f.now, *again.ViewedAt)
}

func TestRecordViewIgnoresStaffPreview(t *testing.T) {
	f := newFixture(t)
	q, _ := f.service.Create(context.Background(), validCreateRequest())
	_, err := f.service.Send(context.Background(), q.ID)
	require.NoError(t, err)

	preview, err := f.service.RecordView(context.Background(), q.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 0, preview.ViewCount)
	assert.Equal(t, StatusSent, preview.Status)
}

func TestRecordViewKeepsTerminalStatus(t *testing.T) {
	f := newFixture(t)
	q, _ := f.service.Create(context.Background(), validCreateRequest())
	_, _ = f.service.Send(context.Background(), q.ID)
	_, err := f.service.Accept(context.Background(), q.ID)
	require.NoError(t, err)

	after, err := f.service.RecordView(context.Background(), q.ID, true)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, after.Status)
	assert.Equal(t, 1, after.ViewCount, "views still counted after acceptance")
}

// ============================================================================
// ACCEPT (Scenario F) / REJECT
// ============================================================================

func TestAcceptSetsStatusAndNotifies(t *testing.T) {
	f := newFixture(t)
	q, _ := f.service.Create(context.Background(), validCreateRequest())
	_, err := f.service.Send(context.Background(), q.ID)
	require.NoError(t, err)

	accepted, err := f.service.Accept(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)

	require.Len(t, f.notifier.messages, 2)
	assert.Equal(t, "bookings@horizon.example", f.notifier.messages[0].To)
	assert.Equal(t, "nuwan@example.com", f.notifier.messages[1].To)
}

func TestAcceptSurvivesNotificationFailure(t *testing.T) {
	f := newFixture(t)
	q, _ := f.service.Create(context.Background(), validCreateRequest())
	_, err := f.service.Send(context.Background(), q.ID)
	require.NoError(t, err)

	f.notifier.err = errors.New("relay down")
	accepted, err := f.service.Accept(context.Background(), q.ID)
	require.NoError(t, err, "acceptance is final regardless of notification delivery")
	assert.Equal(t, StatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)
}

func TestAcceptFromViewed(t *testing.T) {
	f := newFixture(t)
	q, _ := f.service.Create(context.Background(), validCreateRequest())
	_, _ = f.service.Send(context.Background(), q.ID)
	_, err := f.service.RecordView(context.Background(), q.ID, true)
	require.NoError(t, err)

	accepted, err := f.service.Accept(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, accepted.Status)
}

func TestAcceptRejectsDraft(t *testing.T) {
	f := newFixture(t)
	q, _ := f.service.Create(context.Background(), validCreateRequest())

	_, err := f.service.Accept(context.Background(), q.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRejectIsStatusOnly(t *testing.T) {
	f := newFixture(t)
	q, _ := f.service.Create(context.Background(), validCreateRequest())
	_, err := f.service.Send(context.Background(), q.ID)
	require.NoError(t, err)
	f.sender.messages = nil

	rejected, err := f.service.Reject(context.Background(), q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Empty(t, f.sender.messages)
	assert.Empty(t, f.notifier.messages)
}

func TestTerminalStatusesRefuseTransitions(t *testing.T) {
	f := newFixture(t)
	q, _ := f.service.Create(context.Background(), validCreateRequest())
	_, _ = f.service.Send(context.Background(), q.ID)
	_, err := f.service.Reject(context.Background(), q.ID)
	require.NoError(t, err)

	_, err = f.service.Accept(context.Background(), q.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

// ============================================================================
// GENERIC UPDATE
// ============================================================================

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	q, _ := f.service.Create(context.Background(), validCreateRequest())

	bogus := Status("archived")
	_, err := f.service.Update(context.Background(), q.ID, UpdateQuotationRequest{Status: &bogus})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status")
}

func TestUpdateRejectsBackwardStatus(t *testing.T) {
	f := newFixture(t)
	q, _ := f.service.Create(context.Background(), validCreateRequest())
	_, _ = f.service.Send(context.Background(), q.ID)
	_, err := f.service.Accept(context.Background(), q.ID)
	require.NoError(t, err)

	draft := StatusDraft
	_, err = f.service.Update(context.Background(), q.ID, UpdateQuotationRequest{Status: &draft})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUpdateToAcceptedTriggersSideEffects(t *testing.T) {
	f := newFixture(t)
	q, _ := f.service.Create(context.Background(), validCreateRequest())
	_, err := f.service.Send(context.Background(), q.ID)
	require.NoError(t, err)

	accepted := StatusAccepted
	updated, err := f.service.Update(context.Background(), q.ID, UpdateQuotationRequest{Status: &accepted})
	require.NoError(t, err)

	assert.Equal(t, StatusAccepted, updated.Status)
	require.NotNil(t, updated.AcceptedAt)
	assert.Len(t, f.notifier.messages, 2, "update path still fires acceptance notifications")
}

func TestUpdateRecomputesDepositSplit(t *testing.T) {
	f := newFixture(t)
	q, _ := f.service.Create(context.Background(), validCreateRequest())

	total := 1000.0
	updated, err := f.service.Update(context.Background(), q.ID, UpdateQuotationRequest{TotalAmount: &total})
	require.NoError(t, err)

	// Scenario C: total 1000 at 30% -> 300 deposit, 700 balance.
	assert.Equal(t, 300.0, updated.DepositAmount)
	assert.Equal(t, 700.0, updated.BalanceAmount)
}

func TestUpdateUnknownQuotation(t *testing.T) {
	f := newFixture(t)
	name := "New Name"
	_, err := f.service.Update(context.Background(), 404, UpdateQuotationRequest{CustomerName: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}
