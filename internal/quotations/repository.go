package quotations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/horizon-travel/horizon/internal/platform/httpx"
)

var (
	// ErrNotFound indicates an unknown quotation identifier.
	ErrNotFound = fmt.Errorf("quotation: %w", httpx.ErrNotFound)
	// ErrDuplicateNumber indicates a generated number collided; callers
	// retry with a fresh number instead of surfacing this.
	ErrDuplicateNumber = errors.New("quotation: duplicate number")
)

const uniqueViolation = "23505"

// Repository provides quotation persistence.
type Repository interface {
	Create(ctx context.Context, q Quotation) (int64, error)
	Get(ctx context.Context, id int64) (*Quotation, error)
	GetByNumber(ctx context.Context, number string) (*Quotation, error)
	List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	MarkSent(ctx context.Context, id int64, at time.Time) error
	MarkAccepted(ctx context.Context, id int64, at time.Time) error
	MarkRejected(ctx context.Context, id int64) error
	RecordView(ctx context.Context, id int64, at time.Time) (*Quotation, error)
	ListExpiring(ctx context.Context, from, until time.Time) ([]Quotation, error)
	Delete(ctx context.Context, id int64) error
}

// updatableColumns is the allow-list for the generic update path. Anything
// not listed here cannot be touched outside the lifecycle actions.
var updatableColumns = map[string]struct{}{
	"customer_name": {}, "customer_email": {}, "customer_phone": {}, "customer_country": {},
	"start_date": {}, "end_date": {}, "duration_days": {},
	"adults": {}, "children": {}, "infants": {},
	"base_price": {}, "accommodation_upgrade": {}, "discount_amount": {}, "discount_percentage": {},
	"subtotal": {}, "total_amount": {}, "deposit_percentage": {}, "deposit_amount": {}, "balance_amount": {},
	"status": {}, "valid_until": {}, "included_services": {}, "admin_notes": {},
	"accepted_at": {}, "updated_at": {},
}

const quotationColumns = `
	id, number, customer_name, customer_email, customer_phone, customer_country,
	service_type, service_id, service_details,
	start_date, end_date, duration_days, adults, children, infants, num_rooms, accommodation_tier,
	base_price, accommodation_upgrade, discount_amount, discount_percentage,
	subtotal, total_amount, deposit_percentage, deposit_amount, balance_amount,
	included_services, admin_notes,
	status, created_at, updated_at, sent_at, first_viewed_at, viewed_at, view_count, accepted_at, valid_until`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed quotation repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	const query = `
		INSERT INTO quotations (
			number, customer_name, customer_email, customer_phone, customer_country,
			service_type, service_id, service_details,
			start_date, end_date, duration_days, adults, children, infants, num_rooms, accommodation_tier,
			base_price, accommodation_upgrade, discount_amount, discount_percentage,
			subtotal, total_amount, deposit_percentage, deposit_amount, balance_amount,
			included_services, admin_notes,
			status, created_at, updated_at, view_count, valid_until
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20,
			$21, $22, $23, $24, $25,
			$26, $27,
			$28, $29, $30, 0, $31
		)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		q.Number, q.CustomerName, q.CustomerEmail, q.CustomerPhone, q.CustomerCountry,
		q.ServiceType, q.ServiceID, q.ServiceDetails,
		q.StartDate, q.EndDate, q.DurationDays, q.Adults, q.Children, q.Infants, q.NumRooms, q.AccommodationTier,
		q.BasePrice, q.AccommodationUpgrade, q.DiscountAmount, q.DiscountPercentage,
		q.Subtotal, q.TotalAmount, q.DepositPercentage, q.DepositAmount, q.BalanceAmount,
		q.IncludedServices, q.AdminNotes,
		q.Status, q.CreatedAt, q.UpdatedAt, q.ValidUntil,
	).Scan(&id)
	if err != nil {
		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == uniqueViolation {
			return 0, ErrDuplicateNumber
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Quotation, error) {
	query := fmt.Sprintf("SELECT %s FROM quotations WHERE id = $1", quotationColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Quotation, error) {
	query := fmt.Sprintf("SELECT %s FROM quotations WHERE number = $1", quotationColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, number))
}

func (r *repository) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	conditions := []string{"TRUE"}
	args := []any{}
	argPos := 1

	add := func(cond string, v any) {
		conditions = append(conditions, fmt.Sprintf(cond, argPos))
		args = append(args, v)
		argPos++
	}
	if req.Status != nil {
		add("status = $%d", *req.Status)
	}
	if req.ServiceType != nil {
		add("service_type = $%d", *req.ServiceType)
	}
	if req.Email != nil {
		add("customer_email = $%d", *req.Email)
	}
	if req.DateFrom != nil {
		add("created_at >= $%d", *req.DateFrom)
	}
	if req.DateTo != nil {
		add("created_at <= $%d", *req.DateTo)
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM quotations %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM quotations %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		quotationColumns, whereClause, argPos, argPos+1,
	)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Quotation
	for rows.Next() {
		q, err := r.scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *q)
	}
	return out, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}

	sets := make([]string, 0, len(updates))
	args := make([]any, 0, len(updates)+1)
	argPos := 1
	for col, v := range updates {
		if _, ok := updatableColumns[col]; !ok {
			return fmt.Errorf("quotation: column %q is not updatable", col)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, argPos))
		args = append(args, v)
		argPos++
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE quotations SET %s WHERE id = $%d", strings.Join(sets, ", "), argPos)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx,
		"UPDATE quotations SET status = $1, sent_at = $2, updated_at = $2 WHERE id = $3",
		StatusSent, at, id)
}

func (r *repository) MarkAccepted(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx,
		"UPDATE quotations SET status = $1, accepted_at = $2, updated_at = $2 WHERE id = $3",
		StatusAccepted, at, id)
}

func (r *repository) MarkRejected(ctx context.Context, id int64) error {
	return r.exec(ctx,
		"UPDATE quotations SET status = $1, updated_at = NOW() WHERE id = $2",
		StatusRejected, id)
}

// RecordView bumps the view counters and flips sent to viewed in a single
// atomic statement, so concurrent views never regress the status.
func (r *repository) RecordView(ctx context.Context, id int64, at time.Time) (*Quotation, error) {
	query := fmt.Sprintf(`
		UPDATE quotations SET
			view_count = view_count + 1,
			viewed_at = $1,
			first_viewed_at = COALESCE(first_viewed_at, $1),
			status = CASE WHEN status = $2 THEN $3 ELSE status END,
			updated_at = $1
		WHERE id = $4
		RETURNING %s`, quotationColumns)

	return r.scanOne(r.pool.QueryRow(ctx, query, at, StatusSent, StatusViewed, id))
}

func (r *repository) ListExpiring(ctx context.Context, from, until time.Time) ([]Quotation, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM quotations
		WHERE valid_until BETWEEN $1 AND $2 AND status IN ($3, $4)
		ORDER BY valid_until`, quotationColumns)

	rows, err := r.pool.Query(ctx, query, from, until, StatusSent, StatusViewed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Quotation
	for rows.Next() {
		q, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, "DELETE FROM quotations WHERE id = $1", id)
}

func (r *repository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) scanOne(row pgx.Row) (*Quotation, error) {
	var q Quotation
	err := row.Scan(
		&q.ID, &q.Number, &q.CustomerName, &q.CustomerEmail, &q.CustomerPhone, &q.CustomerCountry,
		&q.ServiceType, &q.ServiceID, &q.ServiceDetails,
		&q.StartDate, &q.EndDate, &q.DurationDays, &q.Adults, &q.Children, &q.Infants, &q.NumRooms, &q.AccommodationTier,
		&q.BasePrice, &q.AccommodationUpgrade, &q.DiscountAmount, &q.DiscountPercentage,
		&q.Subtotal, &q.TotalAmount, &q.DepositPercentage, &q.DepositAmount, &q.BalanceAmount,
		&q.IncludedServices, &q.AdminNotes,
		&q.Status, &q.CreatedAt, &q.UpdatedAt, &q.SentAt, &q.FirstViewedAt, &q.ViewedAt, &q.ViewCount, &q.AcceptedAt, &q.ValidUntil,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}
