package invoices

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
	// ErrNotFound indicates an unknown invoice identifier.
	ErrNotFound = fmt.Errorf("invoice: %w", httpx.ErrNotFound)
	// ErrDuplicateNumber indicates a generated number collided; callers
	// retry with a fresh number instead of surfacing this.
	ErrDuplicateNumber = errors.New("invoice: duplicate number")
)

const uniqueViolation = "23505"

// Repository provides invoice persistence. Invoices are append-only apart
// from the email bookkeeping fields.
type Repository interface {
	Create(ctx context.Context, inv Invoice) (int64, error)
	Get(ctx context.Context, id int64) (*Invoice, error)
	GetByNumber(ctx context.Context, number string) (*Invoice, error)
	List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
	MarkEmailSent(ctx context.Context, id int64, at time.Time) error
}

const invoiceColumns = `
	id, invoice_number, quotation_id, quotation_number,
	customer_name, customer_email, customer_phone, customer_country,
	service_type, service_snapshot,
	payment_type, payment_reference, paid_amount, total_amount,
	deposit_percentage, deposit_amount, remaining_amount, invoice_status,
	notes, email_sent, email_sent_at, created_at`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed invoice repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, inv Invoice) (int64, error) {
	const query = `
		INSERT INTO invoices (
			invoice_number, quotation_id, quotation_number,
			customer_name, customer_email, customer_phone, customer_country,
			service_type, service_snapshot,
			payment_type, payment_reference, paid_amount, total_amount,
			deposit_percentage, deposit_amount, remaining_amount, invoice_status,
			notes, email_sent, created_at
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9,
			$10, $11, $12, $13,
			$14, $15, $16, $17,
			$18, FALSE, $19
		)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		inv.Number, inv.QuotationID, inv.QuotationNumber,
		inv.CustomerName, inv.CustomerEmail, inv.CustomerPhone, inv.CustomerCountry,
		inv.ServiceType, inv.ServiceSnapshot,
		inv.PaymentType, inv.PaymentReference, inv.PaidAmount, inv.TotalAmount,
		inv.DepositPercentage, inv.DepositAmount, inv.RemainingAmount, inv.Status,
		inv.Notes, inv.CreatedAt,
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

func (r *repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	query := fmt.Sprintf("SELECT %s FROM invoices WHERE id = $1", invoiceColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *repository) GetByNumber(ctx context.Context, number string) (*Invoice, error) {
	query := fmt.Sprintf("SELECT %s FROM invoices WHERE invoice_number = $1", invoiceColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, number))
}

func (r *repository) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	conditions := []string{"TRUE"}
	args := []any{}
	argPos := 1

	add := func(cond string, v any) {
		conditions = append(conditions, fmt.Sprintf(cond, argPos))
		args = append(args, v)
		argPos++
	}
	if req.QuotationID != nil {
		add("quotation_id = $%d", *req.QuotationID)
	}
	if req.Status != nil {
		add("invoice_status = $%d", *req.Status)
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM invoices %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT %s FROM invoices %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d",
		invoiceColumns, whereClause, argPos, argPos+1,
	)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := r.scanOne(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *inv)
	}
	return out, total, rows.Err()
}

func (r *repository) MarkEmailSent(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE invoices SET email_sent = TRUE, email_sent_at = $1 WHERE id = $2", at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) scanOne(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.QuotationID, &inv.QuotationNumber,
		&inv.CustomerName, &inv.CustomerEmail, &inv.CustomerPhone, &inv.CustomerCountry,
		&inv.ServiceType, &inv.ServiceSnapshot,
		&inv.PaymentType, &inv.PaymentReference, &inv.PaidAmount, &inv.TotalAmount,
		&inv.DepositPercentage, &inv.DepositAmount, &inv.RemainingAmount, &inv.Status,
		&inv.Notes, &inv.EmailSent, &inv.EmailSentAt, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}
