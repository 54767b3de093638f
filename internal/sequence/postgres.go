package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresGenerator allocates document numbers from the document_sequences
// table. The upsert increments the counter atomically on the database side,
// so concurrent requests always observe distinct sequence values.
type PostgresGenerator struct {
	pool *pgxpool.Pool
}

// NewPostgresGenerator constructs a generator backed by the given pool.
func NewPostgresGenerator(pool *pgxpool.Pool) *PostgresGenerator {
	return &PostgresGenerator{pool: pool}
}

// NextQuotationNumber issues the next QT number for the month of at.
func (g *PostgresGenerator) NextQuotationNumber(ctx context.Context, at time.Time) (string, error) {
	seq, err := g.next(ctx, DocQuotation, at.Format("200601"))
	if err != nil {
		return "", err
	}
	return FormatQuotationNumber(at, seq), nil
}

// NextInvoiceNumber issues the next INV number for the year of at.
func (g *PostgresGenerator) NextInvoiceNumber(ctx context.Context, at time.Time) (string, error) {
	seq, err := g.next(ctx, DocInvoice, at.Format("2006"))
	if err != nil {
		return "", err
	}
	return FormatInvoiceNumber(at, seq), nil
}

func (g *PostgresGenerator) next(ctx context.Context, docType, period string) (int64, error) {
	const query = `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq`

	var seq int64
	err := g.pool.QueryRow(ctx, query, docType, period).Scan(&seq)
	if err == nil {
		return seq, nil
	}

	// Two first-time allocations for a fresh period can race the insert;
	// the loser retries against the now-existing row.
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == uniqueViolation {
		if err := g.pool.QueryRow(ctx, query, docType, period).Scan(&seq); err == nil {
			return seq, nil
		}
	}
	return 0, fmt.Errorf("sequence: next %s/%s: %w", docType, period, err)
}
