package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx       *fakeTx
	beginErr error
	opts     pgx.TxOptions
}

func (b *fakeBeginner) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	b.opts = opts
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	tx := &fakeTx{}
	beginner := &fakeBeginner{tx: tx}

	var called bool
	err := WithTx(t.Context(), beginner, func(pgx.Tx) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
	assert.Equal(t, pgx.ReadCommitted, beginner.opts.IsoLevel)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	boom := errors.New("insert failed")

	err := WithTx(t.Context(), &fakeBeginner{tx: tx}, func(pgx.Tx) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestWithTxBeginFailure(t *testing.T) {
	boom := errors.New("pool exhausted")

	err := WithTx(t.Context(), &fakeBeginner{beginErr: boom}, func(pgx.Tx) error {
		t.Fatal("fn must not run when begin fails")
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestWithTxCommitFailure(t *testing.T) {
	tx := &fakeTx{commitErr: errors.New("connection lost")}

	err := WithTx(t.Context(), &fakeBeginner{tx: tx}, func(pgx.Tx) error {
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit tx")
	assert.True(t, tx.rolledBack, "failed commit still attempts rollback")
}
