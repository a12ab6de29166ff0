package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/LexiconIndonesia/property-scraper-service/repository"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// Beginner is satisfied by *pgxpool.Pool and pgx.Tx.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgxTxBeginner opens property transactions on a pgx pool.
type PgxTxBeginner struct {
	db Beginner
}

func NewPgxTxBeginner(db Beginner) *PgxTxBeginner {
	return &PgxTxBeginner{db: db}
}

func (b *PgxTxBeginner) BeginPropertyTx(ctx context.Context) (PropertyTx, error) {
	tx, err := b.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgxPropertyTx{
		Queries: repository.New(tx),
		tx:      tx,
	}, nil
}

type pgxPropertyTx struct {
	*repository.Queries
	tx pgx.Tx
}

// Savepoint uses pgx nested transactions, which map to SAVEPOINT.
func (t *pgxPropertyTx) Savepoint(ctx context.Context, fn func(q PropertyQuerier) error) error {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("create savepoint: %w", err)
	}

	if err := fn(t.Queries.WithTx(sp)); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to roll back to savepoint")
		}
		return err
	}
	return sp.Commit(ctx)
}

func (t *pgxPropertyTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback is safe to call after Commit.
func (t *pgxPropertyTx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
