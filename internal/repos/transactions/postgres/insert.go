package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/fairledger/internal/repos/transactions"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *transactionsRepo) Insert(ctx context.Context, rec transactions.Record) error {
	return insert(ctx, r.db, rec)
}

// InsertTx appends rec inside an existing transaction.
func InsertTx(ctx context.Context, tx *sql.Tx, rec transactions.Record) error {
	return insert(ctx, tx, rec)
}

func insert(ctx context.Context, ex execer, rec transactions.Record) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO transactions (id, card_id, card_name, amount, kind, processed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ID, rec.CardID, rec.CardName, rec.Amount, string(rec.Kind), rec.ProcessedBy, rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return transactions.ErrDuplicateTransaction
			}
		}

		return fmt.Errorf("insert transaction: %w", err)
	}

	return nil
}
