package cards

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/fairledger/internal/infra/pgutils"
	"github.com/fastprodman/fairledger/internal/repos/cards"
	"github.com/fastprodman/fairledger/internal/repos/transactions"
	pgtransactions "github.com/fastprodman/fairledger/internal/repos/transactions/postgres"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *cardsRepo) IssueCard(ctx context.Context, card cards.Card, issue transactions.Record) error {
	err := pgutils.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO cards (id, holder_name, balance, version, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, card.ID, card.HolderName, card.Balance, card.Version, card.CreatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return cards.ErrDuplicateCard
			}

			return fmt.Errorf("insert card: %w", err)
		}

		err = pgtransactions.InsertTx(ctx, tx, issue)
		if err != nil {
			return fmt.Errorf("insert issue record: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("issue card: %w", err)
	}

	return nil
}
