package cards

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/fairledger/internal/repos/cards"
	"github.com/shopspring/decimal"
)

func (r *cardsRepo) SetCardBalance(ctx context.Context, id string, balance decimal.Decimal, expectedVersion int64) (int64, error) {
	var version int64

	err := r.db.QueryRowContext(ctx, `
		UPDATE cards
		SET balance = $2,
		    version = version + 1
		WHERE id = $1
		  AND version = $3
		RETURNING version
	`, id, balance, expectedVersion).Scan(&version)
	if err == nil {
		return version, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("set card balance: %w", err)
	}

	// No row updated: either the card is gone or someone else wrote first.
	ok, err := r.exists(ctx, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, cards.ErrCardNotFound
	}

	return 0, cards.ErrVersionConflict
}
