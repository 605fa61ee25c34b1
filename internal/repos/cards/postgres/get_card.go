package cards

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/fairledger/internal/repos/cards"
)

func (r *cardsRepo) GetCard(ctx context.Context, id string) (cards.Card, error) {
	var c cards.Card

	err := r.db.QueryRowContext(ctx, `
		SELECT id, holder_name, balance, version, created_at
		FROM cards
		WHERE id = $1
	`, id).Scan(&c.ID, &c.HolderName, &c.Balance, &c.Version, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cards.Card{}, cards.ErrCardNotFound
		}

		return cards.Card{}, fmt.Errorf("get card: %w", err)
	}

	return c, nil
}
