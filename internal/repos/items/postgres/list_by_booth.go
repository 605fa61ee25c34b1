package items

import (
	"context"
	"fmt"

	"github.com/fastprodman/fairledger/internal/repos/items"
)

func (r *itemsRepo) ListByBooth(ctx context.Context, boothID string) ([]items.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, booth_id, name, unit_price
		FROM items
		WHERE booth_id = $1
		ORDER BY name, id
	`, boothID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	out := []items.Item{}
	for rows.Next() {
		var it items.Item

		err = rows.Scan(&it.ID, &it.BoothID, &it.Name, &it.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}

		out = append(out, it)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}

	return out, nil
}
