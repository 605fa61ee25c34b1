package booths

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/fairledger/internal/repos/booths"
	"github.com/shopspring/decimal"
)

func (r *boothsRepo) SetBoothRevenue(ctx context.Context, id string, revenue decimal.Decimal, expectedVersion int64) (int64, error) {
	var version int64

	err := r.db.QueryRowContext(ctx, `
		UPDATE booths
		SET revenue = $2,
		    version = version + 1
		WHERE id = $1
		  AND version = $3
		RETURNING version
	`, id, revenue, expectedVersion).Scan(&version)
	if err == nil {
		return version, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("set booth revenue: %w", err)
	}

	var exists bool

	err = r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM booths WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check exists: %w", err)
	}
	if !exists {
		return 0, booths.ErrBoothNotFound
	}

	return 0, booths.ErrVersionConflict
}
