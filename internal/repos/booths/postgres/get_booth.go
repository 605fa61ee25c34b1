package booths

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/fairledger/internal/repos/booths"
)

func (r *boothsRepo) GetBooth(ctx context.Context, id string) (booths.Booth, error) {
	b, err := scanBooth(r.db.QueryRowContext(ctx, selectBooth+`WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return booths.Booth{}, booths.ErrBoothNotFound
		}

		return booths.Booth{}, fmt.Errorf("get booth: %w", err)
	}

	return b, nil
}

func (r *boothsRepo) GetBoothByUsername(ctx context.Context, username string) (booths.Booth, error) {
	b, err := scanBooth(r.db.QueryRowContext(ctx, selectBooth+`WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return booths.Booth{}, booths.ErrBoothNotFound
		}

		return booths.Booth{}, fmt.Errorf("get booth by username: %w", err)
	}

	return b, nil
}
