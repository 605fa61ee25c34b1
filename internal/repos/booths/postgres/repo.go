package booths

import (
	"database/sql"

	"github.com/fastprodman/fairledger/internal/repos/booths"
)

var _ booths.Booths = (*boothsRepo)(nil)

type boothsRepo struct{ db *sql.DB }

func New(db *sql.DB) *boothsRepo {
	return &boothsRepo{db: db}
}

const selectBooth = `
	SELECT id, name, username, password_hash, revenue, version, created_at
	FROM booths
`

func scanBooth(row *sql.Row) (booths.Booth, error) {
	var b booths.Booth

	err := row.Scan(&b.ID, &b.Name, &b.Username, &b.PasswordHash, &b.Revenue, &b.Version, &b.CreatedAt)
	if err != nil {
		return booths.Booth{}, err
	}

	return b, nil
}
