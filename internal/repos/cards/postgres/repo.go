package cards

import (
	"database/sql"

	"github.com/fastprodman/fairledger/internal/repos/cards"
)

var _ cards.Cards = (*cardsRepo)(nil)

type cardsRepo struct{ db *sql.DB }

func New(db *sql.DB) *cardsRepo {
	return &cardsRepo{db: db}
}
