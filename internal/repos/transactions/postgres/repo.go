package transactions

import (
	"context"
	"database/sql"

	"github.com/fastprodman/fairledger/internal/repos/transactions"
)

var _ transactions.Transactions = (*transactionsRepo)(nil)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type transactionsRepo struct{ db *sql.DB }

func New(db *sql.DB) *transactionsRepo {
	return &transactionsRepo{db: db}
}
