package cards

import (
	"context"
	"errors"
	"time"

	"github.com/fastprodman/fairledger/internal/repos/transactions"
	"github.com/shopspring/decimal"
)

var (
	ErrCardNotFound    = errors.New("card not found")
	ErrDuplicateCard   = errors.New("duplicate card")
	ErrVersionConflict = errors.New("card version conflict")
)

// Card is a prepaid stored-value card. Version increases on every balance
// write and is the compare-and-swap token for SetCardBalance.
type Card struct {
	ID         string
	HolderName string
	Balance    decimal.Decimal
	Version    int64
	CreatedAt  time.Time
}

type Cards interface {
	GetCard(ctx context.Context, id string) (Card, error)
	// SetCardBalance stores balance only if the card is still at
	// expectedVersion and returns the new version.
	SetCardBalance(ctx context.Context, id string, balance decimal.Decimal, expectedVersion int64) (int64, error)
	// IssueCard stores a new card together with the record of its initial credit.
	IssueCard(ctx context.Context, card Card, issue transactions.Record) error
}
