package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrDuplicateTransaction = errors.New("duplicate transaction")

type Kind string

const (
	KindCredit Kind = "credit"
	KindDebit  Kind = "debit"
)

// Record is one immutable balance change. CardName is the holder name at the
// time of the change, not a live join.
type Record struct {
	ID          string
	CardID      string
	CardName    string
	Amount      decimal.Decimal
	Kind        Kind
	ProcessedBy string
	CreatedAt   time.Time
}

// Cursor is the keyset position of the last record already returned.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// CursorOf returns the keyset position of r.
func CursorOf(r Record) *Cursor {
	return &Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
}

// Query selects one page of records, newest first.
//
// Filter is matched case-insensitively as a literal substring against
// card_name or kind. CardID, when set, restricts the page to one card.
type Query struct {
	Filter string
	CardID string
	After  *Cursor
	Limit  int
}

type Transactions interface {
	Insert(ctx context.Context, rec Record) error
	Find(ctx context.Context, q Query) ([]Record, error)
}

// Before reports whether a sorts after b in newest-first order.
func Before(a, b Record) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}

	return a.ID > b.ID
}

// AfterCursor reports whether r comes strictly after c in newest-first order.
func AfterCursor(r Record, c *Cursor) bool {
	if c == nil {
		return true
	}
	if !r.CreatedAt.Equal(c.CreatedAt) {
		return r.CreatedAt.Before(c.CreatedAt)
	}

	return r.ID < c.ID
}
