package items

import (
	"context"

	"github.com/shopspring/decimal"
)

// Item is a priced catalog entry owned by one booth.
type Item struct {
	ID        string
	BoothID   string
	Name      string
	UnitPrice decimal.Decimal
}

type Items interface {
	// ListByBooth returns the booth's catalog ordered by name. A booth
	// without items yields an empty slice.
	ListByBooth(ctx context.Context, boothID string) ([]Item, error)
}
