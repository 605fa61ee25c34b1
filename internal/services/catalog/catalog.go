package catalog

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/fastprodman/fairledger/internal/repos/items"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownItem     = errors.New("item not in booth catalog")
	ErrInvalidQuantity = errors.New("invalid item quantity")
)

type Service struct {
	items items.Items
}

func New(repo items.Items) *Service {
	return &Service{items: repo}
}

// Items lists a booth's catalog ordered by name.
func (s *Service) Items(ctx context.Context, boothID string) ([]items.Item, error) {
	list, err := s.items.ListByBooth(ctx, boothID)
	if err != nil {
		return nil, fmt.Errorf("list booth items: %w", err)
	}

	return list, nil
}

// Total prices lines (item id -> quantity) against boothID's catalog.
// Quantities are checked before catalog membership, each pass in item id
// order. Every line must name an item of the booth, even with quantity zero;
// zero lines then add nothing, so an order of only zeros totals zero.
func (s *Service) Total(ctx context.Context, boothID string, lines map[string]int) (decimal.Decimal, error) {
	ids := slices.Sorted(maps.Keys(lines))

	for _, itemID := range ids {
		qty := lines[itemID]
		if qty < 0 {
			return decimal.Zero, fmt.Errorf("item %s quantity %d: %w", itemID, qty, ErrInvalidQuantity)
		}
	}

	list, err := s.Items(ctx, boothID)
	if err != nil {
		return decimal.Zero, err
	}

	prices := make(map[string]decimal.Decimal, len(list))
	for _, it := range list {
		prices[it.ID] = it.UnitPrice
	}

	total := decimal.Zero
	for _, itemID := range ids {
		price, ok := prices[itemID]
		if !ok {
			return decimal.Zero, fmt.Errorf("item %s at booth %s: %w", itemID, boothID, ErrUnknownItem)
		}

		total = total.Add(price.Mul(decimal.NewFromInt(int64(lines[itemID]))))
	}

	return total, nil
}
