package ledger

import (
	"context"
	"fmt"

	"github.com/fastprodman/fairledger/internal/repos/booths"
	"github.com/fastprodman/fairledger/internal/repos/cards"
	"github.com/fastprodman/fairledger/internal/repos/transactions"
	"github.com/shopspring/decimal"
)

// DebitRequest is a booth purchase: item id -> quantity, priced against the
// booth's own catalog.
type DebitRequest struct {
	CardID  string
	BoothID string
	Lines   map[string]int
}

type DebitResult struct {
	Balance decimal.Decimal
	Total   decimal.Decimal
}

// Debit charges the card for the order, adds the total to the booth's
// revenue and appends a debit record.
//
// Checks run in order and the first failure wins: card exists, booth
// exists, order prices to a positive total, balance covers the total.
// A rejected debit changes nothing.
func (e *Engine) Debit(ctx context.Context, req DebitRequest, op Operator) (DebitResult, error) {
	err := validOperator(op)
	if err != nil {
		return DebitResult{}, err
	}

	unlock, err := e.lockCard(ctx, req.CardID)
	if err != nil {
		return DebitResult{}, err
	}
	defer unlock()

	card, err := e.cards.GetCard(ctx, req.CardID)
	if err != nil {
		return DebitResult{}, fmt.Errorf("get card: %w", err)
	}

	booth, err := e.booths.GetBooth(ctx, req.BoothID)
	if err != nil {
		return DebitResult{}, fmt.Errorf("get booth: %w", err)
	}

	total, err := e.pricer.Total(ctx, booth.ID, req.Lines)
	if err != nil {
		return DebitResult{}, fmt.Errorf("price order: %w", err)
	}
	if !total.IsPositive() {
		return DebitResult{}, fmt.Errorf("order total %s: %w", total.StringFixed(2), ErrInvalidAmount)
	}

	if card.Balance.LessThan(total) {
		return DebitResult{}, fmt.Errorf("card %s holds %s, order needs %s: %w",
			card.ID, card.Balance.StringFixed(2), total.StringFixed(2), ErrInsufficientBalance)
	}

	err = ctx.Err()
	if err != nil {
		return DebitResult{}, err
	}

	wctx, cancel := e.detach(ctx)
	defer cancel()

	s := &saga{op: "debit", cardID: card.ID, boothID: booth.ID, amount: total, cardDelta: total.Neg()}

	card, err = e.updateCard(wctx, card.ID, func(c cards.Card) (decimal.Decimal, error) {
		if c.Balance.LessThan(total) {
			return decimal.Zero, fmt.Errorf("card %s holds %s, order needs %s: %w",
				c.ID, c.Balance.StringFixed(2), total.StringFixed(2), ErrInsufficientBalance)
		}
		return c.Balance.Sub(total), nil
	})
	if err != nil {
		return DebitResult{}, fmt.Errorf("debit card: %w", err)
	}
	s.state = stateBalanceApplied

	_, err = e.updateBooth(wctx, booth.ID, func(b booths.Booth) (decimal.Decimal, error) {
		return b.Revenue.Add(total), nil
	})
	if err != nil {
		return DebitResult{}, e.compensate(wctx, s, fmt.Errorf("add booth revenue: %w", err))
	}
	s.state = stateFullyApplied

	rec := e.record(op, card, total, transactions.KindDebit)

	err = e.log.Insert(wctx, rec)
	if err != nil {
		return DebitResult{}, e.compensate(wctx, s, fmt.Errorf("append debit record: %w", err))
	}

	// committed; release the card before publishing
	unlock()
	e.publish(wctx, rec)

	return DebitResult{Balance: card.Balance, Total: total}, nil
}
