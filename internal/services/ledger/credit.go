package ledger

import (
	"context"
	"fmt"

	"github.com/fastprodman/fairledger/internal/repos/cards"
	"github.com/fastprodman/fairledger/internal/repos/transactions"
	"github.com/shopspring/decimal"
)

type CreditResult struct {
	Balance decimal.Decimal
}

// Credit adds amount to the card and appends a credit record.
//
// The balance write and the record are two writes; if the record cannot be
// appended the balance write is compensated.
func (e *Engine) Credit(ctx context.Context, cardID string, amount decimal.Decimal, op Operator) (CreditResult, error) {
	if !validAmount(amount) {
		return CreditResult{}, fmt.Errorf("credit %s: %w", amount, ErrInvalidAmount)
	}

	err := validOperator(op)
	if err != nil {
		return CreditResult{}, err
	}

	unlock, err := e.lockCard(ctx, cardID)
	if err != nil {
		return CreditResult{}, err
	}
	defer unlock()

	_, err = e.cards.GetCard(ctx, cardID)
	if err != nil {
		return CreditResult{}, fmt.Errorf("get card: %w", err)
	}

	err = ctx.Err()
	if err != nil {
		return CreditResult{}, err
	}

	wctx, cancel := e.detach(ctx)
	defer cancel()

	s := &saga{op: "credit", cardID: cardID, amount: amount, cardDelta: amount}

	card, err := e.updateCard(wctx, cardID, func(c cards.Card) (decimal.Decimal, error) {
		return c.Balance.Add(amount), nil
	})
	if err != nil {
		return CreditResult{}, fmt.Errorf("credit card: %w", err)
	}
	s.state = stateBalanceApplied

	rec := e.record(op, card, amount, transactions.KindCredit)

	err = e.log.Insert(wctx, rec)
	if err != nil {
		return CreditResult{}, e.compensate(wctx, s, fmt.Errorf("append credit record: %w", err))
	}

	// committed; release the card before publishing
	unlock()
	e.publish(wctx, rec)

	return CreditResult{Balance: card.Balance}, nil
}
