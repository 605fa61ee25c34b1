package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/fastprodman/fairledger/internal/repos/cards"
	"github.com/fastprodman/fairledger/internal/repos/transactions"
	"github.com/shopspring/decimal"
)

// IssueCard creates a card for holderName loaded with initialCredit. The card
// and its credit record are stored together or not at all.
func (e *Engine) IssueCard(ctx context.Context, holderName string, initialCredit decimal.Decimal, op Operator) (cards.Card, error) {
	holderName = strings.TrimSpace(holderName)
	if holderName == "" {
		return cards.Card{}, ErrInvalidHolderName
	}

	if !validAmount(initialCredit) {
		return cards.Card{}, fmt.Errorf("initial credit %s: %w", initialCredit, ErrInvalidAmount)
	}

	err := validOperator(op)
	if err != nil {
		return cards.Card{}, err
	}

	card := cards.Card{
		ID:         e.newID(),
		HolderName: holderName,
		Balance:    initialCredit,
		Version:    1,
		CreatedAt:  e.now(),
	}

	rec := e.record(op, card, initialCredit, transactions.KindCredit)
	rec.CreatedAt = card.CreatedAt

	err = e.cards.IssueCard(ctx, card, rec)
	if err != nil {
		return cards.Card{}, fmt.Errorf("issue card: %w", err)
	}

	e.logger.Info("card issued", "card_id", card.ID, "amount", initialCredit.StringFixed(2), "processed_by", op.ID)
	e.publish(ctx, rec)

	return card, nil
}
