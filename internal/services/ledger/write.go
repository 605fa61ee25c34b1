package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fastprodman/fairledger/internal/infra/lock"
	"github.com/fastprodman/fairledger/internal/repos/booths"
	"github.com/fastprodman/fairledger/internal/repos/cards"
	"github.com/fastprodman/fairledger/internal/repos/transactions"
	"github.com/shopspring/decimal"
)

// validAmount accepts strictly positive amounts with at most two decimals.
func validAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Truncate(2))
}

func validOperator(op Operator) error {
	if strings.TrimSpace(op.ID) == "" {
		return ErrInvalidOperator
	}

	return nil
}

func (e *Engine) lockCard(ctx context.Context, id string) (lock.Unlock, error) {
	unlock, err := e.locker.Lock(ctx, "card:"+id)
	if err != nil {
		return nil, fmt.Errorf("lock card %s: %w", id, err)
	}

	return unlock, nil
}

// detach returns the context for the write phase. Once the first write is
// issued the operation runs to completion or compensation regardless of the
// caller going away.
func (e *Engine) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), e.writeTimeout)
}

// updateCard re-reads the card and stores the balance computed by next,
// retrying on version conflicts.
func (e *Engine) updateCard(ctx context.Context, id string, next func(cards.Card) (decimal.Decimal, error)) (cards.Card, error) {
	for attempt := 1; ; attempt++ {
		card, err := e.cards.GetCard(ctx, id)
		if err != nil {
			return cards.Card{}, fmt.Errorf("get card: %w", err)
		}

		balance, err := next(card)
		if err != nil {
			return cards.Card{}, err
		}

		version, err := e.cards.SetCardBalance(ctx, id, balance, card.Version)
		if err == nil {
			card.Balance = balance
			card.Version = version
			return card, nil
		}

		if !errors.Is(err, cards.ErrVersionConflict) {
			return cards.Card{}, fmt.Errorf("set card balance: %w", err)
		}
		if attempt >= e.maxRetries {
			return cards.Card{}, fmt.Errorf("card %s after %d attempts: %w", id, attempt, ErrConflict)
		}

		e.logger.Debug("card version conflict, retrying", "card_id", id, "attempt", attempt)
	}
}

// updateBooth is updateCard for booth revenue.
func (e *Engine) updateBooth(ctx context.Context, id string, next func(booths.Booth) (decimal.Decimal, error)) (booths.Booth, error) {
	for attempt := 1; ; attempt++ {
		booth, err := e.booths.GetBooth(ctx, id)
		if err != nil {
			return booths.Booth{}, fmt.Errorf("get booth: %w", err)
		}

		revenue, err := next(booth)
		if err != nil {
			return booths.Booth{}, err
		}

		version, err := e.booths.SetBoothRevenue(ctx, id, revenue, booth.Version)
		if err == nil {
			booth.Revenue = revenue
			booth.Version = version
			return booth, nil
		}

		if !errors.Is(err, booths.ErrVersionConflict) {
			return booths.Booth{}, fmt.Errorf("set booth revenue: %w", err)
		}
		if attempt >= e.maxRetries {
			return booths.Booth{}, fmt.Errorf("booth %s after %d attempts: %w", id, attempt, ErrConflict)
		}

		e.logger.Debug("booth version conflict, retrying", "booth_id", id, "attempt", attempt)
	}
}

func (e *Engine) record(op Operator, card cards.Card, amount decimal.Decimal, kind transactions.Kind) transactions.Record {
	return transactions.Record{
		ID:          e.newID(),
		CardID:      card.ID,
		CardName:    card.HolderName,
		Amount:      amount,
		Kind:        kind,
		ProcessedBy: op.ID,
		CreatedAt:   e.now(),
	}
}

func (e *Engine) publish(ctx context.Context, rec transactions.Record) {
	err := e.events.Publish(ctx, rec)
	if err != nil {
		e.logger.Warn("publish transaction record", "tx_id", rec.ID, "card_id", rec.CardID, "error", err)
	}
}
