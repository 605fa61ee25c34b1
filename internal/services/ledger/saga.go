package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastprodman/fairledger/internal/repos/booths"
	"github.com/fastprodman/fairledger/internal/repos/cards"
	"github.com/shopspring/decimal"
)

type sagaState int

const (
	statePending sagaState = iota
	stateBalanceApplied
	stateFullyApplied
	stateCompensated
)

func (s sagaState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateBalanceApplied:
		return "balance-applied"
	case stateFullyApplied:
		return "fully-applied"
	case stateCompensated:
		return "compensated"
	default:
		return fmt.Sprintf("sagaState(%d)", int(s))
	}
}

// saga tracks which writes of one operation have landed.
type saga struct {
	op      string
	cardID  string
	boothID string // empty for credits
	amount  decimal.Decimal
	// cardDelta is what was added to the card balance.
	cardDelta decimal.Decimal
	state     sagaState
}

// compensate undoes the writes recorded in s, newest first, giving each
// compensating write one retry. It returns cause when everything was undone
// and a *CompensationError otherwise.
func (e *Engine) compensate(ctx context.Context, s *saga, cause error) error {
	var errs []error

	if s.state == stateFullyApplied && s.boothID != "" {
		err := e.retryOnce(ctx, "booth revenue", func(ctx context.Context) error {
			_, err := e.updateBooth(ctx, s.boothID, func(b booths.Booth) (decimal.Decimal, error) {
				return b.Revenue.Sub(s.amount), nil
			})
			return err
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("restore booth %s revenue: %w", s.boothID, err))
		}
	}

	if s.state >= stateBalanceApplied {
		err := e.retryOnce(ctx, "card balance", func(ctx context.Context) error {
			_, err := e.updateCard(ctx, s.cardID, func(c cards.Card) (decimal.Decimal, error) {
				restored := c.Balance.Sub(s.cardDelta)
				if restored.IsNegative() {
					return decimal.Zero, fmt.Errorf("restored balance %s is negative", restored.StringFixed(2))
				}
				return restored, nil
			})
			return err
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("restore card %s balance: %w", s.cardID, err))
		}
	}

	if len(errs) > 0 {
		cerr := &CompensationError{
			Op:      s.op,
			CardID:  s.cardID,
			BoothID: s.boothID,
			Amount:  s.amount,
			Cause:   cause,
			Err:     errors.Join(errs...),
		}

		e.logger.Error("ledger compensation failed",
			"op", s.op,
			"card_id", s.cardID,
			"booth_id", s.boothID,
			"amount", s.amount.StringFixed(2),
			"state", s.state.String(),
			"cause", cause,
			"error", cerr.Err,
			"needs_reconciliation", true,
		)

		return cerr
	}

	from := s.state
	s.state = stateCompensated

	e.logger.Warn("ledger write compensated",
		"op", s.op,
		"card_id", s.cardID,
		"booth_id", s.boothID,
		"amount", s.amount.StringFixed(2),
		"from_state", from.String(),
		"cause", cause,
	)

	return cause
}

// retryOnce runs a compensating write, and runs it again if it fails. Each
// attempt gets its own timeout so a first attempt that timed out does not
// starve the retry.
func (e *Engine) retryOnce(ctx context.Context, what string, fn func(context.Context) error) error {
	attempt := func() error {
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.writeTimeout)
		defer cancel()

		return fn(actx)
	}

	err := attempt()
	if err == nil {
		return nil
	}

	e.logger.Warn("compensating write failed, retrying", "write", what, "error", err)

	return attempt()
}
