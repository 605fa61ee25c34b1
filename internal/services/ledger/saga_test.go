package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/fastprodman/fairledger/internal/repos/transactions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebit_Compensation(t *testing.T) {
	t.Parallel()

	var (
		boothDown = errors.New("booth store down")
		cardDown  = errors.New("card store down")
		logDown   = errors.New("log down")
	)

	// Card writes: the first is the debit itself.
	cardsFailAfterFirst := func(call int) error {
		if call == 1 {
			return nil
		}
		return cardDown
	}
	// Booth writes: the first is the revenue increment.
	boothsFailAfterFirst := func(_ context.Context, call int) error {
		if call == 1 {
			return nil
		}
		return boothDown
	}
	boothsAlwaysFail := func(context.Context, int) error { return boothDown }

	tests := []struct {
		name        string
		cardErr     func(int) error
		boothErr    func(context.Context, int) error
		logErr      error
		wantCause   error
		wantFailed  bool
		wantBalance string
		wantRevenue string
	}{
		{
			name:        "booth_failure_restores_card",
			boothErr:    boothsAlwaysFail,
			wantCause:   boothDown,
			wantBalance: "50",
			wantRevenue: "0",
		},
		{
			name:        "booth_failure_card_restore_fails",
			cardErr:     cardsFailAfterFirst,
			boothErr:    boothsAlwaysFail,
			wantCause:   boothDown,
			wantFailed:  true,
			wantBalance: "20",
			wantRevenue: "0",
		},
		{
			name:        "log_failure_restores_booth_and_card",
			logErr:      logDown,
			wantCause:   logDown,
			wantBalance: "50",
			wantRevenue: "0",
		},
		{
			name:        "log_failure_booth_restore_fails",
			boothErr:    boothsFailAfterFirst,
			logErr:      logDown,
			wantCause:   logDown,
			wantFailed:  true,
			wantBalance: "50",
			wantRevenue: "30",
		},
		{
			name:        "log_failure_card_restore_fails",
			cardErr:     cardsFailAfterFirst,
			logErr:      logDown,
			wantCause:   logDown,
			wantFailed:  true,
			wantBalance: "20",
			wantRevenue: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			f.seedCard(t, "card-1", "Ana", "50.00")
			if tt.cardErr != nil {
				f.cards = &faultyCards{Cards: f.store, setErr: tt.cardErr}
			}
			if tt.boothErr != nil {
				f.booths = &faultyBooths{Booths: f.store, setErr: tt.boothErr}
			}
			if tt.logErr != nil {
				f.log = &faultyLog{Transactions: f.store, insertErr: tt.logErr}
			}
			e := f.engine()

			_, err := e.Debit(context.Background(), order("card-1", map[string]int{"pastel": 3}), boothX)
			require.ErrorIs(t, err, tt.wantCause)

			var cerr *CompensationError
			if tt.wantFailed {
				require.ErrorIs(t, err, ErrCompensationFailed)
				require.ErrorAs(t, err, &cerr)
				assert.Equal(t, "debit", cerr.Op)
				assert.Equal(t, "booth-x", cerr.BoothID)
				assert.True(t, dec("30").Equal(cerr.Amount))
			} else {
				assert.NotErrorIs(t, err, ErrCompensationFailed)
				assert.False(t, errors.As(err, &cerr))
			}

			assert.True(t, dec(tt.wantBalance).Equal(f.balance(t, "card-1")), "balance %s", f.balance(t, "card-1"))
			assert.True(t, dec(tt.wantRevenue).Equal(f.revenue(t, "booth-x")), "revenue %s", f.revenue(t, "booth-x"))
			assert.Empty(t, f.records(t, "card-1", transactions.KindDebit))
			assert.Empty(t, f.events.published())
		})
	}
}

func TestCompensate_RetriesOnce(t *testing.T) {
	t.Parallel()

	flake := errors.New("transient")

	f := newFixture()
	f.seedCard(t, "card-1", "Ana", "50.00")
	faulty := &faultyCards{Cards: f.store, setErr: func(call int) error {
		// debit, failed restore, successful retry
		if call == 2 {
			return flake
		}
		return nil
	}}
	f.cards = faulty
	f.booths = &faultyBooths{Booths: f.store, setErr: func(context.Context, int) error {
		return errors.New("booth store down")
	}}
	e := f.engine()

	_, err := e.Debit(context.Background(), order("card-1", map[string]int{"pastel": 1}), boothX)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCompensationFailed)
	assert.Equal(t, 3, faulty.calls)
	assert.True(t, dec("50").Equal(f.balance(t, "card-1")))
}

func TestSagaState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pending", statePending.String())
	assert.Equal(t, "balance-applied", stateBalanceApplied.String())
	assert.Equal(t, "fully-applied", stateFullyApplied.String())
	assert.Equal(t, "compensated", stateCompensated.String())
	assert.Equal(t, "sagaState(9)", sagaState(9).String())
}

func TestCompensationError(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	inner := errors.New("inner")

	err := error(&CompensationError{Op: "debit", CardID: "c1", Cause: cause, Err: inner})

	assert.ErrorIs(t, err, ErrCompensationFailed)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "debit card c1: cause; compensation failed: inner", err.Error())
}
