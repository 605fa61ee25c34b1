package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/fastprodman/fairledger/internal/repos/cards"
	"github.com/fastprodman/fairledger/internal/repos/transactions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredit_FreshCard(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedCard(t, "card-1", "Ana", "0")
	e := f.engine()

	res, err := e.Credit(context.Background(), "card-1", dec("100.00"), cashier)
	require.NoError(t, err)

	assert.True(t, dec("100").Equal(res.Balance), "got %s", res.Balance)
	assert.True(t, dec("100").Equal(f.balance(t, "card-1")))

	credits := f.records(t, "card-1", transactions.KindCredit)
	// the seeded issuing record plus the new one
	require.Len(t, credits, 2)
	assert.True(t, dec("100").Equal(credits[0].Amount))
	assert.Equal(t, "cashier", credits[0].ProcessedBy)
	assert.Equal(t, "Ana", credits[0].CardName)

	published := f.events.published()
	require.Len(t, published, 1)
	assert.Equal(t, credits[0].ID, published[0].ID)
}

func TestCredit_Rejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cardID  string
		amount  string
		op      Operator
		wantErr error
	}{
		{name: "zero", cardID: "card-1", amount: "0", op: cashier, wantErr: ErrInvalidAmount},
		{name: "negative", cardID: "card-1", amount: "-5.00", op: cashier, wantErr: ErrInvalidAmount},
		{name: "sub_cent", cardID: "card-1", amount: "1.005", op: cashier, wantErr: ErrInvalidAmount},
		{name: "no_operator", cardID: "card-1", amount: "5.00", op: Operator{}, wantErr: ErrInvalidOperator},
		{name: "unknown_card", cardID: "nope", amount: "5.00", op: cashier, wantErr: cards.ErrCardNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			f.seedCard(t, "card-1", "Ana", "20.00")
			e := f.engine()

			_, err := e.Credit(context.Background(), tt.cardID, dec(tt.amount), tt.op)
			require.ErrorIs(t, err, tt.wantErr)

			assert.True(t, dec("20").Equal(f.balance(t, "card-1")))
			assert.Len(t, f.records(t, "card-1", transactions.KindCredit), 1)
			assert.Empty(t, f.events.published())
		})
	}
}

func TestCredit_SmallestUnitAccepted(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedCard(t, "card-1", "Ana", "0")
	e := f.engine()

	res, err := e.Credit(context.Background(), "card-1", dec("0.01"), cashier)
	require.NoError(t, err)
	assert.True(t, dec("0.01").Equal(res.Balance))
}

func TestCredit_LogFailureCompensatesBalance(t *testing.T) {
	t.Parallel()

	boom := errors.New("log unavailable")

	f := newFixture()
	f.seedCard(t, "card-1", "Ana", "20.00")
	f.log = &faultyLog{Transactions: f.store, insertErr: boom}
	e := f.engine()

	_, err := e.Credit(context.Background(), "card-1", dec("5.00"), cashier)
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrCompensationFailed)

	assert.True(t, dec("20").Equal(f.balance(t, "card-1")))
	assert.Len(t, f.records(t, "card-1", transactions.KindCredit), 1)
	assert.Empty(t, f.events.published())
}

func TestCredit_UncompensableLogFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("log unavailable")
	down := errors.New("cards unavailable")

	f := newFixture()
	f.seedCard(t, "card-1", "Ana", "20.00")
	f.log = &faultyLog{Transactions: f.store, insertErr: boom}
	f.cards = &faultyCards{Cards: f.store, setErr: func(call int) error {
		if call == 1 {
			return nil
		}
		return down
	}}
	e := f.engine()

	_, err := e.Credit(context.Background(), "card-1", dec("5.00"), cashier)
	require.ErrorIs(t, err, ErrCompensationFailed)

	var cerr *CompensationError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "credit", cerr.Op)
	assert.Equal(t, "card-1", cerr.CardID)
	assert.ErrorIs(t, cerr.Cause, boom)
	assert.ErrorIs(t, cerr.Err, down)

	// the balance write stays applied and needs reconciliation
	assert.True(t, dec("25").Equal(f.balance(t, "card-1")))
	assert.Len(t, f.records(t, "card-1", transactions.KindCredit), 1)
}

func TestCredit_PublishFailureIsNotSurfaced(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedCard(t, "card-1", "Ana", "0")
	f.events.err = errors.New("broker down")
	e := f.engine()

	res, err := e.Credit(context.Background(), "card-1", dec("7.50"), cashier)
	require.NoError(t, err)
	assert.True(t, dec("7.5").Equal(res.Balance))
	assert.Len(t, f.events.published(), 1)
}
