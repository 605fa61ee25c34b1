package ledger

import (
	"context"
	"testing"

	"github.com/fastprodman/fairledger/internal/repos/cards"
	"github.com/fastprodman/fairledger/internal/repos/transactions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueCard(t *testing.T) {
	t.Parallel()

	f := newFixture()
	e := f.engine()

	card, err := e.IssueCard(context.Background(), "  Maria Silva ", dec("40.00"), cashier)
	require.NoError(t, err)

	assert.NotEmpty(t, card.ID)
	assert.Equal(t, "Maria Silva", card.HolderName)
	assert.Equal(t, int64(1), card.Version)

	stored, err := f.store.GetCard(context.Background(), card.ID)
	require.NoError(t, err)
	assert.True(t, dec("40").Equal(stored.Balance))

	credits := f.records(t, card.ID, transactions.KindCredit)
	require.Len(t, credits, 1)
	assert.True(t, dec("40").Equal(credits[0].Amount))
	assert.Equal(t, "cashier", credits[0].ProcessedBy)
	assert.Equal(t, "Maria Silva", credits[0].CardName)
	assert.Equal(t, card.CreatedAt, credits[0].CreatedAt)

	require.Len(t, f.events.published(), 1)
}

func TestIssueCard_Rejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		holder  string
		credit  string
		op      Operator
		wantErr error
	}{
		{name: "blank_holder", holder: "   ", credit: "10.00", op: cashier, wantErr: ErrInvalidHolderName},
		{name: "zero_credit", holder: "Ana", credit: "0", op: cashier, wantErr: ErrInvalidAmount},
		{name: "negative_credit", holder: "Ana", credit: "-1", op: cashier, wantErr: ErrInvalidAmount},
		{name: "three_decimals", holder: "Ana", credit: "0.001", op: cashier, wantErr: ErrInvalidAmount},
		{name: "no_operator", holder: "Ana", credit: "10.00", op: Operator{Role: RoleCashier}, wantErr: ErrInvalidOperator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture()
			e := f.engine()

			_, err := e.IssueCard(context.Background(), tt.holder, dec(tt.credit), tt.op)
			require.ErrorIs(t, err, tt.wantErr)

			all, err := f.store.Find(context.Background(), transactions.Query{})
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestIssueCard_DuplicateID(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.seedCard(t, "fixed", "Ana", "5.00")
	e := f.engine(WithIDGenerator(func() string { return "fixed" }))

	_, err := e.IssueCard(context.Background(), "Bia", dec("5.00"), cashier)
	require.ErrorIs(t, err, cards.ErrDuplicateCard)
}
