package cards

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fastprodman/fairledger/internal/repos/cards"
	"github.com/fastprodman/fairledger/internal/repos/transactions"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCards_IssueCard(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 20, 17, 0, 0, 0, time.UTC)
	card := cards.Card{ID: "card-1", HolderName: "Ana", Balance: decimal.NewFromInt(100), Version: 1, CreatedAt: now}
	rec := transactions.Record{
		ID: "tx-1", CardID: "card-1", CardName: "Ana", Amount: decimal.NewFromInt(100),
		Kind: transactions.KindCredit, ProcessedBy: "cashier", CreatedAt: now,
	}

	tests := []struct {
		name    string
		expect  func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "card_and_record_committed_together",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO cards").
					WithArgs("card-1", "Ana", card.Balance, int64(1), now).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("INSERT INTO transactions").
					WithArgs("tx-1", "card-1", "Ana", rec.Amount, "credit", "cashier", now).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "duplicate_card_rolls_back",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO cards").WillReturnError(&pgconn.PgError{Code: "23505"})
				mock.ExpectRollback()
			},
			wantErr: cards.ErrDuplicateCard,
		},
		{
			name: "record_failure_rolls_back_card",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO cards").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("INSERT INTO transactions").WillReturnError(&pgconn.PgError{Code: "23505"})
				mock.ExpectRollback()
			},
			wantErr: transactions.ErrDuplicateTransaction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.expect(mock)

			err = New(db).IssueCard(t.Context(), card, rec)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
