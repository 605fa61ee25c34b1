// Package events publishes committed transaction records to downstream
// consumers. Publication happens after the ledger write and never affects it.
package events

import (
	"context"
	"time"

	"github.com/fastprodman/fairledger/internal/repos/transactions"
)

type Publisher interface {
	Publish(ctx context.Context, rec transactions.Record) error
}

// Message is the wire form of a published record.
type Message struct {
	ID          string    `json:"id"`
	CardID      string    `json:"card_id"`
	CardName    string    `json:"card_name"`
	Amount      string    `json:"amount"`
	Kind        string    `json:"kind"`
	ProcessedBy string    `json:"processed_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewMessage(rec transactions.Record) Message {
	return Message{
		ID:          rec.ID,
		CardID:      rec.CardID,
		CardName:    rec.CardName,
		Amount:      rec.Amount.StringFixed(2),
		Kind:        string(rec.Kind),
		ProcessedBy: rec.ProcessedBy,
		CreatedAt:   rec.CreatedAt.UTC(),
	}
}

// Nop drops every record.
type Nop struct{}

func (Nop) Publish(context.Context, transactions.Record) error { return nil }
