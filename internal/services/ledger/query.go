package ledger

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/fastprodman/fairledger/internal/repos/transactions"
)

// Query yields log records newest first. A non-blank filter keeps records
// whose holder name or kind contains it, ignoring case.
//
// The sequence is lazy and restartable: each range starts again from the
// newest record. It stops after the configured query limit. A read error is
// yielded once and ends the sequence.
func (e *Engine) Query(ctx context.Context, filter string) iter.Seq2[transactions.Record, error] {
	return e.scan(ctx, transactions.Query{Filter: strings.TrimSpace(filter)})
}

// CardTransactions is Query restricted to one card.
func (e *Engine) CardTransactions(ctx context.Context, cardID string) iter.Seq2[transactions.Record, error] {
	return e.scan(ctx, transactions.Query{CardID: cardID})
}

func (e *Engine) scan(ctx context.Context, base transactions.Query) iter.Seq2[transactions.Record, error] {
	return func(yield func(transactions.Record, error) bool) {
		q := base
		remaining := e.queryLimit

		for remaining > 0 {
			q.Limit = min(e.pageSize, remaining)

			page, err := e.log.Find(ctx, q)
			if err != nil {
				yield(transactions.Record{}, fmt.Errorf("find transactions: %w", err))
				return
			}

			for _, rec := range page {
				if !yield(rec, nil) {
					return
				}
			}

			remaining -= len(page)
			if len(page) < q.Limit {
				return
			}

			q.After = transactions.CursorOf(page[len(page)-1])
		}
	}
}
