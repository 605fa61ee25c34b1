package transactions

import (
	"context"
	"fmt"
	"strings"

	"github.com/fastprodman/fairledger/internal/repos/transactions"
)

const defaultLimit = 50

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *transactionsRepo) Find(ctx context.Context, q transactions.Query) ([]transactions.Record, error) {
	var (
		where []string
		args  []any
	)

	if q.CardID != "" {
		args = append(args, q.CardID)
		where = append(where, fmt.Sprintf("card_id = $%d", len(args)))
	}

	if q.Filter != "" {
		args = append(args, "%"+likeEscaper.Replace(q.Filter)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(`(card_name ILIKE $%d ESCAPE '\' OR kind ILIKE $%d ESCAPE '\')`, n, n))
	}

	if q.After != nil {
		args = append(args, q.After.CreatedAt, q.After.ID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	args = append(args, limit)

	var sb strings.Builder
	sb.WriteString(`
		SELECT id, card_id, card_name, amount, kind, processed_by, created_at
		FROM transactions`)
	if len(where) > 0 {
		sb.WriteString("\n\t\tWHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	fmt.Fprintf(&sb, "\n\t\tORDER BY created_at DESC, id DESC\n\t\tLIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]transactions.Record, 0, limit)
	for rows.Next() {
		var (
			rec  transactions.Record
			kind string
		)

		err = rows.Scan(&rec.ID, &rec.CardID, &rec.CardName, &rec.Amount, &kind, &rec.ProcessedBy, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}

		rec.Kind = transactions.Kind(kind)
		out = append(out, rec)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return out, nil
}
