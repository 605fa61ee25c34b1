// Package memory keeps cards, booths, catalog items and the transaction log
// in process memory. It honors the same contracts as the Postgres
// repositories and backs tests and local runs.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/fastprodman/fairledger/internal/repos/booths"
	"github.com/fastprodman/fairledger/internal/repos/cards"
	"github.com/fastprodman/fairledger/internal/repos/items"
	"github.com/fastprodman/fairledger/internal/repos/transactions"
	"github.com/shopspring/decimal"
)

var (
	_ cards.Cards               = (*Store)(nil)
	_ booths.Booths             = (*Store)(nil)
	_ items.Items               = (*Store)(nil)
	_ transactions.Transactions = (*Store)(nil)
)

const defaultLimit = 50

type Store struct {
	mu sync.RWMutex

	cards   map[string]cards.Card
	booths  map[string]booths.Booth
	items   map[string][]items.Item // by booth id
	records []transactions.Record   // append order
	txIDs   map[string]struct{}
}

func New() *Store {
	return &Store{
		cards:  make(map[string]cards.Card),
		booths: make(map[string]booths.Booth),
		items:  make(map[string][]items.Item),
		txIDs:  make(map[string]struct{}),
	}
}

// PutBooth registers or replaces a booth. Booths are created out of band.
func (s *Store) PutBooth(b booths.Booth) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.Version == 0 {
		b.Version = 1
	}
	s.booths[b.ID] = b
}

// PutItem adds a catalog item to its booth.
func (s *Store) PutItem(it items.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[it.BoothID] = append(s.items[it.BoothID], it)
}

// Card store

func (s *Store) GetCard(_ context.Context, id string) (cards.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cards[id]
	if !ok {
		return cards.Card{}, cards.ErrCardNotFound
	}
	return c, nil
}

func (s *Store) SetCardBalance(_ context.Context, id string, balance decimal.Decimal, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cards[id]
	if !ok {
		return 0, cards.ErrCardNotFound
	}
	if c.Version != expectedVersion {
		return 0, cards.ErrVersionConflict
	}

	c.Balance = balance
	c.Version++
	s.cards[id] = c
	return c.Version, nil
}

func (s *Store) IssueCard(_ context.Context, card cards.Card, issue transactions.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cards[card.ID]; exists {
		return cards.ErrDuplicateCard
	}
	if _, exists := s.txIDs[issue.ID]; exists {
		return transactions.ErrDuplicateTransaction
	}

	if card.Version == 0 {
		card.Version = 1
	}
	s.cards[card.ID] = card
	s.appendLocked(issue)
	return nil
}

// Booth store

func (s *Store) GetBooth(_ context.Context, id string) (booths.Booth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.booths[id]
	if !ok {
		return booths.Booth{}, booths.ErrBoothNotFound
	}
	return b, nil
}

func (s *Store) GetBoothByUsername(_ context.Context, username string) (booths.Booth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.booths {
		if b.Username == username {
			return b, nil
		}
	}
	return booths.Booth{}, booths.ErrBoothNotFound
}

func (s *Store) SetBoothRevenue(_ context.Context, id string, revenue decimal.Decimal, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.booths[id]
	if !ok {
		return 0, booths.ErrBoothNotFound
	}
	if b.Version != expectedVersion {
		return 0, booths.ErrVersionConflict
	}

	b.Revenue = revenue
	b.Version++
	s.booths[id] = b
	return b.Version, nil
}

// Catalog

func (s *Store) ListByBooth(_ context.Context, boothID string) ([]items.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := slices.Clone(s.items[boothID])
	if out == nil {
		out = []items.Item{}
	}
	slices.SortFunc(out, func(a, b items.Item) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Transaction log

func (s *Store) Insert(_ context.Context, rec transactions.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.txIDs[rec.ID]; exists {
		return transactions.ErrDuplicateTransaction
	}
	if _, ok := s.cards[rec.CardID]; !ok {
		return cards.ErrCardNotFound
	}

	s.appendLocked(rec)
	return nil
}

func (s *Store) appendLocked(rec transactions.Record) {
	s.txIDs[rec.ID] = struct{}{}
	s.records = append(s.records, rec)
}

func (s *Store) Find(_ context.Context, q transactions.Query) ([]transactions.Record, error) {
	s.mu.RLock()
	matched := make([]transactions.Record, 0)
	needle := strings.ToLower(q.Filter)
	for _, r := range s.records {
		if q.CardID != "" && r.CardID != q.CardID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(r.CardName), needle) &&
			!strings.Contains(string(r.Kind), needle) {
			continue
		}
		if !transactions.AfterCursor(r, q.After) {
			continue
		}
		matched = append(matched, r)
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b transactions.Record) int {
		switch {
		case transactions.Before(a, b):
			return -1
		case transactions.Before(b, a):
			return 1
		}
		return 0
	})

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}
