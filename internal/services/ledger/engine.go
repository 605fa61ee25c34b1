// Package ledger applies credits and debits to prepaid cards and keeps the
// append-only transaction log.
//
// Every balance write is a compare-and-swap on the card's version, made
// while holding the card's lock. A debit touches two records (the card and
// the booth's revenue) and then the log; when a later step fails the earlier
// ones are compensated before the error is returned.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fastprodman/fairledger/internal/infra/events"
	"github.com/fastprodman/fairledger/internal/infra/lock"
	"github.com/fastprodman/fairledger/internal/repos/booths"
	"github.com/fastprodman/fairledger/internal/repos/cards"
	"github.com/fastprodman/fairledger/internal/repos/transactions"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCashier Role = "cashier"
	RoleBooth   Role = "booth"
)

// Operator is the authenticated caller on whose behalf a write is made.
// ID ends up in TransactionRecord.ProcessedBy.
type Operator struct {
	ID   string
	Role Role
}

// Pricer computes the total of a booth order.
type Pricer interface {
	Total(ctx context.Context, boothID string, lines map[string]int) (decimal.Decimal, error)
}

type Engine struct {
	cards  cards.Cards
	booths booths.Booths
	log    transactions.Transactions
	pricer Pricer
	locker lock.Locker
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	maxRetries   int
	pageSize     int
	queryLimit   int
	writeTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

func WithLocker(l lock.Locker) Option {
	return func(e *Engine) { e.locker = l }
}

func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.events = p }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithMaxRetries bounds how many times a version conflict is retried.
func WithMaxRetries(n int) Option {
	return func(e *Engine) { e.maxRetries = max(1, n) }
}

// WithQueryLimits sets the page size used against the log and the cap on
// records a single query yields.
func WithQueryLimits(pageSize, limit int) Option {
	return func(e *Engine) {
		e.pageSize = max(1, pageSize)
		e.queryLimit = max(1, limit)
	}
}

// WithWriteTimeout bounds the detached write phase, compensation included.
func WithWriteTimeout(d time.Duration) Option {
	return func(e *Engine) { e.writeTimeout = d }
}

func New(c cards.Cards, b booths.Booths, log transactions.Transactions, pricer Pricer, opts ...Option) *Engine {
	e := &Engine{
		cards:        c,
		booths:       b,
		log:          log,
		pricer:       pricer,
		locker:       lock.NewLocal(),
		events:       events.Nop{},
		logger:       slog.Default(),
		now:          time.Now,
		newID:        uuid.NewString,
		maxRetries:   5,
		pageSize:     20,
		queryLimit:   50,
		writeTimeout: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Card returns the card as currently stored. It takes no lock.
func (e *Engine) Card(ctx context.Context, id string) (cards.Card, error) {
	card, err := e.cards.GetCard(ctx, id)
	if err != nil {
		return cards.Card{}, fmt.Errorf("get card: %w", err)
	}

	return card, nil
}

// Booth returns the booth as currently stored. It takes no lock.
func (e *Engine) Booth(ctx context.Context, id string) (booths.Booth, error) {
	booth, err := e.booths.GetBooth(ctx, id)
	if err != nil {
		return booths.Booth{}, fmt.Errorf("get booth: %w", err)
	}

	return booth, nil
}
