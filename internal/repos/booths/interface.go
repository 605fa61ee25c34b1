package booths

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrBoothNotFound   = errors.New("booth not found")
	ErrVersionConflict = errors.New("booth version conflict")
)

// Booth is a vendor stall. ID doubles as the booth's operator identity.
type Booth struct {
	ID           string
	Name         string
	Username     string
	PasswordHash string
	Revenue      decimal.Decimal
	Version      int64
	CreatedAt    time.Time
}

type Booths interface {
	GetBooth(ctx context.Context, id string) (Booth, error)
	GetBoothByUsername(ctx context.Context, username string) (Booth, error)
	// SetBoothRevenue stores revenue only if the booth is still at
	// expectedVersion and returns the new version.
	SetBoothRevenue(ctx context.Context, id string, revenue decimal.Decimal, expectedVersion int64) (int64, error)
}
