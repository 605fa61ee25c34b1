package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidHolderName   = errors.New("invalid holder name")
	ErrInvalidOperator     = errors.New("invalid operator")
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrConflict means the card or booth kept changing underneath the
	// operation until the retry budget ran out. Nothing was applied.
	ErrConflict = errors.New("concurrent modification")
	// ErrCompensationFailed means a partially applied operation could not be
	// undone. The ledger needs manual reconciliation.
	ErrCompensationFailed = errors.New("compensation failed")
)

// CompensationError describes a write that was left partially applied.
// errors.Is(err, ErrCompensationFailed) holds for it.
type CompensationError struct {
	Op      string
	CardID  string
	BoothID string
	Amount  decimal.Decimal
	// Cause is the failure that triggered compensation.
	Cause error
	// Err is why the compensating write itself failed.
	Err error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("%s card %s: %v; compensation failed: %v", e.Op, e.CardID, e.Cause, e.Err)
}

func (e *CompensationError) Is(target error) bool {
	return target == ErrCompensationFailed
}

func (e *CompensationError) Unwrap() []error {
	return []error{e.Cause, e.Err}
}
