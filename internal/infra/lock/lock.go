// Package lock provides per-key mutual exclusion for read-validate-write
// sequences on a single card.
package lock

import (
	"context"
	"errors"
)

var ErrNotAcquired = errors.New("lock not acquired")

// Unlock releases a held lock. Calling it more than once is a no-op.
type Unlock func()

type Locker interface {
	// Lock blocks until key is held by the caller or ctx is done.
	Lock(ctx context.Context, key string) (Unlock, error)
}
