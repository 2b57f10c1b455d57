package lock

import (
	"context"
	"errors"
)

var (
	ErrNotAcquired = errors.New("lock not acquired")
	ErrNotHeld     = errors.New("lock not held")
)

// Locker serializes work per key (an owner id). Lock blocks until the lock is held
// or ctx is done; the returned func releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}
