package cache

import (
	"context"
	"errors"

	"github.com/novamart/storefront/internal/domain"
)

// CartCache holds the raw cart document of an owner. Entries are dropped on every
// cart mutation, so a hit is never older than the last write.
type CartCache interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	Set(ctx context.Context, userID string, cart *domain.Cart) error
	Delete(ctx context.Context, userID string) error
}

var ErrCacheMiss = errors.New("cache miss")
