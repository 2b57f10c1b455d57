package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/novamart/storefront/internal/cache"
	"github.com/novamart/storefront/internal/domain"
	"github.com/novamart/storefront/internal/lock"
	"github.com/novamart/storefront/internal/repository"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// MaxLineQuantity caps the units held on a single cart line.
const MaxLineQuantity = 99

type CartService struct {
	repo    repository.CartRepository
	catalog repository.CatalogRepository
	cache   cache.CartCache
	locker  lock.Locker
	sfg     singleflight.Group // Prevents cache stampede
	log     *slog.Logger
	newID   func() string
}

func NewCartService(
	repo repository.CartRepository,
	catalog repository.CatalogRepository,
	cache cache.CartCache,
	locker lock.Locker,
	log *slog.Logger,
) *CartService {
	return &CartService{
		repo:    repo,
		catalog: catalog,
		cache:   cache,
		locker:  locker,
		log:     log,
		newID:   uuid.NewString,
	}
}

// AddResult is the line an AddItem call produced.
type AddResult struct {
	Line    domain.CartItem
	Product *domain.Product
	Created bool
}

func (s *CartService) AddItem(ctx context.Context, owner string, productID int64, quantity int) (*AddResult, error) {
	if owner == "" {
		return nil, ErrUnauthenticated
	}
	if productID <= 0 {
		return nil, ErrInvalidProductID
	}
	if quantity <= 0 || quantity > MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}

	var res *AddResult
	err = s.withOwnerLock(ctx, owner, func() error {
		cart, errGet := s.Snapshot(ctx, owner)
		if errGet != nil {
			return errGet
		}
		if cur, ok := cart.Find(productID); ok && cur.Quantity+quantity > MaxLineQuantity {
			return ErrInvalidQuantity
		}
		line, created, errAdd := s.repo.AddItem(ctx, owner, domain.CartItem{
			LineID:    s.newID(),
			ProductID: productID,
			Quantity:  quantity,
		})
		if errAdd != nil {
			return fmt.Errorf("add item: %w", errAdd)
		}
		res = &AddResult{Line: line, Product: product, Created: created}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "cart item added",
		slog.String("user_id", owner),
		slog.Int64("product_id", productID),
		slog.Int("quantity", res.Line.Quantity),
		slog.Bool("created", res.Created))
	return res, nil
}

// SetQuantity overwrites the quantity of the owner's line for productID. A quantity
// of zero or less deletes the line.
func (s *CartService) SetQuantity(ctx context.Context, owner string, productID int64, quantity int) error {
	if owner == "" {
		return ErrUnauthenticated
	}
	if productID <= 0 {
		return ErrInvalidProductID
	}
	if quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	return s.withOwnerLock(ctx, owner, func() error {
		var err error
		if quantity <= 0 {
			err = s.repo.RemoveItem(ctx, owner, productID)
		} else {
			err = s.repo.UpdateItemQuantity(ctx, owner, productID, quantity)
		}
		return lineErr(err)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, owner string, productID int64) error {
	if owner == "" {
		return ErrUnauthenticated
	}
	if productID <= 0 {
		return ErrInvalidProductID
	}
	return s.withOwnerLock(ctx, owner, func() error {
		return lineErr(s.repo.RemoveItem(ctx, owner, productID))
	})
}

// SetLineQuantity is SetQuantity addressed by line id. The line must belong to owner.
func (s *CartService) SetLineQuantity(ctx context.Context, owner, lineID string, quantity int) error {
	if quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	return s.withOwnedLine(ctx, owner, lineID, func() error {
		if quantity <= 0 {
			return lineErr(s.repo.RemoveLine(ctx, owner, lineID))
		}
		return lineErr(s.repo.UpdateLineQuantity(ctx, owner, lineID, quantity))
	})
}

func (s *CartService) RemoveLine(ctx context.Context, owner, lineID string) error {
	return s.withOwnedLine(ctx, owner, lineID, func() error {
		return lineErr(s.repo.RemoveLine(ctx, owner, lineID))
	})
}

func (s *CartService) withOwnedLine(ctx context.Context, owner, lineID string, fn func() error) error {
	if owner == "" {
		return ErrUnauthenticated
	}
	if lineID == "" {
		return ErrLineNotFound
	}
	return s.withOwnerLock(ctx, owner, func() error {
		lineOwner, _, err := s.repo.FindLine(ctx, lineID)
		if err != nil {
			return lineErr(err)
		}
		if lineOwner != owner {
			s.log.WarnContext(ctx, "cart line owned by another user",
				slog.String("user_id", owner), slog.String("line_id", lineID))
			return ErrUnauthorized
		}
		return fn()
	})
}

// List resolves the owner's lines against the live catalog. Lines whose product is
// gone are returned with Available=false and a zero price.
func (s *CartService) List(ctx context.Context, owner string) ([]domain.CartLineView, error) {
	if owner == "" {
		return nil, ErrUnauthenticated
	}
	cart, err := s.getCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return []domain.CartLineView{}, nil
	}

	products, err := s.catalog.GetProducts(ctx, productIDs(cart.Items))
	if err != nil {
		return nil, fmt.Errorf("resolve products: %w", err)
	}

	views := make([]domain.CartLineView, 0, len(cart.Items))
	for _, item := range cart.Items {
		v := domain.CartLineView{
			LineID:    item.LineID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: decimal.Zero,
			Subtotal:  decimal.Zero,
			AddedAt:   item.AddedAt,
			UpdatedAt: item.UpdatedAt,
		}
		if p, ok := products[item.ProductID]; ok {
			v.ProductName = p.Name
			v.UnitPrice = domain.RoundPrice(p.Price)
			v.Subtotal = v.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			v.Available = true
		}
		views = append(views, v)
	}
	return views, nil
}

// Count is the total number of units in the owner's cart.
func (s *CartService) Count(ctx context.Context, owner string) (int, error) {
	if owner == "" {
		return 0, ErrUnauthenticated
	}
	cart, err := s.getCart(ctx, owner)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, item := range cart.Items {
		n += item.Quantity
	}
	return n, nil
}

// Snapshot reads the cart straight from the store, bypassing the cache.
// Callers are expected to hold the owner lock.
func (s *CartService) Snapshot(ctx context.Context, owner string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, owner)
	if errors.Is(err, repository.ErrCartNotFound) {
		return &domain.Cart{UserID: owner}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// Clear deletes every line of the owner. Callers are expected to hold the owner lock.
func (s *CartService) Clear(ctx context.Context, owner string) error {
	err := s.repo.DeleteCart(ctx, owner)
	if err != nil && !errors.Is(err, repository.ErrCartNotFound) {
		return fmt.Errorf("delete cart: %w", err)
	}
	s.invalidateCache(owner)
	return nil
}

// Empty is Clear for callers that do not hold the owner lock.
func (s *CartService) Empty(ctx context.Context, owner string) error {
	if owner == "" {
		return ErrUnauthenticated
	}
	return s.withOwnerLock(ctx, owner, func() error {
		return s.Clear(ctx, owner)
	})
}

func (s *CartService) getCart(ctx context.Context, owner string) (*domain.Cart, error) {
	cart, err := s.cache.Get(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.WarnContext(ctx, "cache get error", slog.Any("error", err))
	}

	// Use singleflight to prevent multiple concurrent cache misses for same key.
	// The fill holds the owner lock so it cannot write back a cart that a
	// concurrent mutation has already invalidated.
	v, err, _ := s.sfg.Do(owner, func() (interface{}, error) {
		release, err := s.locker.Lock(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("lock cart: %w", err)
		}
		defer release()

		if cart, err := s.cache.Get(ctx, owner); err == nil {
			return cart, nil
		}
		cart, err := s.Snapshot(ctx, owner)
		if err != nil {
			return nil, err
		}

		if errSet := s.cache.Set(ctx, owner, cart); errSet != nil {
			s.log.WarnContext(ctx, "cache set error", slog.Any("error", errSet))
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}

func (s *CartService) withOwnerLock(ctx context.Context, owner string, fn func() error) error {
	release, err := s.locker.Lock(ctx, owner)
	if err != nil {
		return fmt.Errorf("lock cart: %w", err)
	}
	defer release()

	if err := fn(); err != nil {
		return err
	}
	s.invalidateCache(owner)
	return nil
}

func (s *CartService) invalidateCache(owner string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, owner); err != nil {
		s.log.Warn("cache invalidate error", slog.String("user_id", owner), slog.Any("error", err))
	}
}

func lineErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrItemNotFound), errors.Is(err, repository.ErrCartNotFound):
		return ErrLineNotFound
	case errors.Is(err, repository.ErrInvalidQuantity):
		return ErrInvalidQuantity
	default:
		return fmt.Errorf("update cart: %w", err)
	}
}

func productIDs(items []domain.CartItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
