package service

import (
	"context"
	"sync"
	"time"

	"github.com/novamart/storefront/internal/cache"
	"github.com/novamart/storefront/internal/domain"
	"github.com/novamart/storefront/internal/payment"
	"github.com/novamart/storefront/internal/repository"
	"github.com/shopspring/decimal"
)

// MockCartRepository is an in-memory repository.CartRepository.
type MockCartRepository struct {
	mu       sync.Mutex
	carts    map[string]*domain.Cart
	GetErr   error
	AddErr   error
	ClearErr error
	GetCalls int
	// AfterGet runs once GetCart has read the cart, before it returns.
	AfterGet func()
}

func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{carts: map[string]*domain.Cart{}}
}

func (m *MockCartRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := m.getCart(ctx, userID)
	if m.AfterGet != nil {
		m.AfterGet()
	}
	return cart, err
}

func (m *MockCartRepository) getCart(_ context.Context, userID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	c, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	cp := *c
	cp.Items = append([]domain.CartItem(nil), c.Items...)
	return &cp, nil
}

func (m *MockCartRepository) AddItem(_ context.Context, userID string, item domain.CartItem) (domain.CartItem, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddErr != nil {
		return domain.CartItem{}, false, m.AddErr
	}
	now := time.Now()
	c, ok := m.carts[userID]
	if !ok {
		c = &domain.Cart{UserID: userID, CreatedAt: now}
		m.carts[userID] = c
	}
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			c.Items[i].UpdatedAt = now
			return c.Items[i], false, nil
		}
	}
	item.AddedAt, item.UpdatedAt = now, now
	c.Items = append(c.Items, item)
	return item, true, nil
}

func (m *MockCartRepository) find(userID string, match func(domain.CartItem) bool) (*domain.Cart, int) {
	c, ok := m.carts[userID]
	if !ok {
		return nil, -1
	}
	for i, it := range c.Items {
		if match(it) {
			return c, i
		}
	}
	return c, -1
}

func (m *MockCartRepository) update(userID string, match func(domain.CartItem) bool, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if quantity <= 0 {
		return repository.ErrInvalidQuantity
	}
	c, i := m.find(userID, match)
	if i < 0 {
		return repository.ErrItemNotFound
	}
	c.Items[i].Quantity = quantity
	return nil
}

func (m *MockCartRepository) remove(userID string, match func(domain.CartItem) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, i := m.find(userID, match)
	if i < 0 {
		return repository.ErrItemNotFound
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return nil
}

func byProduct(id int64) func(domain.CartItem) bool {
	return func(it domain.CartItem) bool { return it.ProductID == id }
}

func byLine(id string) func(domain.CartItem) bool {
	return func(it domain.CartItem) bool { return it.LineID == id }
}

func (m *MockCartRepository) UpdateItemQuantity(_ context.Context, userID string, productID int64, quantity int) error {
	return m.update(userID, byProduct(productID), quantity)
}

func (m *MockCartRepository) RemoveItem(_ context.Context, userID string, productID int64) error {
	return m.remove(userID, byProduct(productID))
}

func (m *MockCartRepository) FindLine(_ context.Context, lineID string) (string, domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for owner, c := range m.carts {
		for _, it := range c.Items {
			if it.LineID == lineID {
				return owner, it, nil
			}
		}
	}
	return "", domain.CartItem{}, repository.ErrItemNotFound
}

func (m *MockCartRepository) UpdateLineQuantity(_ context.Context, userID, lineID string, quantity int) error {
	return m.update(userID, byLine(lineID), quantity)
}

func (m *MockCartRepository) RemoveLine(_ context.Context, userID, lineID string) error {
	return m.remove(userID, byLine(lineID))
}

func (m *MockCartRepository) DeleteCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	if _, ok := m.carts[userID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(m.carts, userID)
	return nil
}

// Lines returns a copy of the owner's lines.
func (m *MockCartRepository) Lines(userID string) []domain.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.carts[userID]; ok {
		return append([]domain.CartItem(nil), c.Items...)
	}
	return nil
}

// MockCatalog implements repository.CatalogRepository over a map.
type MockCatalog struct {
	mu       sync.Mutex
	Products map[int64]*domain.Product
	Err      error
}

func NewMockCatalog(products ...*domain.Product) *MockCatalog {
	m := &MockCatalog{Products: map[int64]*domain.Product{}}
	for _, p := range products {
		m.Products[p.ID] = p
	}
	return m
}

func (m *MockCatalog) GetAllProducts(context.Context) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Product
	for _, p := range m.Products {
		out = append(out, p)
	}
	return out, m.Err
}

func (m *MockCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *MockCatalog) GetProducts(_ context.Context, ids []int64) (map[int64]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := map[int64]*domain.Product{}
	for _, id := range ids {
		if p, ok := m.Products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *MockCatalog) Delete(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Products, id)
}

// MockCache is an in-memory cache.CartCache.
type MockCache struct {
	mu      sync.Mutex
	data    map[string]*domain.Cart
	Deletes int
}

func NewMockCache() *MockCache {
	return &MockCache{data: map[string]*domain.Cart{}}
}

func (m *MockCache) Get(_ context.Context, userID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.data[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return c, nil
}

func (m *MockCache) Set(_ context.Context, userID string, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[userID] = cart
	return nil
}

func (m *MockCache) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	delete(m.data, userID)
	return nil
}

// MockOrderRepository records SaveCheckout calls.
type MockOrderRepository struct {
	mu      sync.Mutex
	Saved   []*repository.CheckoutRecord
	SaveErr error
	Orders  map[string]*domain.Order
	GetErr  error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{Orders: map[string]*domain.Order{}}
}

func (m *MockOrderRepository) SaveCheckout(_ context.Context, rec *repository.CheckoutRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saved = append(m.Saved, rec)
	o := *rec.Order
	o.Lines = rec.Lines
	o.Payment = rec.Payment
	m.Orders[o.ID] = &o
	return nil
}

func (m *MockOrderRepository) GetOrder(_ context.Context, orderID string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	o, ok := m.Orders[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

func (m *MockOrderRepository) ListOrdersByUserID(_ context.Context, userID string) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Order
	for _, o := range m.Orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MockOrderRepository) SavedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Saved)
}

// MockPayments returns a fixed result and records the calls.
type MockPayments struct {
	mu      sync.Mutex
	Result  payment.Result
	Calls   int
	Amounts []decimal.Decimal
	Refs    []string
}

func (m *MockPayments) Process(_ context.Context, _ string, amount decimal.Decimal, orderRef string) payment.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.Amounts = append(m.Amounts, amount)
	m.Refs = append(m.Refs, orderRef)
	return m.Result
}

type MockNotifier struct {
	mu      sync.Mutex
	Err     error
	Orders  []string
	CtxErrs []error
}

func (m *MockNotifier) Notify(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders = append(m.Orders, orderID)
	m.CtxErrs = append(m.CtxErrs, ctx.Err())
	return m.Err
}
