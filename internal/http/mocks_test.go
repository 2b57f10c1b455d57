package http

import (
	"context"

	"github.com/novamart/storefront/internal/domain"
	"github.com/novamart/storefront/internal/payment"
	"github.com/novamart/storefront/internal/repository"
	"github.com/novamart/storefront/internal/service"
)

type MockCatalog struct {
	Products []*domain.Product
	Err      error
}

func (m *MockCatalog) GetAllProducts(context.Context) ([]*domain.Product, error) {
	return m.Products, m.Err
}

func (m *MockCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.Products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

type cartCall struct {
	Owner     string
	ProductID int64
	LineID    string
	Quantity  int
}

type MockCart struct {
	Lines     []domain.CartLineView
	AddResult *service.AddResult
	Err       error
	Calls     []cartCall
}

func (m *MockCart) AddItem(_ context.Context, owner string, productID int64, quantity int) (*service.AddResult, error) {
	m.Calls = append(m.Calls, cartCall{Owner: owner, ProductID: productID, Quantity: quantity})
	return m.AddResult, m.Err
}

func (m *MockCart) SetQuantity(_ context.Context, owner string, productID int64, quantity int) error {
	m.Calls = append(m.Calls, cartCall{Owner: owner, ProductID: productID, Quantity: quantity})
	return m.Err
}

func (m *MockCart) RemoveItem(_ context.Context, owner string, productID int64) error {
	m.Calls = append(m.Calls, cartCall{Owner: owner, ProductID: productID})
	return m.Err
}

func (m *MockCart) SetLineQuantity(_ context.Context, owner, lineID string, quantity int) error {
	m.Calls = append(m.Calls, cartCall{Owner: owner, LineID: lineID, Quantity: quantity})
	return m.Err
}

func (m *MockCart) RemoveLine(_ context.Context, owner, lineID string) error {
	m.Calls = append(m.Calls, cartCall{Owner: owner, LineID: lineID})
	return m.Err
}

func (m *MockCart) List(_ context.Context, owner string) ([]domain.CartLineView, error) {
	m.Calls = append(m.Calls, cartCall{Owner: owner})
	return m.Lines, m.Err
}

func (m *MockCart) Count(_ context.Context, owner string) (int, error) {
	m.Calls = append(m.Calls, cartCall{Owner: owner})
	n := 0
	for _, l := range m.Lines {
		n += l.Quantity
	}
	return n, m.Err
}

func (m *MockCart) Empty(_ context.Context, owner string) error {
	m.Calls = append(m.Calls, cartCall{Owner: owner})
	return m.Err
}

type MockCheckout struct {
	OrderID    string
	Err        error
	SummaryRes *domain.CheckoutSummary
	Methods    []string
}

func (m *MockCheckout) Checkout(_ context.Context, _, methodName string) (string, error) {
	m.Methods = append(m.Methods, methodName)
	return m.OrderID, m.Err
}

func (m *MockCheckout) Summary(context.Context, string) (*domain.CheckoutSummary, error) {
	return m.SummaryRes, m.Err
}

type MockMethods struct{}

func (MockMethods) MethodInfo(name string) (payment.MethodInfo, error) {
	switch name {
	case "cash":
		return payment.MethodInfo{Name: "Cash on Delivery"}, nil
	case "card":
		return payment.MethodInfo{Name: "Credit/Debit Card", RequiresCardDetails: true}, nil
	}
	return payment.MethodInfo{}, payment.ErrUnsupportedMethod
}

type MockOrders struct {
	Orders []*domain.Order
	Err    error
}

func (m *MockOrders) GetOrder(_ context.Context, owner, orderID string) (*domain.Order, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, o := range m.Orders {
		if o.ID == orderID {
			if o.UserID != owner {
				return nil, service.ErrUnauthorized
			}
			return o, nil
		}
	}
	return nil, service.ErrOrderNotFound
}

func (m *MockOrders) ListOrders(_ context.Context, owner string) ([]*domain.Order, error) {
	out := []*domain.Order{}
	for _, o := range m.Orders {
		if o.UserID == owner {
			out = append(out, o)
		}
	}
	return out, m.Err
}

type MockNotifications struct {
	List  []*domain.Notification
	Err   error
	Limit int
}

func (m *MockNotifications) Recent(_ context.Context, _ string, limit int) ([]*domain.Notification, error) {
	m.Limit = limit
	return m.List, m.Err
}
