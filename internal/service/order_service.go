package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/novamart/storefront/internal/domain"
	"github.com/novamart/storefront/internal/repository"
)

type OrderService struct {
	repo repository.OrderRepository
}

func NewOrderService(repo repository.OrderRepository) *OrderService {
	return &OrderService{repo: repo}
}

// GetOrder returns the order with its lines and payment, provided owner placed it.
func (s *OrderService) GetOrder(ctx context.Context, owner, orderID string) (*domain.Order, error) {
	if owner == "" {
		return nil, ErrUnauthenticated
	}
	order, err := s.repo.GetOrder(ctx, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.UserID != owner {
		return nil, ErrUnauthorized
	}
	return order, nil
}

// ListOrders returns the owner's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, owner string) ([]*domain.Order, error) {
	if owner == "" {
		return nil, ErrUnauthenticated
	}
	orders, err := s.repo.ListOrdersByUserID(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, nil
}
