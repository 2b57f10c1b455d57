package notification

import (
	"context"
	"errors"
	"sync"

	"github.com/novamart/storefront/internal/domain"
	"github.com/novamart/storefront/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

type MockOrders struct {
	Orders map[string]*domain.Order
	Err    error
}

func (m *MockOrders) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	o, ok := m.Orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

type MockStore struct {
	mu      sync.Mutex
	Created []*domain.Notification
	Err     error
	Limit   int
}

func (m *MockStore) CreateNotification(_ context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Created = append(m.Created, n)
	return nil
}

func (m *MockStore) ListNotifications(_ context.Context, userID string, limit int) ([]*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Limit = limit
	var out []*domain.Notification
	for i := len(m.Created) - 1; i >= 0 && len(out) < limit; i-- {
		if m.Created[i].UserID == userID {
			out = append(out, m.Created[i])
		}
	}
	return out, nil
}

type MockPublisher struct {
	Published []amqp.Publishing
	Keys      []string
	Err       error
}

func (m *MockPublisher) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if m.Err != nil {
		return m.Err
	}
	m.Keys = append(m.Keys, key)
	m.Published = append(m.Published, msg)
	return nil
}

var errBroker = errors.New("broker unreachable")
