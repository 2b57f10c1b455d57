package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/novamart/storefront/internal/domain"
	"github.com/novamart/storefront/internal/repository"
)

const (
	maxOrderIDLength = 100
	MaxLimit         = 100
)

var (
	ErrInvalidOrderID = errors.New("invalid order id")
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidLimit   = errors.New("limit must be between 1 and 100")
)

type OrderReader interface {
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

// EmailQueue hands an email job to the delivery pipeline.
type EmailQueue interface {
	Enqueue(ctx context.Context, job EmailJob) error
}

type EmailJob struct {
	UserID  string `json:"user_id"`
	OrderID string `json:"order_id"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Dispatcher struct {
	orders OrderReader
	store  repository.NotificationRepository
	emails EmailQueue
	log    *slog.Logger
	now    func() time.Time
}

func NewDispatcher(orders OrderReader, store repository.NotificationRepository, emails EmailQueue, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		orders: orders,
		store:  store,
		emails: emails,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Notify records an in-app notification for the order and queues a confirmation email.
// The email record is stored as queued or failed depending on the enqueue outcome.
func (d *Dispatcher) Notify(ctx context.Context, orderID string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" || len(orderID) > maxOrderIDLength {
		return fmt.Errorf("%w: %q", ErrInvalidOrderID, orderID)
	}

	order, err := d.orders.GetOrder(ctx, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}

	total := order.TotalAmount.StringFixed(2)
	inApp := d.newNotification(order,
		fmt.Sprintf("Your order %s has been placed successfully! Total: $%s", order.ID, total),
		domain.DeliveryInApp, domain.NotificationSent)
	if err := d.store.CreateNotification(ctx, inApp); err != nil {
		return fmt.Errorf("save in-app notification: %w", err)
	}

	body := fmt.Sprintf("Your order %s is now %s.\nOrder Total: $%s\n\nThank you for shopping with NovaMart!",
		order.ID, strings.ToUpper(string(order.Status)), total)
	email := d.newNotification(order, body, domain.DeliveryEmail, domain.NotificationQueued)

	job := EmailJob{UserID: order.UserID, OrderID: order.ID, Subject: "Order Update - " + order.ID, Body: body}
	if err := d.emails.Enqueue(ctx, job); err != nil {
		d.log.WarnContext(ctx, "failed to enqueue order email",
			slog.String("order_id", order.ID), slog.Any("error", err))
		email.Status = domain.NotificationFailed
	}
	if err := d.store.CreateNotification(ctx, email); err != nil {
		return fmt.Errorf("save email notification: %w", err)
	}

	d.log.InfoContext(ctx, "order notifications recorded",
		slog.String("order_id", order.ID), slog.String("email_status", string(email.Status)))
	return nil
}

func (d *Dispatcher) newNotification(order *domain.Order, msg string, method domain.DeliveryMethod, status domain.NotificationStatus) *domain.Notification {
	return &domain.Notification{
		ID:             uuid.NewString(),
		UserID:         order.UserID,
		OrderID:        order.ID,
		Message:        msg,
		DeliveryMethod: method,
		Status:         status,
		CreatedAt:      d.now(),
	}
}

// Recent returns up to limit notifications of owner, newest first.
func (d *Dispatcher) Recent(ctx context.Context, owner string, limit int) ([]*domain.Notification, error) {
	if limit < 1 || limit > MaxLimit {
		return nil, ErrInvalidLimit
	}
	list, err := d.store.ListNotifications(ctx, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	if list == nil {
		list = []*domain.Notification{}
	}
	return list, nil
}
