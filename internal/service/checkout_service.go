package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/novamart/storefront/internal/domain"
	"github.com/novamart/storefront/internal/lock"
	"github.com/novamart/storefront/internal/payment"
	"github.com/novamart/storefront/internal/repository"
	"github.com/shopspring/decimal"
)

const DefaultNotifyTimeout = 5 * time.Second

// CartStore is the part of the cart the checkout needs. Both calls assume the
// owner lock is already held.
type CartStore interface {
	Snapshot(ctx context.Context, owner string) (*domain.Cart, error)
	Clear(ctx context.Context, owner string) error
	List(ctx context.Context, owner string) ([]domain.CartLineView, error)
}

type PaymentProcessor interface {
	Process(ctx context.Context, methodName string, amount decimal.Decimal, orderRef string) payment.Result
}

type Notifier interface {
	Notify(ctx context.Context, orderID string) error
}

type CheckoutService struct {
	carts         CartStore
	catalog       repository.CatalogRepository
	orders        repository.OrderRepository
	payments      PaymentProcessor
	notifier      Notifier
	locker        lock.Locker
	log           *slog.Logger
	notifyTimeout time.Duration
	now           func() time.Time
	newID         func() string
}

func NewCheckoutService(
	carts CartStore,
	catalog repository.CatalogRepository,
	orders repository.OrderRepository,
	payments PaymentProcessor,
	notifier Notifier,
	locker lock.Locker,
	log *slog.Logger,
	notifyTimeout time.Duration,
) *CheckoutService {
	if notifyTimeout <= 0 {
		notifyTimeout = DefaultNotifyTimeout
	}
	return &CheckoutService{
		carts:         carts,
		catalog:       catalog,
		orders:        orders,
		payments:      payments,
		notifier:      notifier,
		locker:        locker,
		log:           log,
		notifyTimeout: notifyTimeout,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
	}
}

// checkoutRun tracks one Checkout call through its stages.
type checkoutRun struct {
	owner   string
	method  domain.PaymentMethod
	stage   domain.CheckoutStage
	orderID string
	cart    *domain.Cart
	lines   []domain.OrderLine
	total   decimal.Decimal
	payment payment.Result
}

func (r *checkoutRun) advance(next domain.CheckoutStage) error {
	if !r.stage.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, r.stage, next)
	}
	r.stage = next
	return nil
}

// Checkout turns the owner's cart into a paid order and returns the order id.
// On any failure the returned id is empty and the error says why; the cart is left
// untouched unless the order was committed.
func (s *CheckoutService) Checkout(ctx context.Context, owner, methodName string) (string, error) {
	if owner == "" {
		return "", ErrUnauthenticated
	}
	method, err := domain.ParsePaymentMethod(methodName)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPaymentMethod, methodName)
	}

	release, err := s.locker.Lock(ctx, owner)
	if err != nil {
		s.log.ErrorContext(ctx, "checkout lock failed", slog.String("user_id", owner), slog.Any("error", err))
		return "", fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}
	defer release()

	run := &checkoutRun{owner: owner, method: method, stage: domain.CheckoutStageStart, orderID: s.newID()}
	log := s.log.With(slog.String("user_id", owner), slog.String("order_id", run.orderID))

	steps := []struct {
		stage domain.CheckoutStage
		fn    func(context.Context, *checkoutRun) error
	}{
		{domain.CheckoutStageValidateCart, s.validateCart},
		{domain.CheckoutStageComputeTotal, s.computeTotal},
		{domain.CheckoutStageProcessPayment, s.processPayment},
		{domain.CheckoutStagePersist, s.persist},
	}
	for _, step := range steps {
		if err := run.advance(step.stage); err != nil {
			return "", fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
		}
		if err := step.fn(ctx, run); err != nil {
			log.WarnContext(ctx, "checkout aborted", slog.String("stage", run.stage.String()), slog.Any("error", err))
			_ = run.advance(domain.CheckoutStageAborted)
			return "", err
		}
	}

	// The order is committed from here on: later failures are logged, never returned.
	_ = run.advance(domain.CheckoutStageClearCart)
	if err := s.carts.Clear(ctx, owner); err != nil {
		log.ErrorContext(ctx, "failed to clear cart after checkout", slog.Any("error", err))
	}

	_ = run.advance(domain.CheckoutStageNotify)
	s.notify(ctx, log, run.orderID)

	_ = run.advance(domain.CheckoutStageDone)
	log.InfoContext(ctx, "checkout completed",
		slog.String("payment_method", run.payment.MethodDisplayName),
		slog.String("total", run.total.StringFixed(2)))
	return run.orderID, nil
}

func (s *CheckoutService) validateCart(ctx context.Context, run *checkoutRun) error {
	cart, err := s.carts.Snapshot(ctx, run.owner)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}
	if cart.IsEmpty() {
		return ErrEmptyCart
	}
	run.cart = cart
	return nil
}

func (s *CheckoutService) computeTotal(ctx context.Context, run *checkoutRun) error {
	products, err := s.catalog.GetProducts(ctx, productIDs(run.cart.Items))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}

	now := s.now()
	run.lines = make([]domain.OrderLine, 0, len(run.cart.Items))
	for _, item := range run.cart.Items {
		p, ok := products[item.ProductID]
		if !ok {
			return fmt.Errorf("%w: product %d", ErrProductUnavailable, item.ProductID)
		}
		line := domain.NewOrderLine(s.newID(), run.orderID, *p, item.Quantity)
		line.CreatedAt = now
		run.lines = append(run.lines, line)
	}
	run.total = domain.LinesTotal(run.lines)
	return nil
}

func (s *CheckoutService) processPayment(ctx context.Context, run *checkoutRun) error {
	res := s.payments.Process(ctx, run.method.String(), run.total, "ORDER_"+run.orderID)
	if !res.Successful {
		return fmt.Errorf("%w: %s", ErrPaymentDeclined, res.Message)
	}
	run.payment = res
	return nil
}

func (s *CheckoutService) persist(ctx context.Context, run *checkoutRun) error {
	now := s.now()
	order := &domain.Order{
		ID:            run.orderID,
		UserID:        run.owner,
		TotalAmount:   run.total,
		Currency:      domain.DefaultCurrency,
		Status:        domain.OrderStatusProcessing,
		PaymentMethod: run.method,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	pay := &domain.PaymentRecord{
		ID:            s.newID(),
		OrderID:       run.orderID,
		Amount:        run.total,
		Method:        run.method,
		MethodName:    run.payment.MethodDisplayName,
		Status:        domain.PaymentStatusCompleted,
		TransactionID: run.payment.TransactionID,
		ProcessedAt:   now,
	}

	payload, err := json.Marshal(orderPlacedEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		TotalAmount:   order.TotalAmount,
		Currency:      order.Currency,
		PaymentMethod: order.PaymentMethod,
		TransactionID: pay.TransactionID,
		Items:         run.lines,
		PlacedAt:      now,
	})
	if err != nil {
		return fmt.Errorf("%w: marshal order event: %w", ErrCheckoutFailed, err)
	}

	err = s.orders.SaveCheckout(ctx, &repository.CheckoutRecord{
		Order:   order,
		Lines:   run.lines,
		Payment: pay,
		Event: &repository.OutboxEvent{
			AggregateID: order.ID,
			EventType:   repository.EventOrderPlaced,
			Payload:     payload,
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCheckoutFailed, err)
	}
	return nil
}

// notify runs detached from the request so a client disconnect does not cut it short.
func (s *CheckoutService) notify(ctx context.Context, log *slog.Logger, orderID string) {
	if s.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()
	if err := s.notifier.Notify(nctx, orderID); err != nil {
		log.WarnContext(ctx, "failed to send order notification", slog.Any("error", err))
	}
}

type orderPlacedEvent struct {
	OrderID       string               `json:"order_id"`
	UserID        string               `json:"user_id"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Currency      string               `json:"currency"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	TransactionID string               `json:"transaction_id"`
	Items         []domain.OrderLine   `json:"items"`
	PlacedAt      time.Time            `json:"placed_at"`
}

// Summary previews the checkout: lines resolved against the catalog and the total of
// the lines that are still available.
func (s *CheckoutService) Summary(ctx context.Context, owner string) (*domain.CheckoutSummary, error) {
	lines, err := s.carts.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	total := decimal.Zero
	for _, l := range lines {
		if l.Available {
			total = total.Add(l.Subtotal)
		}
	}
	return &domain.CheckoutSummary{
		Lines:       lines,
		TotalAmount: total,
		ItemCount:   len(lines),
		Currency:    domain.DefaultCurrency,
	}, nil
}
