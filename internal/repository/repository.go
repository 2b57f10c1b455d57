package repository

import (
	"context"
	"errors"
	"time"

	"github.com/novamart/storefront/internal/domain"
)

var (
	ErrCartNotFound     = errors.New("cart not found")
	ErrItemNotFound     = errors.New("item not found in cart")
	ErrProductNotFound  = errors.New("product not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrDuplicateOrder   = errors.New("order already exists")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrEmptyCheckout    = errors.New("checkout record has no lines")
	ErrMissingPayment   = errors.New("checkout record has no payment")
	ErrUnknownOutboxRow = errors.New("outbox event not found")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// CartRepository defines the interface for cart data operations
// Consumers define this interface, not the MongoDB implementation
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	// AddItem increments the line for item.ProductID by item.Quantity, or inserts item
	// as a new line. It returns the resulting line and whether it was created.
	AddItem(ctx context.Context, userID string, item domain.CartItem) (domain.CartItem, bool, error)
	UpdateItemQuantity(ctx context.Context, userID string, productID int64, quantity int) error
	RemoveItem(ctx context.Context, userID string, productID int64) error
	// FindLine returns the owner and contents of the line with lineID.
	FindLine(ctx context.Context, lineID string) (string, domain.CartItem, error)
	UpdateLineQuantity(ctx context.Context, userID, lineID string, quantity int) error
	RemoveLine(ctx context.Context, userID, lineID string) error
	DeleteCart(ctx context.Context, userID string) error
}

type CatalogRepository interface {
	GetAllProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	// GetProducts returns the subset of ids that exist, keyed by id.
	GetProducts(ctx context.Context, ids []int64) (map[int64]*domain.Product, error)
}

// CheckoutRecord is everything a successful checkout writes, committed atomically.
type CheckoutRecord struct {
	Order   *domain.Order
	Lines   []domain.OrderLine
	Payment *domain.PaymentRecord
	Event   *OutboxEvent
}

type OrderRepository interface {
	SaveCheckout(ctx context.Context, rec *CheckoutRecord) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *domain.Notification) error
	ListNotifications(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
}

type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

const EventOrderPlaced = "order.placed"
