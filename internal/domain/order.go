package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

const DefaultCurrency = "USD"

// Order is created exactly once per successful checkout. TotalAmount never changes
// after the order is persisted.
type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Currency      string          `json:"currency"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Lines         []OrderLine     `json:"lines,omitempty"`
	Payment       *PaymentRecord  `json:"payment,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderLine captures the unit price at purchase time, not the live catalog price.
type OrderLine struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CurrencyScale is the number of decimal places amounts are stored with.
const CurrencyScale = 2

// RoundPrice brings a catalog price to currency scale. Every stored amount is
// derived from the rounded price, so subtotals always add up to the total.
func RoundPrice(p decimal.Decimal) decimal.Decimal {
	return p.Round(CurrencyScale)
}

// NewOrderLine captures the unit price at currency scale and computes the
// subtotal as quantity × unit price.
func NewOrderLine(id, orderID string, product Product, quantity int) OrderLine {
	price := RoundPrice(product.Price)
	return OrderLine{
		ID:          id,
		OrderID:     orderID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   price,
		Subtotal:    price.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// LinesTotal sums the subtotals of lines.
func LinesTotal(lines []OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal)
	}
	return total
}

// CheckoutSummary is what the owner sees before confirming a checkout.
type CheckoutSummary struct {
	Lines       []CartLineView  `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
	Currency    string          `json:"currency"`
}
