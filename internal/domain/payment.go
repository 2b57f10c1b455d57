package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is the closed set of supported payment methods.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

var ErrUnknownPaymentMethod = errors.New("unknown payment method")

// PaymentMethods lists every supported method.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentMethodCash, PaymentMethodCard}
}

// ParsePaymentMethod matches name case-insensitively against the supported methods.
func ParsePaymentMethod(name string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(name))) {
	case PaymentMethodCash:
		return PaymentMethodCash, nil
	case PaymentMethodCard:
		return PaymentMethodCard, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, name)
	}
}

func (m PaymentMethod) String() string {
	return string(m)
}

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
)

// PaymentRecord exists only for orders whose payment strategy reported success.
type PaymentRecord struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	MethodName    string          `json:"method_name"`
	Status        PaymentStatus   `json:"status"`
	TransactionID string          `json:"transaction_id"`
	ProcessedAt   time.Time       `json:"processed_at"`
}
