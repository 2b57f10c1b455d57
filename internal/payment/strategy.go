package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Strategy charges an amount for an order using one payment method.
// A declined charge is reported in the Receipt; the error is reserved for
// infrastructure failures (timeouts, cancelled context, open breaker).
type Strategy interface {
	Process(ctx context.Context, amount decimal.Decimal, orderRef string) (Receipt, error)
	DisplayName() string
	RequiresExtraDetails() bool
}

type Receipt struct {
	Approved      bool
	TransactionID string
	Reason        string
}

func declined(reason string) Receipt {
	return Receipt{Approved: false, Reason: reason}
}
