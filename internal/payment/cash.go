package payment

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashStrategy is cash on delivery: nothing is charged now, the intent is recorded.
type CashStrategy struct {
	log *slog.Logger
}

func NewCashStrategy(log *slog.Logger) *CashStrategy {
	return &CashStrategy{log: log}
}

func (s *CashStrategy) Process(ctx context.Context, amount decimal.Decimal, orderRef string) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if !amount.IsPositive() {
		s.log.WarnContext(ctx, "invalid amount for cash payment",
			slog.String("order_ref", orderRef), slog.String("amount", amount.String()))
		return declined("invalid amount"), nil
	}

	s.log.InfoContext(ctx, "cash payment scheduled for delivery",
		slog.String("order_ref", orderRef), slog.String("amount", amount.StringFixed(2)))
	return Receipt{Approved: true, TransactionID: "CASH_" + uuid.NewString()}, nil
}

func (s *CashStrategy) DisplayName() string { return "Cash on Delivery" }

func (s *CashStrategy) RequiresExtraDetails() bool { return false }
