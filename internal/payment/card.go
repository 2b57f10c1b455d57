package payment

import (
	"context"
	"log/slog"

	"github.com/novamart/storefront/pkg/circuitbreaker"
	"github.com/shopspring/decimal"
)

// CardStrategy charges a credit or debit card through a Gateway guarded by a circuit breaker.
type CardStrategy struct {
	gateway Gateway
	breaker *circuitbreaker.Breaker[Receipt]
	log     *slog.Logger
}

func NewCardStrategy(gateway Gateway, breaker *circuitbreaker.Breaker[Receipt], log *slog.Logger) *CardStrategy {
	if breaker == nil {
		breaker = circuitbreaker.New[Receipt](circuitbreaker.DefaultSettings("card-gateway"), log)
	}
	return &CardStrategy{gateway: gateway, breaker: breaker, log: log}
}

func (s *CardStrategy) Process(ctx context.Context, amount decimal.Decimal, orderRef string) (Receipt, error) {
	if !amount.IsPositive() {
		s.log.WarnContext(ctx, "invalid amount for card payment",
			slog.String("order_ref", orderRef), slog.String("amount", amount.String()))
		return declined("invalid amount"), nil
	}

	s.log.InfoContext(ctx, "connecting to card gateway", slog.String("order_ref", orderRef))
	receipt, err := s.breaker.Execute(ctx, func(ctx context.Context) (Receipt, error) {
		return s.gateway.Charge(ctx, amount, orderRef)
	})
	if err != nil {
		return Receipt{}, err
	}

	if receipt.Approved {
		s.log.InfoContext(ctx, "card payment approved",
			slog.String("order_ref", orderRef), slog.String("transaction_id", receipt.TransactionID))
	} else {
		s.log.InfoContext(ctx, "card payment declined",
			slog.String("order_ref", orderRef), slog.String("reason", receipt.Reason))
	}
	return receipt, nil
}

func (s *CardStrategy) DisplayName() string { return "Credit/Debit Card" }

func (s *CardStrategy) RequiresExtraDetails() bool { return true }
