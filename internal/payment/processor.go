package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/novamart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

const DefaultTimeout = 5 * time.Second

var ErrUnsupportedMethod = errors.New("unsupported payment method")

type Result struct {
	Successful        bool
	Message           string
	MethodDisplayName string
	Method            domain.PaymentMethod
	TransactionID     string
}

type MethodInfo struct {
	Name                string `json:"name"`
	RequiresCardDetails bool   `json:"requires_card_details"`
}

// Processor selects a Strategy by payment method name and runs it under a timeout.
type Processor struct {
	strategies map[domain.PaymentMethod]Strategy
	timeout    time.Duration
	log        *slog.Logger
}

func NewProcessor(cash, card Strategy, timeout time.Duration, log *slog.Logger) *Processor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	strategies := make(map[domain.PaymentMethod]Strategy, len(domain.PaymentMethods()))
	for _, m := range domain.PaymentMethods() {
		switch m {
		case domain.PaymentMethodCash:
			strategies[m] = cash
		case domain.PaymentMethodCard:
			strategies[m] = card
		default:
			panic(fmt.Sprintf("payment: no strategy for method %q", m))
		}
	}
	return &Processor{strategies: strategies, timeout: timeout, log: log}
}

func (p *Processor) strategy(name string) (domain.PaymentMethod, Strategy, error) {
	method, err := domain.ParsePaymentMethod(name)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, name)
	}
	return method, p.strategies[method], nil
}

// Process never returns an error: every failure is folded into an unsuccessful Result.
func (p *Processor) Process(ctx context.Context, methodName string, amount decimal.Decimal, orderRef string) Result {
	method, strategy, err := p.strategy(methodName)
	if err != nil {
		p.log.WarnContext(ctx, "unsupported payment method", slog.String("method", methodName))
		return Result{Successful: false, Message: "Unsupported payment method: " + methodName}
	}

	name := strategy.DisplayName()
	p.log.InfoContext(ctx, "processing payment",
		slog.String("method", name), slog.String("order_ref", orderRef))

	payCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	receipt, err := strategy.Process(payCtx, amount, orderRef)

	res := Result{Method: method, MethodDisplayName: name}
	switch {
	case err != nil && errors.Is(err, context.DeadlineExceeded):
		p.log.ErrorContext(ctx, "payment timed out", slog.String("order_ref", orderRef))
		res.Message = "Payment failed via " + name + ": payment timed out"
	case err != nil:
		p.log.ErrorContext(ctx, "payment error", slog.String("order_ref", orderRef), slog.Any("error", err))
		res.Message = "Payment failed via " + name + ": payment error"
	case receipt.Approved:
		res.Successful = true
		res.TransactionID = receipt.TransactionID
		res.Message = "Payment processed successfully via " + name
	default:
		res.Message = "Payment failed via " + name
	}

	p.log.InfoContext(ctx, "payment processing completed",
		slog.String("order_ref", orderRef), slog.Bool("successful", res.Successful))
	return res
}

// MethodInfo describes a payment method without charging anything.
func (p *Processor) MethodInfo(name string) (MethodInfo, error) {
	_, strategy, err := p.strategy(name)
	if err != nil {
		return MethodInfo{}, err
	}
	return MethodInfo{Name: strategy.DisplayName(), RequiresCardDetails: strategy.RequiresExtraDetails()}, nil
}
