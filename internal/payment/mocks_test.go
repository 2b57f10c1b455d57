package payment

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

type mockGateway struct {
	receipt Receipt
	err     error
	calls   atomic.Int32
}

func (m *mockGateway) Charge(context.Context, decimal.Decimal, string) (Receipt, error) {
	m.calls.Add(1)
	return m.receipt, m.err
}

type mockStrategy struct {
	name    string
	receipt Receipt
	err     error
	delay   time.Duration
	calls   int
}

func (m *mockStrategy) Process(ctx context.Context, _ decimal.Decimal, _ string) (Receipt, error) {
	m.calls++
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		}
	}
	return m.receipt, m.err
}

func (m *mockStrategy) DisplayName() string { return m.name }

func (m *mockStrategy) RequiresExtraDetails() bool { return false }
