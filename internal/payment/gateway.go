package payment

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCardSuccessRate = 0.90

// Gateway is the remote card processor.
type Gateway interface {
	Charge(ctx context.Context, amount decimal.Decimal, orderRef string) (Receipt, error)
}

// RandomGateway simulates a card processor round trip: it waits for latency and
// approves with probability successRate.
type RandomGateway struct {
	mu          sync.Mutex
	rng         *rand.Rand
	successRate float64
	latency     time.Duration
	seq         atomic.Uint64
	now         func() time.Time
}

type GatewayOption func(*RandomGateway)

// WithRand replaces the random source, e.g. with a seeded one in tests.
func WithRand(r *rand.Rand) GatewayOption {
	return func(g *RandomGateway) { g.rng = r }
}

func WithLatency(d time.Duration) GatewayOption {
	return func(g *RandomGateway) { g.latency = d }
}

func WithSuccessRate(rate float64) GatewayOption {
	return func(g *RandomGateway) {
		if rate >= 0 && rate <= 1 {
			g.successRate = rate
		}
	}
}

func NewRandomGateway(opts ...GatewayOption) *RandomGateway {
	g := &RandomGateway{
		rng:         rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
		successRate: DefaultCardSuccessRate,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *RandomGateway) Charge(ctx context.Context, _ decimal.Decimal, _ string) (Receipt, error) {
	if g.latency > 0 {
		timer := time.NewTimer(g.latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	g.mu.Lock()
	roll := g.rng.Float64()
	g.mu.Unlock()

	if roll >= g.successRate {
		return declined("insufficient funds or card declined"), nil
	}
	txn := fmt.Sprintf("TXN_%d_%d", g.now().UnixMilli(), g.seq.Add(1))
	return Receipt{Approved: true, TransactionID: txn}, nil
}
