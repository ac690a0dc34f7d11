package orderbook

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sportpulse/pulse/internal/model"
	"github.com/sportpulse/pulse/internal/pricing"
)

// Policy describes the shape of the generated ladder.
type Policy struct {
	Center      float64 // Middle strike
	Step        float64 // Distance between adjacent strikes
	Count       int     // Number of strikes
	Spread      float64 // bid = ask - Spread
	Jitter      float64 // Max absolute perturbation applied to each ask
	MinPremium  float64 // Floor for bids and asks
	MaxPremium  float64 // Ceiling for asks
	Concurrency int     // Max concurrent pricing calls
}

// DefaultPolicy returns sensible defaults.
func DefaultPolicy() Policy {
	return Policy{
		Center:      10000,
		Step:        500,
		Count:       11,
		Spread:      0.02,
		Jitter:      0.03,
		MinPremium:  0.01,
		MaxPremium:  0.99,
		Concurrency: 8,
	}
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes the jitter sequence reproducible.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithClock overrides the ladder timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// Generator builds synthetic ladders. Safe for concurrent use.
type Generator struct {
	policy Policy
	pricer pricing.Pricer
	now    func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewGenerator creates a new Generator.
func NewGenerator(policy Policy, pricer pricing.Pricer, opts ...Option) *Generator {
	if policy.Concurrency < 1 {
		policy.Concurrency = 1
	}
	if policy.MinPremium <= 0 {
		policy.MinPremium = 0.01
	}
	if policy.MaxPremium <= policy.MinPremium || policy.MaxPremium >= 1 {
		policy.MaxPremium = 0.99
	}

	g := &Generator{
		policy: policy,
		pricer: pricer,
		now:    time.Now,
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Policy returns the generator's ladder policy.
func (g *Generator) Policy() Policy {
	return g.policy
}

// Strikes returns the ascending strike grid. Non-positive strikes are skipped.
func (g *Generator) Strikes() []float64 {
	p := g.policy
	strikes := make([]float64, 0, p.Count)
	for i := 0; i < p.Count; i++ {
		strike := p.Center + float64(i-p.Count/2)*p.Step
		if strike <= 0 {
			continue
		}
		strikes = append(strikes, strike)
	}
	return strikes
}

// Generate prices every strike and returns a freshly allocated ladder.
func (g *Generator) Generate(ctx context.Context) (model.Ladder, error) {
	strikes := g.Strikes()
	rows := make([]model.LadderRow, len(strikes))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.policy.Concurrency)

	for i, strike := range strikes {
		eg.Go(func() error {
			call, err := g.pricer.Price(egCtx, strike, model.Call)
			if err != nil {
				return fmt.Errorf("price call at %v: %w", strike, err)
			}
			put, err := g.pricer.Price(egCtx, strike, model.Put)
			if err != nil {
				return fmt.Errorf("price put at %v: %w", strike, err)
			}

			rows[i] = model.LadderRow{
				Strike: strike,
				Call:   g.quote(call),
				Put:    g.quote(put),
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return model.Ladder{}, err
	}

	return model.Ladder{
		GeneratedAt: g.now(),
		Rows:        rows,
	}, nil
}

// quote perturbs a fair premium into a two-sided quote with Bid <= Ask.
func (g *Generator) quote(fair float64) model.Quote {
	p := g.policy

	ask := pricing.Clamp(fair+g.jitter(), p.MinPremium, p.MaxPremium)
	bid := math.Max(ask-p.Spread, p.MinPremium)

	ask = roundPremium(ask)
	bid = math.Min(roundPremium(bid), ask)

	return model.Quote{Ask: ask, Bid: bid}
}

// jitter draws a uniform perturbation in [-Jitter, +Jitter].
func (g *Generator) jitter() float64 {
	if g.policy.Jitter == 0 {
		return 0
	}
	g.rngMu.Lock()
	u := g.rng.Float64()
	g.rngMu.Unlock()
	return (2*u - 1) * g.policy.Jitter
}

func roundPremium(v float64) float64 {
	return math.Round(v*10000) / 10000
}
