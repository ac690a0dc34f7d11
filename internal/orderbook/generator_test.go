package orderbook

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sportpulse/pulse/internal/model"
	"github.com/sportpulse/pulse/internal/pricing"
)

func newTestGenerator(opts ...Option) *Generator {
	return NewGenerator(DefaultPolicy(), pricing.NewBlackScholes(pricing.DefaultParams()), opts...)
}

func TestGenerator_Strikes(t *testing.T) {
	g := newTestGenerator()

	strikes := g.Strikes()
	if len(strikes) != 11 {
		t.Fatalf("len(strikes) = %d, want 11", len(strikes))
	}
	if strikes[0] != 7500 {
		t.Errorf("lowest strike = %v, want 7500", strikes[0])
	}
	if strikes[len(strikes)-1] != 12500 {
		t.Errorf("highest strike = %v, want 12500", strikes[len(strikes)-1])
	}
	if strikes[5] != 10000 {
		t.Errorf("middle strike = %v, want 10000", strikes[5])
	}
}

func TestGenerator_SkipsNonPositiveStrikes(t *testing.T) {
	policy := DefaultPolicy()
	policy.Center = 1000
	policy.Step = 500
	policy.Count = 7 // 1000 + {-3..3}*500

	g := NewGenerator(policy, pricing.NewBlackScholes(pricing.DefaultParams()))
	strikes := g.Strikes()

	want := []float64{500, 1000, 1500, 2000, 2500}
	if len(strikes) != len(want) {
		t.Fatalf("strikes = %v, want %v", strikes, want)
	}
	for i := range want {
		if strikes[i] != want[i] {
			t.Errorf("strikes[%d] = %v, want %v", i, strikes[i], want[i])
		}
	}
}

func TestGenerator_LadderInvariants(t *testing.T) {
	g := newTestGenerator(WithSeed(42))
	ctx := context.Background()

	// Many regenerations to exercise the jitter.
	for n := 0; n < 50; n++ {
		ladder, err := g.Generate(ctx)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if len(ladder.Rows) != 11 {
			t.Fatalf("len(Rows) = %d, want 11", len(ladder.Rows))
		}

		for i, row := range ladder.Rows {
			if i > 0 && row.Strike <= ladder.Rows[i-1].Strike {
				t.Errorf("rows not ascending at %d: %v <= %v", i, row.Strike, ladder.Rows[i-1].Strike)
			}
			for name, q := range map[string]model.Quote{"call": row.Call, "put": row.Put} {
				if q.Crossed() {
					t.Errorf("strike %v %s crossed: bid %v > ask %v", row.Strike, name, q.Bid, q.Ask)
				}
				if !(q.Bid > 0 && q.Ask < 1) {
					t.Errorf("strike %v %s out of (0,1): %+v", row.Strike, name, q)
				}
			}
		}
	}
}

func TestGenerator_IndependentResults(t *testing.T) {
	g := newTestGenerator(WithSeed(7))
	ctx := context.Background()

	first, err := g.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	snapshot := append([]model.LadderRow(nil), first.Rows...)

	second, err := g.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Mutating one ladder must not leak into the other.
	second.Rows[0].Call.Ask = 0.5
	for i := range snapshot {
		if first.Rows[i] != snapshot[i] {
			t.Errorf("first ladder row %d changed after second generation", i)
		}
	}
	if &first.Rows[0] == &second.Rows[0] {
		t.Error("ladders share backing storage")
	}
	if len(first.Rows) != len(second.Rows) {
		t.Errorf("ladder lengths differ: %d vs %d", len(first.Rows), len(second.Rows))
	}
}

func TestGenerator_NoJitterIsDeterministic(t *testing.T) {
	policy := DefaultPolicy()
	policy.Jitter = 0
	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	g := NewGenerator(policy, pricing.NewBlackScholes(pricing.DefaultParams()), WithClock(func() time.Time { return fixed }))

	a, _ := g.Generate(context.Background())
	b, _ := g.Generate(context.Background())

	if !a.GeneratedAt.Equal(fixed) {
		t.Errorf("GeneratedAt = %v, want %v", a.GeneratedAt, fixed)
	}
	for i := range a.Rows {
		if a.Rows[i] != b.Rows[i] {
			t.Errorf("row %d differs without jitter: %+v vs %+v", i, a.Rows[i], b.Rows[i])
		}
		if a.Rows[i].Call.Ask-a.Rows[i].Call.Bid > policy.Spread+1e-4 {
			t.Errorf("row %d spread wider than policy", i)
		}
	}
}

func TestGenerator_BidFloor(t *testing.T) {
	policy := DefaultPolicy()
	policy.Jitter = 0
	policy.Spread = 0.5
	g := NewGenerator(policy, pricing.PricerFunc(func(ctx context.Context, strike float64, class model.OptionClass) (float64, error) {
		return 0.2, nil
	}))

	ladder, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for _, row := range ladder.Rows {
		if row.Call.Bid != 0.01 || row.Call.Ask != 0.2 {
			t.Errorf("call quote = %+v, want bid floored at 0.01 and ask 0.2", row.Call)
		}
	}
}

func TestGenerator_ConcurrentPricing(t *testing.T) {
	var calls atomic.Int32
	pricer := pricing.PricerFunc(func(ctx context.Context, strike float64, class model.OptionClass) (float64, error) {
		calls.Add(1)
		return 0.5, nil
	})

	g := NewGenerator(DefaultPolicy(), pricer)
	if _, err := g.Generate(context.Background()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := calls.Load(); got != 22 {
		t.Errorf("pricing calls = %d, want 22 (11 strikes x 2 classes)", got)
	}
}

func TestGenerator_PricingError(t *testing.T) {
	boom := errors.New("pricing down")
	g := NewGenerator(DefaultPolicy(), pricing.PricerFunc(func(ctx context.Context, strike float64, class model.OptionClass) (float64, error) {
		return 0, boom
	}))

	if _, err := g.Generate(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Generate() error = %v, want %v", err, boom)
	}
}
