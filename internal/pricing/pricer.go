package pricing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sportpulse/pulse/internal/model"
)

// ErrInvalidStrike is returned for non-positive or non-finite strikes.
var ErrInvalidStrike = errors.New("strike must be a positive finite number")

// Pricer computes the premium of a contingent $1 payout.
// Implementations must be safe for concurrent use.
type Pricer interface {
	Price(ctx context.Context, strike float64, class model.OptionClass) (float64, error)
}

// PricerFunc is a function adapter for Pricer.
type PricerFunc func(ctx context.Context, strike float64, class model.OptionClass) (float64, error)

func (f PricerFunc) Price(ctx context.Context, strike float64, class model.OptionClass) (float64, error) {
	return f(ctx, strike, class)
}

// Params holds the closed-form model assumptions.
type Params struct {
	Reference    float64       // Underlying value strikes are priced against
	Volatility   float64       // Annualized sigma
	RiskFreeRate float64       // Annualized continuous rate
	TimeToExpiry time.Duration // Horizon of the claim
	MinPremium   float64       // Lower clamp, > 0
	MaxPremium   float64       // Upper clamp, < 1
}

// DefaultParams returns the short-dated demo assumptions.
func DefaultParams() Params {
	return Params{
		Reference:    10000,
		Volatility:   0.6,
		RiskFreeRate: 0.05,
		TimeToExpiry: 21 * 24 * time.Hour,
		MinPremium:   0.01,
		MaxPremium:   0.99,
	}
}

// BlackScholes prices binary claims with the cash-or-nothing closed form.
type BlackScholes struct {
	params Params
}

// NewBlackScholes creates a local pricer. Clamp bounds outside (0, 1) take
// the DefaultParams values.
func NewBlackScholes(params Params) *BlackScholes {
	def := DefaultParams()
	if params.MinPremium <= 0 || params.MinPremium >= 1 {
		params.MinPremium = def.MinPremium
	}
	if params.MaxPremium <= params.MinPremium || params.MaxPremium >= 1 {
		params.MaxPremium = def.MaxPremium
	}
	return &BlackScholes{params: params}
}

// Params returns the pricer's assumptions.
func (b *BlackScholes) Params() Params {
	return b.params
}

// Price returns e^{-rT}N(d2) for calls and e^{-rT}N(-d2) for puts,
// clamped into [MinPremium, MaxPremium].
func (b *BlackScholes) Price(ctx context.Context, strike float64, class model.OptionClass) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !validStrike(strike) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidStrike, strike)
	}
	if !class.Valid() {
		return 0, fmt.Errorf("unknown option class %q", class)
	}

	p := b.params
	premium := digitalPrice(p.Reference, strike, yearFraction(p.TimeToExpiry), p.RiskFreeRate, p.Volatility, class)
	return Clamp(premium, p.MinPremium, p.MaxPremium), nil
}

// digitalPrice computes the unclamped cash-or-nothing premium.
func digitalPrice(S, K, T, r, sigma float64, class model.OptionClass) float64 {
	discount := math.Exp(-r * T)
	if T <= 0 || sigma <= 0 || S <= 0 {
		// Degenerate horizon: intrinsic indicator.
		if (class == model.Call) == (S > K) {
			return discount
		}
		return 0
	}

	d2 := (math.Log(S/K) + (r-0.5*sigma*sigma)*T) / (sigma * math.Sqrt(T))
	if class == model.Call {
		return discount * stdNormCDF(d2)
	}
	return discount * stdNormCDF(-d2)
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func yearFraction(d time.Duration) float64 {
	return d.Hours() / 24 / 365.0
}

func validStrike(strike float64) bool {
	return strike > 0 && !math.IsInf(strike, 0) && !math.IsNaN(strike)
}

func stdNormCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
