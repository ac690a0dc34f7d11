package pricing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sportpulse/pulse/internal/model"
)

// DefaultFallbackRate is the fraction of the strike charged when pricing fails.
const DefaultFallbackRate = 0.008

// PremiumClient fetches a premium from an external oracle.
type PremiumClient interface {
	GetPremium(ctx context.Context, strike float64, side string) (float64, error)
}

// Remote prices claims through an external oracle.
type Remote struct {
	client PremiumClient
}

// NewRemote creates an oracle-backed pricer.
func NewRemote(client PremiumClient) *Remote {
	return &Remote{client: client}
}

// Price asks the oracle and rejects answers outside (0, 1).
func (r *Remote) Price(ctx context.Context, strike float64, class model.OptionClass) (float64, error) {
	if !validStrike(strike) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidStrike, strike)
	}
	premium, err := r.client.GetPremium(ctx, strike, class.Letter())
	if err != nil {
		return 0, fmt.Errorf("oracle premium: %w", err)
	}
	if !(premium > 0 && premium < 1) {
		return 0, fmt.Errorf("oracle premium %v outside (0, 1)", premium)
	}
	return premium, nil
}

// Quoter prices claims and falls back to strike*FallbackRate on failure.
type Quoter struct {
	pricer       Pricer
	fallbackRate float64
	logger       *slog.Logger
}

// NewQuoter creates a Quoter. A non-positive rate selects DefaultFallbackRate.
func NewQuoter(pricer Pricer, fallbackRate float64, logger *slog.Logger) *Quoter {
	if logger == nil {
		logger = slog.Default()
	}
	if fallbackRate <= 0 {
		fallbackRate = DefaultFallbackRate
	}
	return &Quoter{
		pricer:       pricer,
		fallbackRate: fallbackRate,
		logger:       logger,
	}
}

// Pricer returns the underlying pricer.
func (q *Quoter) Pricer() Pricer {
	return q.pricer
}

// Quote returns the premium and whether it came from the fallback rule.
// The fallback is a last-resort estimate and is not bounded to (0, 1).
func (q *Quoter) Quote(ctx context.Context, strike float64, class model.OptionClass) (premium float64, fallback bool) {
	premium, err := q.pricer.Price(ctx, strike, class)
	if err == nil {
		return premium, false
	}

	fb := q.Fallback(strike)
	q.logger.Warn("option pricing failed, using fallback premium",
		"strike", strike,
		"type", class,
		"fallback", fb,
		"error", err,
	)
	return fb, true
}

// Fallback returns the deterministic fallback premium for strike.
func (q *Quoter) Fallback(strike float64) float64 {
	return strike * q.fallbackRate
}
