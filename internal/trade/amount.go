package trade

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sportpulse/pulse/internal/model"
)

// USDCDecimals is the precision of settlement totals.
const USDCDecimals = 6

// ParseAmount parses a user-entered option quantity. It must be a positive number.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return amount, nil
}

// Total returns the USDC a trade moves: premium per option when buying,
// collateral per option when selling.
func Total(quote model.OptionQuote, side model.TradeSide, amount decimal.Decimal) (decimal.Decimal, error) {
	var unit float64
	switch side {
	case model.Buy:
		unit = quote.Premium
	case model.Sell:
		unit = quote.Collateral
	default:
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}

	total := amount.Mul(decimal.NewFromFloat(unit)).Round(USDCDecimals)
	if !total.IsPositive() {
		return decimal.Zero, ErrInvalidTotal
	}
	return total, nil
}
