package trade

import (
	"errors"
	"strings"

	"github.com/sportpulse/pulse/internal/api"
)

var (
	ErrInvalidAmount   = errors.New("please enter a valid amount")
	ErrInvalidTotal    = errors.New("invalid total amount calculated")
	ErrInvalidSide     = errors.New("invalid trade side")
	ErrUnknownEvent    = errors.New("unknown event")
	ErrUnknownTimeline = errors.New("unknown timeline")
	ErrEventResolved   = errors.New("event already resolved")
	ErrQuoteExpired    = errors.New("quote expired")

	// ErrUserRejected may be returned by a Settler when the user declines to sign.
	ErrUserRejected = errors.New("user rejected transaction")
)

// FailureKind classifies a settlement failure.
type FailureKind int

const (
	Failed FailureKind = iota
	UserRejected
	InsufficientFunds
)

func (k FailureKind) String() string {
	switch k {
	case UserRejected:
		return "user_rejected"
	case InsufficientFunds:
		return "insufficient_funds"
	default:
		return "failed"
	}
}

// SettlementError is returned by Execute when the settler fails.
// Error returns the message shown to the user.
type SettlementError struct {
	Kind   FailureKind
	Reason string
	Err    error
}

func (e *SettlementError) Error() string {
	switch e.Kind {
	case UserRejected:
		return "Transaction rejected by user."
	case InsufficientFunds:
		return "Insufficient USDC balance to complete this transaction."
	default:
		return "Trade failed: " + e.Reason
	}
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}

// classify maps a settler error onto one of the three failure kinds.
func classify(err error) *SettlementError {
	var gw *api.GatewayError
	isGateway := errors.As(err, &gw)

	switch {
	case errors.Is(err, ErrUserRejected),
		isGateway && gw.Code == api.CodeUserRejected:
		return &SettlementError{Kind: UserRejected, Err: err}
	case isGateway && gw.Code == api.CodeInsufficientFunds,
		strings.Contains(strings.ToLower(err.Error()), "insufficient funds"):
		return &SettlementError{Kind: InsufficientFunds, Err: err}
	}

	reason := err.Error()
	if isGateway {
		switch {
		case gw.Reason != "":
			reason = gw.Reason
		case gw.Message != "":
			reason = gw.Message
		}
	}
	if reason == "" {
		reason = "Unknown error"
	}
	return &SettlementError{Kind: Failed, Reason: reason, Err: err}
}
