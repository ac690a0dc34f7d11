// Package pricing computes premiums for contingent $1 payouts.
//
// Pricers:
//   - BlackScholes: closed-form cash-or-nothing digital option, fully local
//   - Remote: delegates to an external pricing oracle over HTTP
//
// Quoter wraps any Pricer and substitutes a fallback premium when pricing
// fails, marking the result so callers can label it.
package pricing
