// Package trade turns ladder prices into executable quotes, validates order
// input, settles trades through the gateway and records them locally.
//
// Execution flow:
//
//	RequestQuote -> ParseAmount -> Total -> Settler.Settle -> TradeStore.AddTrade
//
// Settlement is attempted exactly once. A failed local write after a
// successful settlement is reported on the Result, never as an error, since
// the funds have already moved.
package trade
