// Package orderbook generates the synthetic strike ladder and derives
// arbitrage signals from it.
//
// Every Generate call builds an entirely new ladder: strikes are laid out
// around a center value, each strike is priced for both claims through a
// pricing.Pricer, asks are perturbed to emulate a live market, and bids
// are derived from asks so that no row is ever crossed.
//
// Arbitrage is a pure function of a ladder and is recomputed on demand.
package orderbook
