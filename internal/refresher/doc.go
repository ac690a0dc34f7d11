// Package refresher implements the scheduled order book regeneration.
//
// The Refresher:
//   - Generates a ladder immediately on start, then on every tick (default 5s)
//   - Hands each ladder to a LadderHandler
//   - Is owned by exactly one consumer and stopped when that consumer goes away
//   - Drops ladders that finish generating after the consumer has stopped it
package refresher
