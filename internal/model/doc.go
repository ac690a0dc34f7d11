// Package model defines shared data types used across the SportPulse market core.
//
// Conventions:
//   - Premiums: float64 price of a contingent $1 payout, strictly within (0, 1)
//   - Stored prices: integer hundred-thousandths (0-100,000 = $0.00-$1.00)
//   - Strikes: positive target values a claim is written against
//   - IDs: string for events and timelines, uuid.UUID for trade records
package model
