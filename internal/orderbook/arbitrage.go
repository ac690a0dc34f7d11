package orderbook

import (
	"time"

	"github.com/sportpulse/pulse/internal/model"
)

// Arbitrage is the derived cost of locking in a $1 payout at one strike.
type Arbitrage struct {
	Strike      float64 `json:"strike"`
	TotalCost   float64 `json:"total_cost"` // call.ask + put.ask
	Percentage  float64 `json:"percentage"` // Profit (or loss) as a percent of TotalCost
	Valid       bool    `json:"valid"`
	Opportunity bool    `json:"opportunity"` // Guaranteed profit
}

// ArbitragePercentage returns (1 - total) / total * 100 where total is the
// combined ask of both claims. ok is false when either ask is non-positive.
func ArbitragePercentage(callAsk, putAsk float64) (pct float64, ok bool) {
	if callAsk <= 0 || putAsk <= 0 {
		return 0, false
	}
	total := callAsk + putAsk
	return (1 - total) / total * 100, true
}

// Evaluate computes the arbitrage signal for one row.
func Evaluate(row model.LadderRow) Arbitrage {
	pct, ok := ArbitragePercentage(row.Call.Ask, row.Put.Ask)
	return Arbitrage{
		Strike:      row.Strike,
		TotalCost:   row.Call.Ask + row.Put.Ask,
		Percentage:  pct,
		Valid:       ok,
		Opportunity: ok && pct > 0,
	}
}

// IsOpportunity reports whether buying both claims at row yields a riskless profit.
func IsOpportunity(row model.LadderRow) bool {
	return Evaluate(row).Opportunity
}

// Analyze evaluates every row of the ladder, in ladder order.
func Analyze(ladder model.Ladder) []Arbitrage {
	out := make([]Arbitrage, len(ladder.Rows))
	for i, row := range ladder.Rows {
		out[i] = Evaluate(row)
	}
	return out
}

// Opportunities returns only the rows flagged as opportunities.
func Opportunities(ladder model.Ladder) []Arbitrage {
	var out []Arbitrage
	for _, row := range ladder.Rows {
		if arb := Evaluate(row); arb.Opportunity {
			out = append(out, arb)
		}
	}
	return out
}

// Snapshot is a ladder with its arbitrage rows, as published to clients.
type Snapshot struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Rows        []model.LadderRow `json:"rows"`
	Arbitrage   []Arbitrage       `json:"arbitrage"`
}

// NewSnapshot pairs ladder with a fresh analysis of it.
func NewSnapshot(ladder model.Ladder) Snapshot {
	return Snapshot{
		GeneratedAt: ladder.GeneratedAt,
		Rows:        ladder.Rows,
		Arbitrage:   Analyze(ladder),
	}
}

// Ladder returns the snapshot's ladder.
func (s Snapshot) Ladder() model.Ladder {
	return model.Ladder{GeneratedAt: s.GeneratedAt, Rows: s.Rows}
}
