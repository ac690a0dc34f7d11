package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Enumerations
// -----------------------------------------------------------------------------

// OptionClass identifies one of the two complementary claims on a strike.
type OptionClass string

const (
	Call OptionClass = "call" // Outcome occurs
	Put  OptionClass = "put"  // Outcome does not occur
)

// Letter returns the single-letter wire form ("C" or "P").
func (c OptionClass) Letter() string {
	if c == Put {
		return "P"
	}
	return "C"
}

// Valid reports whether c is call or put.
func (c OptionClass) Valid() bool {
	return c == Call || c == Put
}

// ParseOptionClass accepts "call", "put", "C" or "P".
func ParseOptionClass(s string) (OptionClass, error) {
	switch s {
	case "call", "C", "c":
		return Call, nil
	case "put", "P", "p":
		return Put, nil
	}
	return "", fmt.Errorf("unknown option class %q", s)
}

// TradeSide is the direction of a trade.
type TradeSide string

const (
	Buy  TradeSide = "buy"  // Pay premium
	Sell TradeSide = "sell" // Post collateral
)

// ParseTradeSide accepts "buy" or "sell".
func ParseTradeSide(s string) (TradeSide, error) {
	switch TradeSide(s) {
	case Buy, Sell:
		return TradeSide(s), nil
	}
	return "", fmt.Errorf("unknown trade side %q", s)
}

// Trade record statuses.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// -----------------------------------------------------------------------------
// Catalog Types
// -----------------------------------------------------------------------------

// Event is a sports fixture with its mutually exclusive outcome timelines.
type Event struct {
	ID          string    `json:"id"`          // Primary key (e.g., "basketball-finals-2025")
	Name        string    `json:"name"`        // Display name
	Description string    `json:"description"` // Long description
	Date        time.Time `json:"date"`        // Scheduled start
	Timelines   []string  `json:"timelines"`   // Outcome identifiers (e.g., "celticsWin")
	Resolved    bool      `json:"resolved"`    // Settled events no longer trade
}

// HasTimeline reports whether timeline is one of the event's outcomes.
func (e Event) HasTimeline(timeline string) bool {
	for _, tl := range e.Timelines {
		if tl == timeline {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Ladder Types
// -----------------------------------------------------------------------------

// Quote is a two-sided premium for one claim. Invariant: 0 < Bid <= Ask < 1.
type Quote struct {
	Ask float64 `json:"ask"`
	Bid float64 `json:"bid"`
}

// Crossed reports whether the quote violates Bid <= Ask.
func (q Quote) Crossed() bool {
	return q.Bid > q.Ask
}

// LadderRow is one strike of the order book with both complementary claims.
type LadderRow struct {
	Strike float64 `json:"strike"`
	Call   Quote   `json:"call"`
	Put    Quote   `json:"put"`
}

// Ladder is a full regeneration of the order book, ascending by strike.
type Ladder struct {
	GeneratedAt time.Time   `json:"generated_at"`
	Rows        []LadderRow `json:"rows"`
}

// -----------------------------------------------------------------------------
// Quote and Trade Types
// -----------------------------------------------------------------------------

// OptionQuote is an immutable, on-demand price for one claim on one timeline.
type OptionQuote struct {
	ID          string      `json:"id"`
	EventID     string      `json:"event_id"`
	Timeline    string      `json:"timeline"`
	Class       OptionClass `json:"type"`
	Strike      float64     `json:"strike"`
	Premium     float64     `json:"premium"`
	Collateral  float64     `json:"collateral"`
	ExpiresAt   time.Time   `json:"expiry_date"`
	Fallback    bool        `json:"fallback"` // Priced by the fallback rule, not the model
	Description string      `json:"description"`
}

// TradeRecord captures a settled trade. Never mutated after creation.
type TradeRecord struct {
	ID         uuid.UUID   `json:"id"`
	EventID    string      `json:"event_id"`
	Timeline   string      `json:"timeline"`
	Class      OptionClass `json:"type"`
	Side       TradeSide   `json:"side"`
	Strike     float64     `json:"strike"`
	Premium    float64     `json:"premium"`
	Collateral float64     `json:"collateral"`
	Amount     float64     `json:"amount"`
	Timestamp  time.Time   `json:"timestamp"`
	TxHash     string      `json:"tx_hash"`
	Status     string      `json:"status"`
}

// -----------------------------------------------------------------------------
// Price Conversion
// -----------------------------------------------------------------------------

// PriceScale is the number of internal units per dollar.
const PriceScale = 100000

// ToInternal converts a dollar amount to hundred-thousandths.
func ToInternal(dollars float64) int64 {
	// Round to avoid floating point errors (e.g., 0.52 * 100000 = 51999.999...)
	return int64(math.Round(dollars * PriceScale))
}

// FromInternal converts hundred-thousandths back to dollars.
func FromInternal(units int64) float64 {
	return float64(units) / PriceScale
}
