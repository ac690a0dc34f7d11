package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/sportpulse/pulse/internal/model"
)

var (
	// ErrUnavailable is returned when the backing store cannot be reached or is closed.
	ErrUnavailable = errors.New("trade store unavailable")

	// ErrQuotaExceeded is returned when the store has no room for another record.
	ErrQuotaExceeded = errors.New("trade store quota exceeded")
)

// TradeStore is the local trade history.
type TradeStore interface {
	// AddTrade appends a record. A nil ID is replaced with a generated one.
	AddTrade(ctx context.Context, rec model.TradeRecord) error

	// TradesByEventAndTimeline returns matching records in insertion order.
	TradesByEventAndTimeline(ctx context.Context, eventID, timeline string) ([]model.TradeRecord, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}

// withID assigns a fresh UUID when the record has none.
func withID(rec model.TradeRecord) model.TradeRecord {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return rec
}
