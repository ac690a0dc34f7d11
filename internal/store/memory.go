package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/sportpulse/pulse/internal/model"
)

// Memory is an in-process TradeStore. Writes are serialized by a mutex.
type Memory struct {
	mu       sync.RWMutex
	records  []model.TradeRecord
	ids      map[string]struct{}
	capacity int
	closed   bool
}

// NewMemory creates a Memory store. capacity <= 0 means unlimited.
func NewMemory(capacity int) *Memory {
	return &Memory{
		ids:      make(map[string]struct{}),
		capacity: capacity,
	}
}

// AddTrade appends rec. Re-adding an existing ID is a no-op.
func (m *Memory) AddTrade(ctx context.Context, rec model.TradeRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec = withID(rec)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrUnavailable
	}
	key := rec.ID.String()
	if _, ok := m.ids[key]; ok {
		return nil
	}
	if m.capacity > 0 && len(m.records) >= m.capacity {
		return fmt.Errorf("%w: %d records", ErrQuotaExceeded, m.capacity)
	}

	m.records = append(m.records, rec)
	m.ids[key] = struct{}{}
	return nil
}

// TradesByEventAndTimeline returns a copy of the matching records.
func (m *Memory) TradesByEventAndTimeline(ctx context.Context, eventID, timeline string) ([]model.TradeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrUnavailable
	}

	out := []model.TradeRecord{}
	for _, rec := range m.records {
		if rec.EventID == eventID && rec.Timeline == timeline {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Ping reports ErrUnavailable once the store is closed.
func (m *Memory) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrUnavailable
	}
	return nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Close makes every subsequent call fail with ErrUnavailable.
func (m *Memory) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}
