package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sportpulse/pulse/internal/model"
)

// DB is the subset of *pgxpool.Pool used by Postgres.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS trade_history (
	seq         BIGINT GENERATED ALWAYS AS IDENTITY,
	trade_id    UUID PRIMARY KEY,
	event_id    TEXT NOT NULL,
	timeline    TEXT NOT NULL,
	option_type TEXT NOT NULL,
	side        TEXT NOT NULL,
	strike      DOUBLE PRECISION NOT NULL,
	premium     BIGINT NOT NULL,
	collateral  BIGINT NOT NULL,
	amount      DOUBLE PRECISION NOT NULL,
	created_at  BIGINT NOT NULL,
	tx_hash     TEXT NOT NULL,
	status      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS trade_history_event_timeline_idx
	ON trade_history (event_id, timeline, seq);
`

// Postgres stores trade history in an append-only table.
type Postgres struct {
	db     DB
	logger *slog.Logger
}

// NewPostgres creates a Postgres store over db (normally a *pgxpool.Pool).
func NewPostgres(db DB, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{db: db, logger: logger}
}

// EnsureSchema creates the trade_history table if needed.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if p.db == nil {
		return ErrUnavailable
	}
	if _, err := p.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create trade_history: %w", err)
	}
	return nil
}

// AddTrade inserts rec with ON CONFLICT DO NOTHING.
func (p *Postgres) AddTrade(ctx context.Context, rec model.TradeRecord) error {
	if p.db == nil {
		return ErrUnavailable
	}
	r := toRow(withID(rec))

	ct, err := p.db.Exec(ctx, `
		INSERT INTO trade_history (trade_id, event_id, timeline, option_type, side, strike, premium, collateral, amount, created_at, tx_hash, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (trade_id) DO NOTHING
	`, r.TradeID, r.EventID, r.Timeline, r.OptionType, r.Side, r.Strike, r.Premium, r.Collateral, r.Amount, r.CreatedAt, r.TxHash, r.Status)
	if err != nil {
		return fmt.Errorf("%w: insert trade: %w", ErrUnavailable, err)
	}

	if ct.RowsAffected() == 0 {
		p.logger.Debug("trade already recorded", "trade_id", r.TradeID)
	}
	return nil
}

// TradesByEventAndTimeline returns matching records ordered by insertion.
func (p *Postgres) TradesByEventAndTimeline(ctx context.Context, eventID, timeline string) ([]model.TradeRecord, error) {
	if p.db == nil {
		return nil, ErrUnavailable
	}

	rows, err := p.db.Query(ctx, `
		SELECT trade_id, event_id, timeline, option_type, side, strike, premium, collateral, amount, created_at, tx_hash, status
		FROM trade_history
		WHERE event_id = $1 AND timeline = $2
		ORDER BY seq
	`, eventID, timeline)
	if err != nil {
		return nil, fmt.Errorf("%w: query trades: %w", ErrUnavailable, err)
	}

	collected, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (tradeRow, error) {
		var r tradeRow
		err := row.Scan(&r.TradeID, &r.EventID, &r.Timeline, &r.OptionType, &r.Side, &r.Strike,
			&r.Premium, &r.Collateral, &r.Amount, &r.CreatedAt, &r.TxHash, &r.Status)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan trades: %w", err)
	}

	out := make([]model.TradeRecord, len(collected))
	for i, r := range collected {
		out[i] = r.toRecord()
	}
	return out, nil
}

// Ping verifies the database is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	if p.db == nil {
		return ErrUnavailable
	}
	if err := p.db.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return nil
}

// tradeRow represents a row of the trade_history table.
type tradeRow struct {
	TradeID    uuid.UUID
	EventID    string
	Timeline   string
	OptionType string
	Side       string
	Strike     float64
	Premium    int64 // Hundred-thousandths
	Collateral int64 // Hundred-thousandths
	Amount     float64
	CreatedAt  int64 // Microseconds
	TxHash     string
	Status     string
}

func toRow(rec model.TradeRecord) tradeRow {
	return tradeRow{
		TradeID:    rec.ID,
		EventID:    rec.EventID,
		Timeline:   rec.Timeline,
		OptionType: string(rec.Class),
		Side:       string(rec.Side),
		Strike:     rec.Strike,
		Premium:    model.ToInternal(rec.Premium),
		Collateral: model.ToInternal(rec.Collateral),
		Amount:     rec.Amount,
		CreatedAt:  rec.Timestamp.UnixMicro(),
		TxHash:     rec.TxHash,
		Status:     rec.Status,
	}
}

func (r tradeRow) toRecord() model.TradeRecord {
	return model.TradeRecord{
		ID:         r.TradeID,
		EventID:    r.EventID,
		Timeline:   r.Timeline,
		Class:      model.OptionClass(r.OptionType),
		Side:       model.TradeSide(r.Side),
		Strike:     r.Strike,
		Premium:    model.FromInternal(r.Premium),
		Collateral: model.FromInternal(r.Collateral),
		Amount:     r.Amount,
		Timestamp:  time.UnixMicro(r.CreatedAt).UTC(),
		TxHash:     r.TxHash,
		Status:     r.Status,
	}
}
