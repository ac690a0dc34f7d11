package trade

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sportpulse/pulse/internal/catalog"
	"github.com/sportpulse/pulse/internal/model"
	"github.com/sportpulse/pulse/internal/pricing"
	"github.com/sportpulse/pulse/internal/store"
)

// Default quote terms.
const (
	DefaultCollateralRate = 0.1
	DefaultQuoteTTL       = 21 * 24 * time.Hour

	// persistTimeout bounds the history write after a settlement succeeded.
	persistTimeout = 5 * time.Second
)

// Order is what the settler is asked to execute.
type Order struct {
	EventID  string
	Outcome  string // Timeline
	Class    model.OptionClass
	Side     model.TradeSide
	Strike   float64
	Quantity decimal.Decimal
	Total    decimal.Decimal // USDC
	Expiry   time.Time
}

// Settler moves funds for an order and returns the transaction hash.
type Settler interface {
	Settle(ctx context.Context, order Order) (txHash string, err error)
}

// Config holds quote terms.
type Config struct {
	CollateralRate float64          // Collateral per option as a fraction of the strike
	QuoteTTL       time.Duration    // Quote expiry horizon
	Now            func() time.Time // Clock, time.Now when nil
}

// Result is the outcome of a settled trade.
type Result struct {
	Record     model.TradeRecord
	Total      decimal.Decimal
	PersistErr error // Non-fatal: settled but not recorded locally
}

// Service quotes and executes trades.
type Service struct {
	cfg     Config
	quoter  *pricing.Quoter
	catalog catalog.Catalog
	settler Settler
	store   store.TradeStore
	logger  *slog.Logger
}

// NewService creates a trade service.
func NewService(cfg Config, quoter *pricing.Quoter, cat catalog.Catalog, settler Settler, st store.TradeStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.CollateralRate <= 0 {
		cfg.CollateralRate = DefaultCollateralRate
	}
	if cfg.QuoteTTL <= 0 {
		cfg.QuoteTTL = DefaultQuoteTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		cfg:     cfg,
		quoter:  quoter,
		catalog: cat,
		settler: settler,
		store:   st,
		logger:  logger,
	}
}

// RequestQuote prices one claim on an event timeline.
func (s *Service) RequestQuote(ctx context.Context, eventID, timeline string, strike float64, class model.OptionClass) (model.OptionQuote, error) {
	if err := s.checkMarket(eventID, timeline); err != nil {
		return model.OptionQuote{}, err
	}
	if !class.Valid() {
		return model.OptionQuote{}, fmt.Errorf("invalid option type %q", class)
	}
	if !(strike > 0) || math.IsInf(strike, 0) {
		return model.OptionQuote{}, fmt.Errorf("%w: %v", pricing.ErrInvalidStrike, strike)
	}

	premium, fallback := s.quoter.Quote(ctx, strike, class)

	description := fmt.Sprintf("%s option for %s at target $%s",
		strings.ToUpper(string(class)), TimelineLabel(timeline), formatStrike(strike))
	if fallback {
		description += " (Fallback Premium)"
	}

	return model.OptionQuote{
		ID:          QuoteID(eventID, timeline, class, strike),
		EventID:     eventID,
		Timeline:    timeline,
		Class:       class,
		Strike:      strike,
		Premium:     premium,
		Collateral:  strike * s.cfg.CollateralRate,
		ExpiresAt:   s.cfg.Now().Add(s.cfg.QuoteTTL),
		Fallback:    fallback,
		Description: description,
	}, nil
}

// Execute validates the amount, settles once and records the trade.
func (s *Service) Execute(ctx context.Context, quote model.OptionQuote, side model.TradeSide, amountText string) (Result, error) {
	amount, err := ParseAmount(amountText)
	if err != nil {
		return Result{}, err
	}
	total, err := Total(quote, side, amount)
	if err != nil {
		return Result{}, err
	}
	if err := s.checkMarket(quote.EventID, quote.Timeline); err != nil {
		return Result{}, err
	}
	now := s.cfg.Now()
	if !quote.ExpiresAt.IsZero() && !now.Before(quote.ExpiresAt) {
		return Result{}, fmt.Errorf("%w: %s", ErrQuoteExpired, quote.ID)
	}

	txHash, err := s.settler.Settle(ctx, Order{
		EventID:  quote.EventID,
		Outcome:  quote.Timeline,
		Class:    quote.Class,
		Side:     side,
		Strike:   quote.Strike,
		Quantity: amount,
		Total:    total,
		Expiry:   quote.ExpiresAt,
	})
	if err != nil {
		settleErr := classify(err)
		s.logger.Warn("trade settlement failed",
			"quote", quote.ID,
			"side", side,
			"kind", settleErr.Kind,
			"error", err,
		)
		return Result{}, settleErr
	}

	rec := model.TradeRecord{
		ID:         uuid.New(),
		EventID:    quote.EventID,
		Timeline:   quote.Timeline,
		Class:      quote.Class,
		Side:       side,
		Strike:     quote.Strike,
		Premium:    quote.Premium,
		Collateral: quote.Collateral,
		Amount:     amount.InexactFloat64(),
		Timestamp:  now,
		TxHash:     txHash,
		Status:     model.StatusCompleted,
	}
	res := Result{Record: rec, Total: total}

	// The funds have moved; a caller going away must not drop the record.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if err := s.store.AddTrade(persistCtx, rec); err != nil {
		s.logger.Warn("trade settled but not recorded",
			"trade_id", rec.ID,
			"tx_hash", txHash,
			"error", err,
		)
		res.PersistErr = err
	}

	s.logger.Info("trade executed",
		"quote", quote.ID,
		"side", side,
		"amount", amount.String(),
		"total", total.String(),
		"tx_hash", txHash,
	)
	return res, nil
}

// History returns recorded trades for an event timeline in insertion order.
func (s *Service) History(ctx context.Context, eventID, timeline string) ([]model.TradeRecord, error) {
	return s.store.TradesByEventAndTimeline(ctx, eventID, timeline)
}

func (s *Service) checkMarket(eventID, timeline string) error {
	ev, ok := s.catalog.Event(eventID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEvent, eventID)
	}
	if !ev.HasTimeline(timeline) {
		return fmt.Errorf("%w: %q for event %q", ErrUnknownTimeline, timeline, eventID)
	}
	if ev.Resolved {
		return fmt.Errorf("%w: %q", ErrEventResolved, eventID)
	}
	return nil
}

// QuoteID returns the stable quote identifier "<event>-<timeline>-<class>-<strike>".
func QuoteID(eventID, timeline string, class model.OptionClass, strike float64) string {
	return fmt.Sprintf("%s-%s-%s-%s", eventID, timeline, class, strconv.FormatFloat(strike, 'f', -1, 64))
}

// TimelineLabel turns a timeline identifier like "celticsWin" into "Celtics Win".
func TimelineLabel(timeline string) string {
	var b strings.Builder
	for i, r := range timeline {
		switch {
		case i == 0:
			r = unicode.ToUpper(r)
		case unicode.IsUpper(r):
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

var strikePrinter = message.NewPrinter(language.English)

func formatStrike(strike float64) string {
	if strike == math.Trunc(strike) {
		return strikePrinter.Sprintf("%d", int64(strike))
	}
	return strikePrinter.Sprintf("%.2f", strike)
}
