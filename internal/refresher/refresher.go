package refresher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sportpulse/pulse/internal/model"
)

// LadderSource produces a fresh ladder on each call.
type LadderSource interface {
	Generate(ctx context.Context) (model.Ladder, error)
}

// LadderHandler receives regenerated ladders.
type LadderHandler interface {
	HandleLadder(ctx context.Context, ladder model.Ladder) error
}

// LadderHandlerFunc is a function adapter for LadderHandler.
type LadderHandlerFunc func(context.Context, model.Ladder) error

func (f LadderHandlerFunc) HandleLadder(ctx context.Context, l model.Ladder) error {
	return f(ctx, l)
}

// Config holds refresher configuration.
type Config struct {
	Interval time.Duration // Regeneration cadence (default: 5s)
	Timeout  time.Duration // Per-generation timeout (default: Interval)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 5 * time.Second,
		Timeout:  5 * time.Second,
	}
}

// Stats holds refresher counters.
type Stats struct {
	Generated int64
	Delivered int64
	Errors    int64
	Discarded int64
}

// Refresher periodically regenerates the ladder for one consumer.
type Refresher struct {
	cfg     Config
	source  LadderSource
	handler LadderHandler
	logger  *slog.Logger

	mu    sync.Mutex
	stats Stats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Refresher.
func New(cfg Config, source LadderSource, handler LadderHandler, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	return &Refresher{
		cfg:     cfg,
		source:  source,
		handler: handler,
		logger:  logger,
	}
}

// Start begins the regeneration loop.
func (r *Refresher) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.run()

	r.logger.Debug("ladder refresher started", "interval", r.cfg.Interval)
	return nil
}

// Stop cancels the loop and waits for it to exit.
func (r *Refresher) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Debug("ladder refresher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns current counters.
func (r *Refresher) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// run is the main regeneration loop.
func (r *Refresher) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	// Generate immediately on start.
	r.refresh()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.refresh()
		}
	}
}

// refresh generates one ladder and delivers it unless the consumer is gone.
func (r *Refresher) refresh() {
	ctx, cancel := context.WithTimeout(r.ctx, r.cfg.Timeout)
	defer cancel()

	ladder, err := r.source.Generate(ctx)
	if err != nil {
		if r.ctx.Err() != nil {
			return
		}
		r.logger.Warn("ladder generation failed", "err", err)
		r.count(func(s *Stats) { s.Errors++ })
		return
	}
	r.count(func(s *Stats) { s.Generated++ })

	// Stale result: the consumer stopped us while we were generating.
	if r.ctx.Err() != nil {
		r.count(func(s *Stats) { s.Discarded++ })
		return
	}

	if err := r.handler.HandleLadder(r.ctx, ladder); err != nil {
		r.logger.Warn("ladder delivery failed", "err", err)
		r.count(func(s *Stats) { s.Errors++ })
		return
	}
	r.count(func(s *Stats) { s.Delivered++ })
}

func (r *Refresher) count(fn func(*Stats)) {
	r.mu.Lock()
	fn(&r.stats)
	r.mu.Unlock()
}
