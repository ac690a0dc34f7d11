package refresher

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sportpulse/pulse/internal/model"
)

// countingSource returns a one-row ladder tagged with a call counter.
type countingSource struct {
	calls atomic.Int64
	err   error
	delay time.Duration
}

func (s *countingSource) Generate(ctx context.Context) (model.Ladder, error) {
	n := s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return model.Ladder{}, s.err
	}
	return model.Ladder{
		GeneratedAt: time.Now(),
		Rows:        []model.LadderRow{{Strike: float64(n)}},
	}, nil
}

func TestRefresher_GeneratesImmediately(t *testing.T) {
	source := &countingSource{}
	delivered := make(chan model.Ladder, 1)
	handler := LadderHandlerFunc(func(ctx context.Context, l model.Ladder) error {
		select {
		case delivered <- l:
		default:
		}
		return nil
	})

	r := New(Config{Interval: time.Hour}, source, handler, nil)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop(context.Background())

	select {
	case l := <-delivered:
		if len(l.Rows) != 1 {
			t.Errorf("len(Rows) = %d, want 1", len(l.Rows))
		}
	case <-time.After(time.Second):
		t.Fatal("no ladder delivered on start")
	}
}

func TestRefresher_TicksAndStops(t *testing.T) {
	source := &countingSource{}
	var delivered atomic.Int64
	handler := LadderHandlerFunc(func(ctx context.Context, l model.Ladder) error {
		delivered.Add(1)
		return nil
	})

	r := New(Config{Interval: 20 * time.Millisecond}, source, handler, nil)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	time.Sleep(110 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if got := delivered.Load(); got < 3 {
		t.Errorf("delivered = %d, want >= 3", got)
	}

	// No dangling timer: nothing is delivered after Stop returns.
	after := delivered.Load()
	time.Sleep(60 * time.Millisecond)
	if got := delivered.Load(); got != after {
		t.Errorf("delivered changed after Stop: %d -> %d", after, got)
	}

	stats := r.Stats()
	if stats.Delivered != after {
		t.Errorf("Stats().Delivered = %d, want %d", stats.Delivered, after)
	}
}

func TestRefresher_DiscardsStaleLadder(t *testing.T) {
	source := &countingSource{delay: 80 * time.Millisecond}
	var delivered atomic.Int64
	handler := LadderHandlerFunc(func(ctx context.Context, l model.Ladder) error {
		delivered.Add(1)
		return nil
	})

	r := New(Config{Interval: time.Hour}, source, handler, nil)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Stop while the first generation is still in flight.
	time.Sleep(20 * time.Millisecond)
	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if got := delivered.Load(); got != 0 {
		t.Errorf("delivered = %d, want 0 for a ladder finished after Stop", got)
	}
	if got := r.Stats().Discarded; got != 1 {
		t.Errorf("Discarded = %d, want 1", got)
	}
}

func TestRefresher_GenerationErrorSkipsTick(t *testing.T) {
	source := &countingSource{err: errors.New("pricing down")}
	handler := LadderHandlerFunc(func(ctx context.Context, l model.Ladder) error {
		t.Error("handler called despite generation error")
		return nil
	})

	r := New(Config{Interval: 15 * time.Millisecond}, source, handler, nil)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if r.Stats().Errors == 0 {
		t.Error("Errors = 0, want > 0")
	}
	if source.calls.Load() < 2 {
		t.Errorf("calls = %d, want the loop to keep ticking after errors", source.calls.Load())
	}
}

func TestRefresher_ParentCancel(t *testing.T) {
	source := &countingSource{}
	handler := LadderHandlerFunc(func(ctx context.Context, l model.Ladder) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	r := New(Config{Interval: 10 * time.Millisecond}, source, handler, nil)
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := r.Stop(stopCtx); err != nil {
		t.Errorf("Stop after parent cancel failed: %v", err)
	}
}
