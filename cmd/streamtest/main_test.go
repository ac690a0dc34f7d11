package main

import (
	"encoding/json"
	"testing"

	"github.com/sportpulse/pulse/internal/model"
	"github.com/sportpulse/pulse/internal/orderbook"
)

func TestSessionObserve(t *testing.T) {
	ladder := model.Ladder{Rows: []model.LadderRow{
		{Strike: 9500, Call: model.Quote{Ask: 0.4, Bid: 0.38}, Put: model.Quote{Ask: 0.55, Bid: 0.53}},
		{Strike: 10000, Call: model.Quote{Ask: 0.6, Bid: 0.58}, Put: model.Quote{Ask: 0.6, Bid: 0.58}},
	}}
	frame, err := json.Marshal(orderbook.NewSnapshot(ladder))
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}

	var sess session
	snap, err := sess.observe(frame)
	if err != nil {
		t.Fatalf("observe() error = %v", err)
	}
	if len(snap.Rows) != 2 {
		t.Errorf("len(Rows) = %d, want 2", len(snap.Rows))
	}
	if sess.received != 1 || len(sess.best) != 1 {
		t.Fatalf("received/best = %d/%v, want 1 frame with 1 best value", sess.received, sess.best)
	}
	if got := sess.best[0]; got < 5.26 || got > 5.27 {
		t.Errorf("best = %v, want ~5.263", got)
	}

	if _, err := sess.observe([]byte("not json")); err == nil {
		t.Error("observe() accepted a malformed frame")
	}
	if sess.received != 2 || len(sess.best) != 1 {
		t.Errorf("received/best after bad frame = %d/%d, want 2/1", sess.received, len(sess.best))
	}
}
