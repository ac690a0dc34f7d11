package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/schema"

	"github.com/sportpulse/pulse/internal/model"
	"github.com/sportpulse/pulse/internal/orderbook"
	"github.com/sportpulse/pulse/internal/pricing"
	"github.com/sportpulse/pulse/internal/trade"
	"github.com/sportpulse/pulse/internal/version"
)

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

type quoteQuery struct {
	EventID  string  `schema:"event"`
	Timeline string  `schema:"timeline"`
	Strike   float64 `schema:"strike,required"`
	Type     string  `schema:"type"`
}

type historyQuery struct {
	EventID  string `schema:"event"`
	Timeline string `schema:"timeline"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// TradeRequest is the body of POST /trades.
type TradeRequest struct {
	EventID  string  `json:"event"`
	Timeline string  `json:"timeline"`
	Strike   float64 `json:"strike"`
	Type     string  `json:"type"`   // "call" or "put"
	Side     string  `json:"side"`   // "buy" or "sell"
	Amount   string  `json:"amount"` // Quantity as entered by the user
}

// TradeResponse is returned for a settled trade.
type TradeResponse struct {
	Trade   model.TradeRecord `json:"trade"`
	Quote   model.OptionQuote `json:"quote"`
	Total   string            `json:"total"`
	Warning string            `json:"warning,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := struct {
		Status        string         `json:"status"`
		Version       string         `json:"version"`
		Components    map[string]any `json:"components"`
		ActiveStreams int            `json:"active_streams"`
	}{
		Status:        "healthy",
		Version:       version.String(),
		Components:    make(map[string]any),
		ActiveStreams: s.ActiveStreams(),
	}

	// Trades still settle without the store, so this degrades rather than fails.
	if err := s.deps.Store.Ping(ctx); err != nil {
		health.Status = "degraded"
		health.Components["store"] = map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		}
	} else {
		health.Components["store"] = "connected"
	}

	writeJSON(w, http.StatusOK, health)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events := s.deps.Catalog.Events()
	if r.URL.Query().Get("active") == "true" {
		active := events[:0]
		for _, ev := range events {
			if !ev.Resolved {
				active = append(active, ev)
			}
		}
		events = active
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) handleOrderbook(w http.ResponseWriter, r *http.Request) {
	ladder, err := s.deps.Ladder.Generate(r.Context())
	if err != nil {
		s.logger.Warn("ladder generation failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "order book unavailable")
		return
	}
	writeJSON(w, http.StatusOK, orderbook.NewSnapshot(ladder))
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var q quoteQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}
	class, err := model.ParseOptionClass(q.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := s.deps.Trades.RequestQuote(r.Context(), q.EventID, q.Timeline, q.Strike, class)
	if err != nil {
		writeTradeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	class, err := model.ParseOptionClass(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	side, err := model.ParseTradeSide(req.Side)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Reject bad input before any pricing or settlement call.
	if _, err := trade.ParseAmount(req.Amount); err != nil {
		writeTradeError(w, err)
		return
	}

	quote, err := s.deps.Trades.RequestQuote(r.Context(), req.EventID, req.Timeline, req.Strike, class)
	if err != nil {
		writeTradeError(w, err)
		return
	}

	res, err := s.deps.Trades.Execute(r.Context(), quote, side, req.Amount)
	if err != nil {
		writeTradeError(w, err)
		return
	}

	resp := TradeResponse{
		Trade: res.Record,
		Quote: quote,
		Total: res.Total.StringFixed(trade.USDCDecimals),
	}
	if res.PersistErr != nil {
		resp.Warning = "trade settled but could not be saved to history: " + res.PersistErr.Error()
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var q historyQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}
	eventID, timeline := q.EventID, q.Timeline
	if eventID == "" || timeline == "" {
		writeError(w, http.StatusBadRequest, "event and timeline are required")
		return
	}

	trades, err := s.deps.Trades.History(r.Context(), eventID, timeline)
	if err != nil {
		s.logger.Warn("trade history unavailable", "event", eventID, "timeline", timeline, "error", err)
		writeError(w, http.StatusServiceUnavailable, "trade history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trades": trades})
}

// writeTradeError maps trade and settlement errors to HTTP statuses.
func writeTradeError(w http.ResponseWriter, err error) {
	var settleErr *trade.SettlementError
	if errors.As(err, &settleErr) {
		status := http.StatusBadGateway
		switch settleErr.Kind {
		case trade.UserRejected:
			status = http.StatusConflict
		case trade.InsufficientFunds:
			status = http.StatusPaymentRequired
		}
		writeJSON(w, status, errorResponse{Error: settleErr.Error(), Kind: settleErr.Kind.String()})
		return
	}

	switch {
	case errors.Is(err, trade.ErrUnknownEvent), errors.Is(err, trade.ErrUnknownTimeline):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, trade.ErrEventResolved), errors.Is(err, trade.ErrQuoteExpired):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, trade.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, trade.ErrInvalidAmount.Error())
	case errors.Is(err, trade.ErrInvalidTotal),
		errors.Is(err, trade.ErrInvalidSide),
		errors.Is(err, pricing.ErrInvalidStrike):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
