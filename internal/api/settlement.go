package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Gateway error codes.
const (
	CodeUserRejected      = "user_rejected"
	CodeInsufficientFunds = "insufficient_funds"
)

// SettleRequest asks the gateway to move funds for a trade.
type SettleRequest struct {
	EventID  string    `json:"event_id"`
	Outcome  string    `json:"outcome"`
	Type     string    `json:"type"` // "C" or "P"
	Side     string    `json:"side"`
	Strike   float64   `json:"strike"`
	Quantity string    `json:"quantity"` // Decimal string
	Total    string    `json:"total"`    // Decimal string, USDC
	Expiry   time.Time `json:"expiry"`
}

// SettleResponse is returned for a settled trade.
type SettleResponse struct {
	TxHash string `json:"tx_hash"`
}

// GatewayError is a structured settlement failure.
type GatewayError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Reason     string `json:"reason"`
}

func (e *GatewayError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("settlement %s: %s", e.Code, e.Reason)
	}
	return fmt.Sprintf("settlement %s: %s", e.Code, e.Message)
}

// Settle submits req once. Failures are not retried.
func (c *Client) Settle(ctx context.Context, req SettleRequest) (*SettleResponse, error) {
	var resp SettleResponse
	err := c.post(ctx, "/settle", req, &resp)
	if err == nil {
		if resp.TxHash == "" {
			return nil, errors.New("settle: empty transaction hash")
		}
		return &resp, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		gwErr := &GatewayError{StatusCode: apiErr.StatusCode}
		if json.Unmarshal(apiErr.Body, gwErr) == nil && gwErr.Code != "" {
			return nil, gwErr
		}
	}
	return nil, fmt.Errorf("settle: %w", err)
}
