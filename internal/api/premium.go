package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// PremiumResponse is the oracle's answer for one claim.
type PremiumResponse struct {
	Premium float64 `json:"premium"`
}

// GetPremium fetches the premium for a strike. side is "C" or "P".
func (c *Client) GetPremium(ctx context.Context, strike float64, side string) (float64, error) {
	if side != "C" && side != "P" {
		return 0, fmt.Errorf("invalid side %q", side)
	}

	query := url.Values{}
	query.Set("strike", strconv.FormatFloat(strike, 'f', -1, 64))
	query.Set("side", side)

	var resp PremiumResponse
	if err := c.get(ctx, "/premium", query, &resp); err != nil {
		return 0, fmt.Errorf("get premium: %w", err)
	}
	return resp.Premium, nil
}
