package trade

import (
	"context"

	"github.com/sportpulse/pulse/internal/api"
)

// GatewaySettler settles orders through the settlement gateway.
type GatewaySettler struct {
	client *api.Client
}

// NewGatewaySettler wraps a gateway client.
func NewGatewaySettler(client *api.Client) *GatewaySettler {
	return &GatewaySettler{client: client}
}

// Settle submits the order once.
func (g *GatewaySettler) Settle(ctx context.Context, order Order) (string, error) {
	resp, err := g.client.Settle(ctx, api.SettleRequest{
		EventID:  order.EventID,
		Outcome:  order.Outcome,
		Type:     order.Class.Letter(),
		Side:     string(order.Side),
		Strike:   order.Strike,
		Quantity: order.Quantity.String(),
		Total:    order.Total.StringFixed(USDCDecimals),
		Expiry:   order.Expiry,
	})
	if err != nil {
		return "", err
	}
	return resp.TxHash, nil
}
