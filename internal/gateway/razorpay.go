package gateway

import (
	"context"
	"fmt"
	"math"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayGateway creates payment orders. Signature verification is not
// done here; see the payment package.
type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	if keyID == "" || keySecret == "" {
		return &RazorpayGateway{}
	}

	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

type Order struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
}

// CreateOrder registers an order with the gateway. amount is in rupees;
// Razorpay wants paise.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount float64) (*Order, error) {
	const op = "gateway.RazorpayGateway.CreateOrder"

	if g.client == nil {
		return nil, fmt.Errorf("%s:%w", op, ErrNotConfigured)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	paise := int64(math.Round(amount * 100))

	body, err := g.client.Order.Create(map[string]interface{}{
		"amount":   paise,
		"currency": "INR",
		"receipt":  fmt.Sprintf("receipt_%d", time.Now().UnixMilli()),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("%s: gateway response has no order id", op)
	}

	return &Order{ID: id, Amount: paise}, nil
}
