package models

import "time"

// Gateway identifies the payment provider that settled a transaction.
type Gateway string

// Supported gateways. The providers themselves are opaque to this client.
const (
	GatewayCashfree Gateway = "cashfree"
	GatewayRazorpay Gateway = "razorpay"
)

// Transaction is a read-only payment record.
type Transaction struct {
	ID            ID        `json:"id,omitempty"`
	OrderID       string    `json:"orderId"`
	Amount        Price     `json:"amount"`
	Currency      string    `json:"currency,omitempty"`
	Gateway       Gateway   `json:"gateway,omitempty"`
	Status        string    `json:"status"`
	CustomerEmail string    `json:"customerEmail,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitzero"`
}
