package models

import "github.com/shopspring/decimal"

// PaymentConfig is the public gateway configuration.
type PaymentConfig struct {
	PublicKey string `json:"public_key"`
	Currency  string `json:"currency"`
}

// PaymentInit is returned when (re)initializing a gateway payment.
type PaymentInit struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	TransactionID    int64  `json:"transaction_id"`
}

// PaymentVerification is returned by the verify endpoint.
type PaymentVerification struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   *Order `json:"order"`
}

// PaymentStatus is the payment projection of one order.
type PaymentStatus struct {
	OrderID              int64           `json:"order_id"`
	OrderNumber          string          `json:"order_number"`
	IsPaid               bool            `json:"is_paid"`
	PaymentStatus        string          `json:"payment_status"`
	PaymentMethod        PaymentMethod   `json:"payment_method"`
	Total                decimal.Decimal `json:"total"`
	TransactionReference string          `json:"transaction_reference,omitempty"`
	TransactionStatus    string          `json:"transaction_status,omitempty"`
}
