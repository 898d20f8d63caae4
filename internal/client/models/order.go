package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus mirrors the server-side order lifecycle:
//
//	pending -> processing -> shipped -> delivered
//	pending | processing -> cancelled
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

var nextOrderStatus = map[OrderStatus]OrderStatus{
	OrderPending:    OrderProcessing,
	OrderProcessing: OrderShipped,
	OrderShipped:    OrderDelivered,
}

// Next returns the immediate successor status, if the status can advance.
func (s OrderStatus) Next() (OrderStatus, bool) {
	n, ok := nextOrderStatus[s]
	return n, ok
}

// Cancellable reports whether a buyer may still cancel.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderProcessing
}

// PaymentMethod enumerates the checkout payment options.
type PaymentMethod string

const (
	PaymentGatewayCard    PaymentMethod = "paystack"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// Valid reports whether m is one of the known methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentGatewayCard, PaymentBankTransfer, PaymentCashOnDelivery:
		return true
	}
	return false
}

// OrderItem is a line snapshotted at order time.
type OrderItem struct {
	ID          int64           `json:"id"`
	ProductID   *int64          `json:"product"`
	VariantID   *int64          `json:"variant"`
	ProductName string          `json:"product_name"`
	VariantName string          `json:"variant_name"`
	StoreID     int64           `json:"store_id"`
	StoreName   string          `json:"store_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`
}

// Order is the client's read-only projection of a server-owned order.
type Order struct {
	ID                     int64           `json:"id"`
	OrderNumber            string          `json:"order_number"`
	Status                 OrderStatus     `json:"status"`
	StatusDisplay          string          `json:"status_display"`
	PaymentMethod          PaymentMethod   `json:"payment_method"`
	PaymentStatus          string          `json:"payment_status"`
	PaymentReference       string          `json:"payment_reference"`
	Subtotal               decimal.Decimal `json:"subtotal"`
	TaxAmount              decimal.Decimal `json:"tax_amount"`
	ShippingCost           decimal.Decimal `json:"shipping_cost"`
	Total                  decimal.Decimal `json:"total"`
	PlatformFee            decimal.Decimal `json:"platform_fee"`
	ShippingAddressID      *int64          `json:"shipping_address"`
	BillingAddressID       *int64          `json:"billing_address"`
	ShippingAddressDisplay string          `json:"shipping_address_display"`
	CustomerNote           string          `json:"customer_note"`
	Items                  []OrderItem     `json:"items"`
	IsPaid                 bool            `json:"is_paid"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
	PaidAt                 *time.Time      `json:"paid_at"`
	DeliveredAt            *time.Time      `json:"delivered_at"`
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status        OrderStatus
	PaymentStatus string
	Ordering      string
}

// CheckoutRequest is the body of POST /orders/carts/checkout/.
type CheckoutRequest struct {
	ShippingAddressID *int64        `json:"shipping_address_id"`
	BillingAddressID  *int64        `json:"billing_address_id"`
	PaymentMethod     PaymentMethod `json:"payment_method"`
	CustomerNote      string        `json:"customer_note"`
	AgreeToTerms      bool          `json:"agree_to_terms"`
}

// CheckoutResponse is returned by the checkout endpoint. PaymentURL is set
// when the payment method requires a gateway redirect.
type CheckoutResponse struct {
	Order       *Order `json:"order"`
	OrderNumber string `json:"order_number"`
	PaymentURL  string `json:"payment_url"`
	Reference   string `json:"reference"`
	Message     string `json:"message"`
}

// PlacedOrderNumber returns the human-facing order number from either the
// nested order or the top-level field.
func (r CheckoutResponse) PlacedOrderNumber() string {
	if r.Order != nil && r.Order.OrderNumber != "" {
		return r.Order.OrderNumber
	}
	return r.OrderNumber
}
