package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of the cart. Product and variant fields are
// snapshots taken by the server; Price is the unit price captured for this
// line, not necessarily the live product price.
type CartItem struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product"`
	ProductName  string          `json:"product_name"`
	ProductSlug  string          `json:"product_slug"`
	ProductImage string          `json:"product_image,omitempty"`
	VariantID    *int64          `json:"variant,omitempty"`
	VariantName  string          `json:"variant_name,omitempty"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	CreatedAt    time.Time       `json:"created_at,omitzero"`
}

// LineTotal is Price × Quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Matches reports whether the line holds productID with the given variant.
// A nil variantID only matches lines without a variant.
func (i CartItem) Matches(productID int64, variantID *int64) bool {
	if i.ProductID != productID {
		return false
	}
	if variantID == nil || i.VariantID == nil {
		return variantID == nil && i.VariantID == nil
	}
	return *i.VariantID == *variantID
}

// Cart is the payload of GET /orders/carts/my_cart/. The server also sends
// item_count and subtotal; the client recomputes both from Items.
type Cart struct {
	ID    int64      `json:"id"`
	Items []CartItem `json:"items"`
}

// AddItemRequest is the body of POST /orders/carts/add_item/.
type AddItemRequest struct {
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest is the body of POST /orders/carts/update_item/.
type UpdateItemRequest struct {
	CartItemID int64 `json:"cart_item_id"`
	Quantity   int   `json:"quantity"`
}

// RemoveItemRequest is the body of POST /orders/carts/remove_item/.
type RemoveItemRequest struct {
	CartItemID int64 `json:"cart_item_id"`
}
