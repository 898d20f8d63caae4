package api

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/campusshop/internal/client/models"
)

const (
	cartPath       = "/orders/carts/my_cart/"
	addItemPath    = "/orders/carts/add_item/"
	updateItemPath = "/orders/carts/update_item/"
	removeItemPath = "/orders/carts/remove_item/"
	clearCartPath  = "/orders/carts/clear/"
	checkoutPath   = "/orders/carts/checkout/"
)

func (c *Client) GetCart(ctx context.Context) (*models.Cart, error) {
	var cart models.Cart
	if err := c.Do(ctx, http.MethodGet, cartPath, nil, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) AddCartItem(ctx context.Context, req models.AddItemRequest) error {
	return c.Do(ctx, http.MethodPost, addItemPath, req, nil, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, req models.UpdateItemRequest) error {
	return c.Do(ctx, http.MethodPost, updateItemPath, req, nil, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, req models.RemoveItemRequest) error {
	return c.Do(ctx, http.MethodPost, removeItemPath, req, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, clearCartPath, nil, nil, nil)
}

// Checkout converts the server-side cart into an order.
func (c *Client) Checkout(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	var resp models.CheckoutResponse
	if err := c.Do(ctx, http.MethodPost, checkoutPath, req, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
