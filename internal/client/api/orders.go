package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/campusshop/internal/client/models"
)

const (
	ordersPath       = "/orders/"
	sellerOrdersPath = "/orders/seller/orders/"
)

func filterParams(f models.OrderFilter) url.Values {
	v := url.Values{}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.PaymentStatus != "" {
		v.Set("payment_status", f.PaymentStatus)
	}
	if f.Ordering != "" {
		v.Set("ordering", f.Ordering)
	}
	return v
}

func (c *Client) ListOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, error) {
	var list models.List[models.Order]
	if err := c.Do(ctx, http.MethodGet, ordersPath, nil, filterParams(f), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetOrder fetches one order by id or order number.
func (c *Client) GetOrder(ctx context.Context, ref string) (*models.Order, error) {
	var o models.Order
	if err := c.Do(ctx, http.MethodGet, ordersPath+url.PathEscape(ref)+"/", nil, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) CancelOrder(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodPost, fmt.Sprintf("%s%d/cancel/", ordersPath, id), nil, nil, nil)
}

func (c *Client) ListSellerOrders(ctx context.Context, f models.OrderFilter) ([]models.Order, error) {
	var list models.List[models.Order]
	if err := c.Do(ctx, http.MethodGet, sellerOrdersPath, nil, filterParams(f), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetSellerOrder(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	if err := c.Do(ctx, http.MethodGet, sellerOrdersPath+strconv.FormatInt(id, 10)+"/", nil, nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	path := fmt.Sprintf("%s%d/update_status/", sellerOrdersPath, id)
	return c.Do(ctx, http.MethodPost, path, map[string]string{"status": string(status)}, nil, nil)
}
