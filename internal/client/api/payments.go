package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/campusshop/internal/client/models"
)

const (
	paymentConfigPath = "/orders/payments/config/"
	paymentInitPath   = "/orders/payments/initialize/"
	paymentVerifyPath = "/orders/payments/verify/"
	paymentStatusPath = "/orders/payments/status/"
)

func (c *Client) PaymentConfig(ctx context.Context) (*models.PaymentConfig, error) {
	var cfg models.PaymentConfig
	if err := c.Do(ctx, http.MethodGet, paymentConfigPath, nil, nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// InitializePayment starts (or restarts) a gateway payment for an order.
func (c *Client) InitializePayment(ctx context.Context, orderID int64) (*models.PaymentInit, error) {
	var init models.PaymentInit
	err := c.Do(ctx, http.MethodPost, paymentInitPath, map[string]int64{"order_id": orderID}, nil, &init)
	if err != nil {
		return nil, err
	}
	return &init, nil
}

// VerifyPayment asks the server to confirm the gateway transaction. A
// response with Success=false is returned without error.
func (c *Client) VerifyPayment(ctx context.Context, reference string) (*models.PaymentVerification, error) {
	var v models.PaymentVerification
	if err := c.Do(ctx, http.MethodGet, paymentVerifyPath+url.PathEscape(reference)+"/", nil, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) PaymentStatus(ctx context.Context, orderID int64) (*models.PaymentStatus, error) {
	var st models.PaymentStatus
	if err := c.Do(ctx, http.MethodGet, fmt.Sprintf("%s%d/", paymentStatusPath, orderID), nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
