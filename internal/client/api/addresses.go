package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/campusshop/internal/client/models"
)

const addressesPath = "/accounts/addresses/"

func (c *Client) ListAddresses(ctx context.Context) ([]models.Address, error) {
	var list models.List[models.Address]
	if err := c.Do(ctx, http.MethodGet, addressesPath, nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateAddress(ctx context.Context, a models.Address) (*models.Address, error) {
	a.ID = 0
	var out models.Address
	if err := c.Do(ctx, http.MethodPost, addressesPath, a, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAddress(ctx context.Context, a models.Address) (*models.Address, error) {
	var out models.Address
	if err := c.Do(ctx, http.MethodPatch, fmt.Sprintf("%s%d/", addressesPath, a.ID), a, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAddress(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, fmt.Sprintf("%s%d/", addressesPath, id), nil, nil, nil)
}
