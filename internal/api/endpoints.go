package api

import (
	"context"
	"fmt"
)

// CreateEndpointInput is the payload for POST /endpoints/.
type CreateEndpointInput struct {
	DeviceID    int64             `json:"device"`
	ConnectorID int64             `json:"connector_id"`
	Direction   EndpointDirection `json:"direction"`
	Address     string            `json:"address"`
	Scale       float64           `json:"scale,omitempty"`
	Offset      float64           `json:"offset,omitempty"`
	TrueValue   string            `json:"true_value,omitempty"`
	FalseValue  string            `json:"false_value,omitempty"`
	IsPrimary   bool              `json:"is_primary"`
}

// EndpointPatch is a partial endpoint mutation.
type EndpointPatch struct {
	Direction  *EndpointDirection `json:"direction,omitempty"`
	Address    *string            `json:"address,omitempty"`
	Scale      *float64           `json:"scale,omitempty"`
	Offset     *float64           `json:"offset,omitempty"`
	TrueValue  *string            `json:"true_value,omitempty"`
	FalseValue *string            `json:"false_value,omitempty"`
	IsPrimary  *bool              `json:"is_primary,omitempty"`
}

// CreateEndpoint binds a device to a connector.
func (c *Client) CreateEndpoint(ctx context.Context, input CreateEndpointInput) (*Endpoint, error) {
	var endpoint Endpoint
	if err := c.do(ctx, "POST", "/endpoints/", input, &endpoint); err != nil {
		return nil, err
	}
	return &endpoint, nil
}

// UpdateEndpoint applies a partial update to an endpoint.
func (c *Client) UpdateEndpoint(ctx context.Context, id int64, patch EndpointPatch) (*Endpoint, error) {
	var endpoint Endpoint
	if err := c.do(ctx, "PATCH", fmt.Sprintf("/endpoints/%d/", id), patch, &endpoint); err != nil {
		return nil, err
	}
	return &endpoint, nil
}

// DeleteEndpoint removes an endpoint binding.
func (c *Client) DeleteEndpoint(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE", fmt.Sprintf("/endpoints/%d/", id), nil, nil)
}
