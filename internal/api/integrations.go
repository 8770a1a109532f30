package api

import "context"

// ListIntegrations returns all provider integrations for the current user.
func (c *Client) ListIntegrations(ctx context.Context) ([]Integration, error) {
	var integrations []Integration
	if err := c.do(ctx, "GET", "/integrations/", nil, &integrations); err != nil {
		return nil, err
	}
	return integrations, nil
}

// CreateIntegration registers a new provider integration.
func (c *Client) CreateIntegration(ctx context.Context, provider, displayName string) (*Integration, error) {
	payload := map[string]string{
		"provider":     provider,
		"display_name": displayName,
	}
	var integration Integration
	if err := c.do(ctx, "POST", "/integrations/", payload, &integration); err != nil {
		return nil, err
	}
	return &integration, nil
}
