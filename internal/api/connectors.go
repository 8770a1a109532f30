package api

import "context"

// CreateConnectorInput is the payload for POST /connectors/.
type CreateConnectorInput struct {
	Name          string `json:"name"`
	ConnectorType string `json:"connector_type"`
	Host          string `json:"host,omitempty"`
	Port          *int   `json:"port,omitempty"`
	Username      string `json:"username,omitempty"`
	BaseTopic     string `json:"base_topic,omitempty"`
	BasePath      string `json:"base_path,omitempty"`
}

// ListConnectors returns all transport connectors for the current user.
func (c *Client) ListConnectors(ctx context.Context) ([]Connector, error) {
	var connectors []Connector
	if err := c.do(ctx, "GET", "/connectors/", nil, &connectors); err != nil {
		return nil, err
	}
	return connectors, nil
}

// CreateConnector registers a transport connection (MQTT broker, PLC, HTTP
// API) for later endpoint bindings.
func (c *Client) CreateConnector(ctx context.Context, input CreateConnectorInput) (*Connector, error) {
	var connector Connector
	if err := c.do(ctx, "POST", "/connectors/", input, &connector); err != nil {
		return nil, err
	}
	return &connector, nil
}
