package api

import "context"

// GetDashboardSummary returns aggregate counts for the dashboard landing
// page.
func (c *Client) GetDashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	var summary DashboardSummary
	if err := c.do(ctx, "GET", "/dashboard/summary/", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
