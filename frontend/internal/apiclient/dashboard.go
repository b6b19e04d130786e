package apiclient

import (
	"context"
	"net/http"

	"github.com/microsmart/portal/shared/api"
	"github.com/microsmart/portal/shared/domain"
)

// Dashboard endpoints answer with the admin or client variant depending on
// the session role.

func (c *APIClient) DashboardMetrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	var resp api.MetricsResponse
	if err := c.do(ctx, Request{Method: http.MethodGet, Path: "/dashboard/metrics"}, &resp); err != nil {
		return nil, err
	}
	return &resp.Metrics, nil
}

func (c *APIClient) LoanStats(ctx context.Context) (*domain.LoanStats, error) {
	var resp api.LoanStatsResponse
	if err := c.do(ctx, Request{Method: http.MethodGet, Path: "/dashboard/loan-stats"}, &resp); err != nil {
		return nil, err
	}
	return &resp.LoanStats, nil
}

func (c *APIClient) RecentActivity(ctx context.Context) (*api.RecentActivityResponse, error) {
	var resp api.RecentActivityResponse
	if err := c.do(ctx, Request{Method: http.MethodGet, Path: "/dashboard/recent-activity"}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *APIClient) RecordActivity(ctx context.Context, data api.RecordActivityRequest) error {
	return c.do(ctx, Request{Method: http.MethodPost, Path: "/dashboard/record-activity", Body: data}, nil)
}
