package api

import (
	"encoding/json"

	"github.com/microsmart/portal/shared/domain"
)

type RecordActivityRequest struct {
	ActivityType string          `json:"activity_type" validate:"required,max=64"`
	Details      json.RawMessage `json:"details,omitempty"`
}

type RecordActivityResponse struct {
	Message    string            `json:"message"`
	ActivityId domain.ActivityId `json:"activity_id"`
}

type MetricsResponse struct {
	Metrics domain.DashboardMetrics `json:"metrics"`
}

type LoanStatsResponse struct {
	LoanStats domain.LoanStats `json:"loan_stats"`
}

// RecentActivityResponse: RecentLoans is only present for admins.
type RecentActivityResponse struct {
	Activities  []domain.Activity   `json:"activities"`
	RecentLoans []domain.RecentLoan `json:"recent_loans,omitempty"`
}
