package domain

import "encoding/json"

type MetricType string

const (
	MetricRevenue MetricType = "revenue"
	MetricExpense MetricType = "expense"
	MetricProfit  MetricType = "profit"
	MetricROI     MetricType = "roi"
)

var MetricTypes = []MetricType{MetricRevenue, MetricExpense, MetricProfit, MetricROI}

type FinancialMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Date  string  `json:"date"`
}

// DashboardMetrics is the union of the admin and client metric payloads. The
// backend picks the variant from the session role; fields of the other variant
// stay zero.
type DashboardMetrics struct {
	// admin
	TotalUsers       int                              `json:"total_users,omitempty"`
	TotalLoans       int                              `json:"total_loans,omitempty"`
	ActiveLoans      int                              `json:"active_loans,omitempty"`
	PendingLoans     int                              `json:"pending_loans,omitempty"`
	TotalPayments    float64                          `json:"total_payments,omitempty"`
	FinancialMetrics map[MetricType][]FinancialMetric `json:"financial_metrics,omitempty"`

	// both
	TotalLoanAmount float64 `json:"total_loan_amount"`

	// client
	TotalPaid         float64    `json:"total_paid,omitempty"`
	RemainingAmount   float64    `json:"remaining_amount,omitempty"`
	ActiveLoansCount  int        `json:"active_loans_count,omitempty"`
	PendingLoansCount int        `json:"pending_loans_count,omitempty"`
	RecentActivities  []Activity `json:"recent_activities,omitempty"`
}

type AmountRange struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

type AmountStats struct {
	Average float64       `json:"average"`
	Minimum float64       `json:"minimum"`
	Maximum float64       `json:"maximum"`
	Ranges  []AmountRange `json:"ranges"`
}

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type PaymentPoint struct {
	Date   string        `json:"date"`
	Amount float64       `json:"amount"`
	Status PaymentStatus `json:"status"`
	LoanId LoanId        `json:"loan_id"`
}

// LoanStats is split between admin and client variants the same way DashboardMetrics is.
type LoanStats struct {
	StatusDistribution map[LoanStatus]int `json:"status_distribution"`
	AmountStats        *AmountStats       `json:"amount_stats,omitempty"`
	MonthlyTrend       []MonthCount       `json:"monthly_trend,omitempty"`
	PaymentHistory     []PaymentPoint     `json:"payment_history,omitempty"`
}

type Activity struct {
	UserId    UserId          `json:"user_id,omitempty"`
	Username  string          `json:"username,omitempty"`
	Type      string          `json:"type"`
	Timestamp Timestamp       `json:"timestamp"`
	Details   json.RawMessage `json:"details,omitempty"`
}

type RecentLoan struct {
	LoanId    LoanId     `json:"loan_id"`
	UserId    UserId     `json:"user_id"`
	Username  string     `json:"username"`
	Amount    float64    `json:"amount"`
	Status    LoanStatus `json:"status"`
	CreatedAt Timestamp  `json:"created_at"`
}

// Activity types recorded by the portal itself.
const (
	ActivityLogin           = "login"
	ActivityLoanApplication = "loan_application"
	ActivityPayment         = "payment"
	ActivityProfileUpdate   = "profile_update"
)
