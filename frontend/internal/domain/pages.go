package frontend_domain

import (
	"html/template"

	"github.com/microsmart/portal/shared/api"
	"github.com/microsmart/portal/shared/domain"
)

type LoginPageData struct {
	Username string
	Next     string
}

type RegisterPageData struct {
	Form api.RegisterRequest
}

type ProfilePageData struct {
	User domain.User
}

type LoadingPageData struct {
	Target string
}

// Admin pages

type AdminDashboardData struct {
	Metrics     domain.DashboardMetrics
	StatusChart Series
	AmountChart Series
	TrendChart  Series
	Financial   []NamedSeries
	AmountStats *domain.AmountStats
	Activities  []Activity
	RecentLoans []domain.RecentLoan
}

type UsersPageData struct {
	Users []domain.User
	Form  api.CreateUserRequest
}

type UserPageData struct {
	User domain.UserDetail
}

type LoansPageData struct {
	Loans  []domain.Loan
	Status domain.LoanStatus // active filter, empty for all
	Counts map[domain.LoanStatus]int
}

type LoanPageData struct {
	Loan domain.Loan
}

type ExcelPageData struct {
	Files []domain.ExcelFile
}

type AnalysisSection struct {
	Name   string
	Pretty string // indented JSON
}

type AnalysisPageData struct {
	File     domain.ExcelFile
	Sections []AnalysisSection
}

type AdminMessagesPageData struct {
	Clients []domain.User
	Form    api.SendMessageRequest
}

type MetricsPageData struct {
	Financial []NamedSeries
	Form      api.CreateMetricRequest
}

// Client pages

type ClientDashboardData struct {
	Metrics      domain.DashboardMetrics
	StatusChart  Series
	PaymentChart Series
	Activities   []Activity
}

type ClientLoansData struct {
	Loans []domain.Loan
}

type LoanApplyData struct {
	Form api.CreateLoanRequest
}

type ClientLoanData struct {
	Loan domain.LoanDetail
	// Risk is the backend's risk analysis shown once right after applying.
	Risk string
}

type PaymentsPageData struct {
	Payable []domain.Loan
	LoanId  domain.LoanId // preselected
}

type Message struct {
	domain.Message
	HTML template.HTML
}

type ClientMessagesData struct {
	Messages []Message
}

// Activity is a feed entry with its details flattened for display.
type Activity struct {
	domain.Activity
	Summary string
}
