package api

import (
	"encoding/json"

	"github.com/microsmart/portal/shared/domain"
)

type CreateLoanRequest struct {
	Amount       float64 `json:"amount" validate:"required,gt=0"`
	InterestRate float64 `json:"interest_rate" validate:"gte=0,lte=100"`
	TermMonths   int     `json:"term_months" validate:"required,gt=0,lte=360"`
	Purpose      string  `json:"purpose" validate:"required,max=256"`
}

type PaymentRequest struct {
	LoanId domain.LoanId `json:"loan_id" validate:"required,gt=0"`
	Amount float64       `json:"amount" validate:"required,gt=0"`
}

// CreateLoanResponse carries the backend's risk analysis when it could be
// computed. The analysis is opaque to the portal.
type CreateLoanResponse struct {
	Message      string          `json:"message"`
	LoanId       domain.LoanId   `json:"loan_id"`
	RiskAnalysis json.RawMessage `json:"risk_analysis,omitempty"`
}

type LoanDetailResponse struct {
	Loan domain.LoanDetail `json:"loan"`
}

type PaymentResponse struct {
	Message   string           `json:"message"`
	PaymentId domain.PaymentId `json:"payment_id"`
}

type MessagesResponse struct {
	Messages []domain.Message `json:"messages"`
}

type ProfileResponse struct {
	Profile domain.User `json:"profile"`
}
