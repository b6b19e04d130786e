package domain

type LoanStatus string

const (
	LoanPending   LoanStatus = "pending"
	LoanApproved  LoanStatus = "approved"
	LoanRejected  LoanStatus = "rejected"
	LoanActive    LoanStatus = "active"
	LoanCompleted LoanStatus = "completed"
)

// LoanStatuses lists statuses in lifecycle order. Charts and filters rely on it.
var LoanStatuses = []LoanStatus{LoanPending, LoanApproved, LoanRejected, LoanActive, LoanCompleted}

func (s LoanStatus) Valid() bool {
	for _, status := range LoanStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Loan struct {
	Id           LoanId     `json:"id"`
	UserId       UserId     `json:"user_id,omitempty"`
	Username     string     `json:"username,omitempty"` // borrower full name, admin listing only
	Amount       float64    `json:"amount"`
	InterestRate float64    `json:"interest_rate"`
	TermMonths   int        `json:"term_months"`
	Status       LoanStatus `json:"status"`
	Purpose      string     `json:"purpose"`
	CreatedAt    Timestamp  `json:"created_at"`
	ApprovedAt   *Timestamp `json:"approved_at,omitempty"`
	TotalPaid    float64    `json:"total_paid"`
	Remaining    float64    `json:"remaining"`
	PaymentCount int        `json:"payment_count"`
}

// CanPay reports whether the backend will accept a payment for the loan.
func (l Loan) CanPay() bool {
	return l.Status == LoanActive
}

type LoanDetail struct {
	Loan
	MonthlyPayment float64   `json:"monthly_payment"`
	Payments       []Payment `json:"payments"`
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentSuccessful PaymentStatus = "successful"
	PaymentFailed     PaymentStatus = "failed"
)

type Payment struct {
	Id          PaymentId     `json:"id"`
	Amount      float64       `json:"amount"`
	PaymentDate Timestamp     `json:"payment_date"`
	Status      PaymentStatus `json:"status"`
}
