package api

import "github.com/microsmart/portal/shared/domain"

type CreateUserRequest struct {
	Username    string      `json:"username" validate:"required,min=3,max=64"`
	Email       string      `json:"email" validate:"required,email"`
	Password    string      `json:"password" validate:"required,min=8"`
	FirstName   string      `json:"first_name" validate:"required,max=64"`
	LastName    string      `json:"last_name" validate:"required,max=64"`
	PhoneNumber string      `json:"phone_number,omitempty" validate:"omitempty,max=20"`
	Role        domain.Role `json:"role" validate:"required,oneof=admin client"`
}

type UpdateUserRequest struct {
	FirstName   *string      `json:"first_name,omitempty" validate:"omitempty,max=64"`
	LastName    *string      `json:"last_name,omitempty" validate:"omitempty,max=64"`
	Email       *string      `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber *string      `json:"phone_number,omitempty" validate:"omitempty,max=20"`
	Role        *domain.Role `json:"role,omitempty" validate:"omitempty,oneof=admin client"`
	Password    *string      `json:"password,omitempty" validate:"omitempty,min=8"`
}

type UpdateLoanRequest struct {
	Status       *domain.LoanStatus `json:"status,omitempty" validate:"omitempty,oneof=pending approved rejected active completed"`
	InterestRate *float64           `json:"interest_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	TermMonths   *int               `json:"term_months,omitempty" validate:"omitempty,gt=0"`
}

type SendMessageRequest struct {
	UserId        domain.UserId      `json:"user_id" validate:"required,gt=0"`
	Content       string             `json:"content" validate:"required,max=2000"`
	MessageType   domain.MessageType `json:"message_type" validate:"required,oneof=notification reminder alert payment_reminder"`
	PaymentAmount *float64           `json:"payment_amount,omitempty" validate:"omitempty,gt=0"`
	DueDate       string             `json:"due_date,omitempty"`
}

type CreateMetricRequest struct {
	Name       string            `json:"name" validate:"required,max=128"`
	Value      float64           `json:"value"`
	MetricType domain.MetricType `json:"metric_type" validate:"required,oneof=revenue expense profit roi"`
}

// Response DTOs

type UsersResponse struct {
	Users []domain.User `json:"users"`
}

type UserDetailResponse struct {
	User domain.UserDetail `json:"user"`
}

type LoansResponse struct {
	Loans []domain.Loan `json:"loans"`
}

// CreatedResponse covers the backend's "{message, <thing>_id}" acknowledgements.
type CreatedResponse struct {
	Message   string           `json:"message"`
	UserId    domain.UserId    `json:"user_id,omitempty"`
	LoanId    domain.LoanId    `json:"loan_id,omitempty"`
	MessageId domain.MessageId `json:"message_id,omitempty"`
	MetricId  domain.MetricId  `json:"metric_id,omitempty"`
}

type ExcelUploadResponse struct {
	Message string         `json:"message"`
	FileId  domain.ExcelId `json:"file_id"`
}

type ExcelFilesResponse struct {
	ExcelFiles []domain.ExcelFile `json:"excel_files"`
}
