package frontend_domain

import (
	"github.com/microsmart/portal/frontend/internal/notify"
	"github.com/microsmart/portal/shared/domain"
)

// CommonTemplateData holds fields that are common to all page templates.
// Available in templates as .Common via the TemplateData wrapper.
type CommonTemplateData struct {
	Error         string // inline form error
	User          *domain.User
	Notifications []notify.Notification
	Validation    ValidationData
	CSRFToken     string
	Path          string
}

// ValidationData mirrors the form limits checked server-side so templates
// can set input attributes from one place.
type ValidationData struct {
	UsernameMinLen  int
	PasswordMinLen  int
	MaxTermMonths   int
	MaxInterestRate float64
	MaxMessageLen   int
	MaxUploadMB     int64
	ExcelExtensions []string
	LoanStatuses    []domain.LoanStatus
	MessageTypes    []domain.MessageType
	MetricTypes     []domain.MetricType
	Roles           []domain.Role
}
