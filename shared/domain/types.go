package domain

type (
	UserId     = int64
	LoanId     = int64
	PaymentId  = int64
	MessageId  = int64
	ExcelId    = int64
	MetricId   = int64
	ActivityId = int64

	Email    = string
	Username = string
	Password = string

	// Timestamp is the backend's "2006-01-02 15:04:05" string. Kept as-is because
	// the portal only displays it.
	Timestamp = string
)

const TimestampLayout = "2006-01-02 15:04:05"
