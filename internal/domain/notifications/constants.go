package notifications

const (
	ErrMsgMissingEmail   = "no email found for employee"
	ErrMsgRecordNotFound = "payroll record not found"

	defaultConcurrency = 4
)
