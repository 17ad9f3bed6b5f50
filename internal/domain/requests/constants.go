package requests

const (
	TypeOvertime    = "Overtime"
	TypeHolidayWork = "Holiday Work"

	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
	StatusCancelled = "Cancelled"

	DefaultRejectRemarks = "Request rejected by HR."
)

var Types = []string{TypeOvertime, TypeHolidayWork}

var Statuses = []string{StatusPending, StatusApproved, StatusRejected, StatusCancelled}
