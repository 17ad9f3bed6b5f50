package attendance

const (
	EventTimeIn  = "time_in"
	EventTimeOut = "time_out"
	EventOther   = "other"

	// Device punch states as reported by the terminal.
	statusCheckIn  = 0
	statusCheckOut = 1

	maxBatch = 5000
)

const regularHours = 8
