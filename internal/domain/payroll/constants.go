package payroll

const (
	StatusPendingPayment = "Pending Payment"
	StatusPaid           = "Paid"
	StatusCancelled      = "Cancelled"

	DeductionSSS        = "sss"
	DeductionPhilHealth = "philhealth"
	DeductionPagIBIG    = "pagibig"
	DeductionOther      = "other"

	ScopeCumulative = "cumulative"
	ScopePeriod     = "period"

	dateLayout = "2006-01-02"
)

var DeductionTypes = []string{DeductionSSS, DeductionPhilHealth, DeductionPagIBIG, DeductionOther}

func ValidStatus(status string) bool {
	switch status {
	case StatusPendingPayment, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

func ValidDeductionType(kind string) bool {
	for _, t := range DeductionTypes {
		if t == kind {
			return true
		}
	}
	return false
}
