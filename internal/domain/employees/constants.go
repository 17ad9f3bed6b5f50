package employees

const (
	PayTypeMonthly     = "monthly"
	PayTypeSemiMonthly = "semi-monthly"

	StatusActive   = "active"
	StatusInactive = "inactive"
)
