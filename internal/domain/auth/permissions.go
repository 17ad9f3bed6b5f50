package auth

const (
	RoleAdmin    = "admin"
	RoleHR       = "hr"
	RoleEmployee = "employee"
)

const (
	PermEmployeesRead    = "employees.read"
	PermRequestsSubmit   = "requests.submit"
	PermRequestsReview   = "requests.review"
	PermPayrollRead      = "payroll.read"
	PermPayrollGenerate  = "payroll.generate"
	PermPayrollWrite     = "payroll.write"
	PermDeductionsRead   = "deductions.read"
	PermDeductionsWrite  = "deductions.write"
	PermReportsRead      = "reports.read"
	PermNotifySend       = "notifications.send"
	PermRosterSync       = "roster.sync"
	PermAttendanceRead   = "attendance.read"
	PermAuditRead        = "audit.read"
	PermJobsRead         = "jobs.read"
	PermOwnPayslipsRead  = "payslips.own.read"
	PermOwnAttendance    = "attendance.own.read"
	PermOwnRequestsWrite = "requests.own.write"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermRequestsSubmit,
	PermRequestsReview,
	PermPayrollRead,
	PermPayrollGenerate,
	PermPayrollWrite,
	PermDeductionsRead,
	PermDeductionsWrite,
	PermReportsRead,
	PermNotifySend,
	PermRosterSync,
	PermAttendanceRead,
	PermAuditRead,
	PermJobsRead,
	PermOwnPayslipsRead,
	PermOwnAttendance,
	PermOwnRequestsWrite,
}

var staff = []string{
	PermEmployeesRead,
	PermRequestsSubmit,
	PermRequestsReview,
	PermPayrollRead,
	PermPayrollGenerate,
	PermPayrollWrite,
	PermDeductionsRead,
	PermDeductionsWrite,
	PermReportsRead,
	PermNotifySend,
	PermRosterSync,
	PermAttendanceRead,
	PermJobsRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermRequestsSubmit,
		PermOwnRequestsWrite,
		PermOwnPayslipsRead,
		PermOwnAttendance,
	},
	RoleHR:    staff,
	RoleAdmin: append(append([]string{}, staff...), PermAuditRead),
}

// Allowed reports whether the role carries the permission. Unknown roles carry none.
func Allowed(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}

func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleHR
}
