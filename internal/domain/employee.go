package domain

// Role is an employee role kind. Contributors hold the base role and are the
// audience for daily task reminders; managers and admins are not.
type Role string

// Known role kinds.
const (
	RoleContributor Role = "contributor"
	RoleManager     Role = "manager"
	RoleAdmin       Role = "admin"
)

// Valid reports whether r is a known role kind.
func (r Role) Valid() bool {
	switch r {
	case RoleContributor, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// EmployeeRef is the read-only employee projection this service needs:
// enough to address a reminder digest. Organizational CRUD lives elsewhere.
type EmployeeRef struct {
	ID       int64  `json:"employee_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}
