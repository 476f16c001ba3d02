package domain

// StaffRole represents the role of an authenticated staff member
type StaffRole string

const (
	StaffRoleAdmin   StaffRole = "ADMIN"
	StaffRoleManager StaffRole = "MANAGER"
	StaffRoleStaff   StaffRole = "STAFF"
	StaffRoleGuest   StaffRole = "GUEST"
)

// Staff is the identity of the caller
type Staff struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        StaffRole `json:"role"`
	Permissions []string  `json:"permissions,omitempty"`
}

// PermissionViewReports grants report access to non-manager roles
const PermissionViewReports = "reports:view"

// Permissions answers capability checks for a staff identity
type Permissions struct{}

// CanViewReports reports whether the staff member may read analytics
func (Permissions) CanViewReports(staff *Staff) bool {
	if staff == nil {
		return false
	}
	switch staff.Role {
	case StaffRoleAdmin, StaffRoleManager:
		return true
	}
	for _, p := range staff.Permissions {
		if p == PermissionViewReports {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the staff member has administrative rights
func (Permissions) IsAdmin(staff *Staff) bool {
	return staff != nil && staff.Role == StaffRoleAdmin
}
