package domain

import "testing"

func TestPermissions(t *testing.T) {
	var perms Permissions

	tests := []struct {
		name        string
		staff       *Staff
		viewReports bool
		admin       bool
	}{
		{"nobody", nil, false, false},
		{"admin", &Staff{Role: StaffRoleAdmin}, true, true},
		{"manager", &Staff{Role: StaffRoleManager}, true, false},
		{"staff", &Staff{Role: StaffRoleStaff}, false, false},
		{"staff with grant", &Staff{Role: StaffRoleStaff, Permissions: []string{PermissionViewReports}}, true, false},
		{"guest", &Staff{Role: StaffRoleGuest}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := perms.CanViewReports(tt.staff); got != tt.viewReports {
				t.Errorf("CanViewReports: expected %v, got %v", tt.viewReports, got)
			}
			if got := perms.IsAdmin(tt.staff); got != tt.admin {
				t.Errorf("IsAdmin: expected %v, got %v", tt.admin, got)
			}
		})
	}
}
