package auth

import "testing"

func TestIsValidRole(t *testing.T) {
	for _, role := range ValidRoles() {
		if !IsValidRole(role) {
			t.Errorf("expected %q to be valid", role)
		}
	}
	for _, role := range []string{"", "nurse", "Admin", "PATIENT"} {
		if IsValidRole(role) {
			t.Errorf("expected %q to be invalid", role)
		}
	}
}

func TestDashboardPath(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{RolePatient, PatientDashboardPath},
		{RoleDoctor, DoctorDashboardPath},
		{RoleAdmin, AdminDashboardPath},
		{"", LoginPath},
		{"superuser", LoginPath},
	}
	for _, tt := range tests {
		if got := DashboardPath(tt.role); got != tt.want {
			t.Errorf("DashboardPath(%q) = %q, want %q", tt.role, got, tt.want)
		}
	}
}
