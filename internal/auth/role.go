package auth

// Role constants define the allowed portal roles.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// Fixed portal paths used by redirects and default-route resolution.
const (
	LoginPath            = "/login"
	RootPath             = "/"
	PatientDashboardPath = "/patient/dashboard"
	DoctorDashboardPath  = "/doctor/dashboard"
	AdminDashboardPath   = "/admin/dashboard"
)

// ValidRoles returns the set of valid portal roles.
func ValidRoles() []string {
	return []string{RolePatient, RoleDoctor, RoleAdmin}
}

// IsValidRole checks whether the given role string is a valid portal role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// DashboardPath resolves the landing page for a role. Unauthenticated callers
// and unrecognized roles land on the login page.
func DashboardPath(role string) string {
	switch role {
	case RolePatient:
		return PatientDashboardPath
	case RoleDoctor:
		return DoctorDashboardPath
	case RoleAdmin:
		return AdminDashboardPath
	default:
		return LoginPath
	}
}
