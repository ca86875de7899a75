package auth

// Role is the coarse permission level carried by every user and access token.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
	RoleClient   Role = "CLIENT"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleClient:
		return true
	}
	return false
}

// IsStaff reports whether r may operate the front desk.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleEmployee
}
