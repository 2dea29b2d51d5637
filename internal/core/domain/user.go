package domain

type UserID string

type UserRole string

const (
	RoleEngineer UserRole = "engineer"
	RoleAdmin    UserRole = "admin"
)

// Principal is the authenticated caller of a service operation.
type Principal struct {
	UserID   UserID
	Username string
	Role     UserRole
}

// IsAdmin reports whether the principal may act on other users' resources.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
