package entity

// Well-known role names seeded at install time.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// Role represents an authorization role.
// Many-to-many with User via user_roles.
type Role struct {
	ID   string
	Name string
}

// UserRole is one row of the user_roles association. It has no attributes
// of its own and is only written by the role synchronizer.
type UserRole struct {
	ID     string
	UserID string
	RoleID string
}
