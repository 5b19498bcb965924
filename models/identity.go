package models

// Role is the authorization tier of an authenticated caller.
type Role string

const (
	RoleCitizen    Role = "citizen"
	RoleGovernment Role = "government"
	RoleAdmin      Role = "admin"
)

// IsGovernment reports whether the role may triage issues.
func (r Role) IsGovernment() bool {
	return r == RoleGovernment || r == RoleAdmin
}

// Identity is the verified caller behind a request.
type Identity struct {
	UserID string
	Role   Role
}
