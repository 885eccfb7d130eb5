package models

// Role represents the four principal kinds known to the RBAC system.
type Role string

const (
	RoleStudent        Role = "STUDENT"
	RoleEmployee       Role = "EMPLOYEE"
	RoleInstituteAdmin Role = "INSTITUTE_ADMIN"
	RoleSuperAdmin     Role = "SUPER_ADMIN"
)

// RoutePrefix returns the route prefix a role is allowed to reach. The
// mapping is static and total; a role may only reach its own prefix.
func (r Role) RoutePrefix() string {
	switch r {
	case RoleStudent:
		return "/student"
	case RoleEmployee:
		return "/employee"
	case RoleInstituteAdmin:
		return "/institute"
	case RoleSuperAdmin:
		return "/admin"
	}
	return ""
}

// Valid reports whether the role is one of the four known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleEmployee, RoleInstituteAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// PrincipalRecord is the uniform shape every credential table resolves to
// during authentication, regardless of which role-specific table it lives in.
type PrincipalRecord struct {
	ID            string  `db:"id"`
	DisplayName   string  `db:"display_name"`
	LoginID       string  `db:"login_id"`
	PasswordHash  string  `db:"password_hash"`
	InstitutionID *string `db:"institution_id"`
	Department    *string `db:"department"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
