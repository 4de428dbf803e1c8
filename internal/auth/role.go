package auth

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleStaff  Role = "staff"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleMember:
		return true
	}
	return false
}

// Satisfies reports whether r grants required. Admin grants staff.
func (r Role) Satisfies(required Role) bool {
	if r == required {
		return true
	}
	return r == RoleAdmin && required == RoleStaff
}

func (r Role) IsStaff() bool {
	return r.Satisfies(RoleStaff)
}
