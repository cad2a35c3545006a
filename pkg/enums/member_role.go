package enums

import "fmt"

// MemberRole describes what a tenant user may do.
type MemberRole string

const (
	MemberRoleCashier MemberRole = "cashier"
	MemberRoleManager MemberRole = "manager"
	MemberRoleAdmin   MemberRole = "admin"
)

var validMemberRoles = []MemberRole{
	MemberRoleCashier,
	MemberRoleManager,
	MemberRoleAdmin,
}

// IsValid reports whether the value is a known MemberRole.
func (r MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanManageShifts reports whether the role may act on shifts it does not own.
func (r MemberRole) CanManageShifts() bool {
	return r == MemberRoleManager || r == MemberRoleAdmin
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
