package auth

// Role represents a caller role.
type Role string

const (
	RoleDevice Role = "device"
	RoleUser   Role = "user"
	RoleAdmin  Role = "admin"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleDevice, RoleUser, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when role satisfies required role.
func RoleAtLeast(role Role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleDevice:
		return 1
	case RoleUser:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}
