package enums

import "fmt"

// Role is the account-level permission stored on a user record.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

var validRoles = []Role{
	RoleUser,
	RoleAdmin,
	RoleModerator,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

// RoleOrDefault returns RoleUser for empty or unknown stored values.
func RoleOrDefault(value string) Role {
	role, err := ParseRole(value)
	if err != nil {
		return RoleUser
	}
	return role
}
