package enums

import "fmt"

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusPending   UserStatus = "pending"
)

var validUserStatuses = []UserStatus{
	UserStatusActive,
	UserStatusInactive,
	UserStatusSuspended,
	UserStatusPending,
}

func (s UserStatus) String() string {
	return string(s)
}

func (s UserStatus) IsValid() bool {
	for _, candidate := range validUserStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseUserStatus(value string) (UserStatus, error) {
	for _, candidate := range validUserStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user status %q", value)
}

// UserStatusOrDefault treats missing status as active.
func UserStatusOrDefault(value string) UserStatus {
	status, err := ParseUserStatus(value)
	if err != nil {
		return UserStatusActive
	}
	return status
}
