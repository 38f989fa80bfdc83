package enums

import "fmt"

// PublishStatus controls visibility of public content (services, showcase products, team members).
type PublishStatus string

const (
	PublishStatusActive   PublishStatus = "active"
	PublishStatusInactive PublishStatus = "inactive"
	PublishStatusDraft    PublishStatus = "draft"
)

func (s PublishStatus) String() string {
	return string(s)
}

// IsValid reports whether s is one of allowed, or any known status when allowed is empty.
func (s PublishStatus) IsValid(allowed ...PublishStatus) bool {
	if len(allowed) == 0 {
		allowed = []PublishStatus{PublishStatusActive, PublishStatusInactive, PublishStatusDraft}
	}
	for _, candidate := range allowed {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParsePublishStatus(value string, allowed ...PublishStatus) (PublishStatus, error) {
	status := PublishStatus(value)
	if !status.IsValid(allowed...) {
		return "", fmt.Errorf("invalid status %q", value)
	}
	return status, nil
}
