package authz

import (
	"fmt"
	"strings"

	"github.com/studiosite/studiosite-backend/pkg/auth"
	"github.com/studiosite/studiosite-backend/pkg/config"
	"github.com/studiosite/studiosite-backend/pkg/enums"
)

// Policy holds the admin and ownership decisions. It performs no I/O.
type Policy struct {
	claimPolicy string
}

func NewPolicy(claimPolicy string) (Policy, error) {
	normalized := strings.ToLower(strings.TrimSpace(claimPolicy))
	if normalized == "" {
		normalized = config.AdminClaimPolicyFallback
	}
	switch normalized {
	case config.AdminClaimPolicyFallback, config.AdminClaimPolicyEither:
		return Policy{claimPolicy: normalized}, nil
	default:
		return Policy{}, fmt.Errorf("unknown admin claim policy %q", claimPolicy)
	}
}

// IsAdmin decides admin for an identity and its stored record (nil when absent).
// A stored admin role always passes. Under the fallback policy a claim only
// counts when no record exists; under either it counts unconditionally.
func (p Policy) IsAdmin(id *auth.Identity, stored *Principal) bool {
	if stored != nil && stored.Role == enums.RoleAdmin {
		return true
	}
	if !id.AdminClaim() {
		return false
	}
	if p.claimPolicy == config.AdminClaimPolicyEither {
		return true
	}
	return stored == nil
}

// IsOwner reports whether ownerID names the caller by subject id, database id
// or external id.
func (p Policy) IsOwner(id *auth.Identity, stored *Principal, ownerID string) bool {
	ownerID = strings.TrimSpace(ownerID)
	if id == nil || ownerID == "" {
		return false
	}
	if id.SubjectID == ownerID {
		return true
	}
	if stored == nil {
		return false
	}
	return stored.DatabaseID == ownerID || (stored.ExternalUID != "" && stored.ExternalUID == ownerID)
}
