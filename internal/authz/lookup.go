package authz

import (
	"context"
	"fmt"
	"strings"

	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"github.com/studiosite/studiosite-backend/pkg/enums"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Principal is the stored view of a caller used by authorization decisions.
type Principal struct {
	DatabaseID  string
	ExternalUID string
	Role        enums.Role
}

type userFinder interface {
	FindByObjectID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
}

// RoleStore resolves stored roles for either identifier shape.
type RoleStore struct {
	users userFinder
}

func NewRoleStore(users userFinder) (*RoleStore, error) {
	if users == nil {
		return nil, fmt.Errorf("user finder required")
	}
	return &RoleStore{users: users}, nil
}

// Lookup tries id as a database id when it parses as one, then as an external id.
// It returns nil, nil when no record matches.
func (s *RoleStore) Lookup(ctx context.Context, id string) (*Principal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}

	if oid, ok := db.ParseObjectID(id); ok {
		user, err := s.users.FindByObjectID(ctx, oid)
		switch {
		case err == nil:
			return toPrincipal(user), nil
		case !db.IsNotFound(err):
			return nil, fmt.Errorf("lookup user by id: %w", err)
		}
	}

	user, err := s.users.FindByFirebaseUID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup user by external id: %w", err)
	}
	return toPrincipal(user), nil
}

// RoleOf returns the stored role, or nil when no record exists.
func (s *RoleStore) RoleOf(ctx context.Context, id string) (*enums.Role, error) {
	p, err := s.Lookup(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	role := p.Role
	return &role, nil
}

func toPrincipal(u *models.User) *Principal {
	return &Principal{
		DatabaseID:  u.ID.Hex(),
		ExternalUID: u.FirebaseUID,
		Role:        enums.RoleOrDefault(u.Role),
	}
}
