package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"github.com/studiosite/studiosite-backend/pkg/enums"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"github.com/studiosite/studiosite-backend/pkg/pagination"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service defines the user-record operations used by auth flows and the users API.
type Service interface {
	EnsureProjection(ctx context.Context, p Projection) (*UserDTO, bool, error)
	FindByFirebaseUID(ctx context.Context, uid string) (*UserDTO, error)
	FindByEmail(ctx context.Context, email string) (*UserDTO, error)
	Get(ctx context.Context, id string) (*UserDTO, error)
	List(ctx context.Context, q ListQuery) (*ListResult[UserDTO], error)
	ListStatuses(ctx context.Context, q ListQuery) (*ListResult[StatusDTO], error)
	ListRoles(ctx context.Context, q ListQuery) (*ListResult[RoleDTO], error)
	GetStatus(ctx context.Context, id string) (*StatusDTO, error)
	GetRole(ctx context.Context, id string) (*RoleDTO, error)
	UpdateStatus(ctx context.Context, id string, status enums.UserStatus) (*StatusDTO, error)
	UpdateRole(ctx context.Context, id string, role enums.Role) (*RoleDTO, error)
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest, callerIsAdmin bool) (*UserDTO, error)
	Delete(ctx context.Context, id string) error
}

// ListQuery is the raw listing input from the transport layer.
type ListQuery struct {
	Status string
	Role   string
	Limit  int
	Cursor string
}

type repository interface {
	FindByObjectID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Upsert(ctx context.Context, p Projection) (*models.User, bool, error)
	List(ctx context.Context, f ListFilter) ([]models.User, error)
	Update(ctx context.Context, id bson.ObjectID, fields bson.M) (*models.User, error)
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
}

type identityDeleter interface {
	DeleteUser(ctx context.Context, uid string) error
}

type ServiceParams struct {
	Repo      repository
	Identity  identityDeleter
	Sanitizer func(string) string
}

type service struct {
	repo     repository
	identity identityDeleter
	sanitize func(string) string
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Identity == nil {
		return nil, fmt.Errorf("identity provider required")
	}
	sanitize := params.Sanitizer
	if sanitize == nil {
		sanitize = strings.TrimSpace
	}
	return &service{repo: params.Repo, identity: params.Identity, sanitize: sanitize}, nil
}

func (s *service) EnsureProjection(ctx context.Context, p Projection) (*UserDTO, bool, error) {
	p.FirebaseUID = strings.TrimSpace(p.FirebaseUID)
	if p.FirebaseUID == "" {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "external id is required")
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.DisplayName = s.sanitize(p.DisplayName)
	p.Address = s.sanitize(p.Address)

	user, created, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert user")
	}
	return FromModel(user), created, nil
}

// FindByFirebaseUID returns nil without error when no record exists.
func (s *service) FindByFirebaseUID(ctx context.Context, uid string) (*UserDTO, error) {
	user, err := s.repo.FindByFirebaseUID(ctx, uid)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}
	return FromModel(user), nil
}

// FindByEmail returns nil without error when no record exists.
func (s *service) FindByEmail(ctx context.Context, email string) (*UserDTO, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}
	return FromModel(user), nil
}

func (s *service) Get(ctx context.Context, id string) (*UserDTO, error) {
	user, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

// resolve accepts either a database id or an external id.
func (s *service) resolve(ctx context.Context, id string) (*models.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if oid, ok := db.ParseObjectID(id); ok {
		user, err := s.repo.FindByObjectID(ctx, oid)
		if err == nil {
			return user, nil
		}
		if !db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
		}
	}
	user, err := s.repo.FindByFirebaseUID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find user")
	}
	return user, nil
}

func (s *service) page(ctx context.Context, q ListQuery) ([]models.User, string, error) {
	filter := ListFilter{Limit: pagination.NormalizeLimit(q.Limit)}
	if q.Status != "" {
		status, err := enums.ParseUserStatus(q.Status)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = status
	}
	if q.Role != "" {
		role, err := enums.ParseRole(q.Role)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role filter")
		}
		filter.Role = role
	}
	cursor, err := pagination.ParseCursor(q.Cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	filter.Cursor = cursor

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	next := ""
	if len(rows) > filter.Limit {
		rows = rows[:filter.Limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

func (s *service) List(ctx context.Context, q ListQuery) (*ListResult[UserDTO], error) {
	rows, next, err := s.page(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]UserDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return &ListResult[UserDTO]{Items: items, NextCursor: next}, nil
}

func (s *service) ListStatuses(ctx context.Context, q ListQuery) (*ListResult[StatusDTO], error) {
	rows, next, err := s.page(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]StatusDTO, 0, len(rows))
	for i := range rows {
		items = append(items, statusFromModel(&rows[i]))
	}
	return &ListResult[StatusDTO]{Items: items, NextCursor: next}, nil
}

func (s *service) ListRoles(ctx context.Context, q ListQuery) (*ListResult[RoleDTO], error) {
	rows, next, err := s.page(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]RoleDTO, 0, len(rows))
	for i := range rows {
		items = append(items, roleFromModel(&rows[i]))
	}
	return &ListResult[RoleDTO]{Items: items, NextCursor: next}, nil
}

func (s *service) GetStatus(ctx context.Context, id string) (*StatusDTO, error) {
	user, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := statusFromModel(user)
	return &dto, nil
}

func (s *service) GetRole(ctx context.Context, id string) (*RoleDTO, error) {
	user, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := roleFromModel(user)
	return &dto, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, status enums.UserStatus) (*StatusDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid status %q", status)
	}
	user, err := s.update(ctx, id, bson.M{"status": status.String()})
	if err != nil {
		return nil, err
	}
	dto := statusFromModel(user)
	return &dto, nil
}

func (s *service) UpdateRole(ctx context.Context, id string, role enums.Role) (*RoleDTO, error) {
	if !role.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid role %q", role)
	}
	user, err := s.update(ctx, id, bson.M{"role": role.String()})
	if err != nil {
		return nil, err
	}
	dto := roleFromModel(user)
	return &dto, nil
}

// UpdateProfile applies profile edits. Role and status changes are dropped
// unless the caller is an admin.
func (s *service) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest, callerIsAdmin bool) (*UserDTO, error) {
	fields := bson.M{}
	setText := func(key string, primary, alias *string) {
		v := primary
		if v == nil {
			v = alias
		}
		if v != nil {
			fields[key] = s.sanitize(*v)
		}
	}
	setText("displayName", req.DisplayName, req.Name)
	setText("phoneNumber", req.PhoneNumber, req.Phone)
	setText("address", req.Address, nil)
	setText("photoURL", req.PhotoURL, req.Image)
	setText("provider", req.Provider, nil)
	if req.Email != nil {
		fields["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	if callerIsAdmin {
		if req.Role != nil {
			role, err := enums.ParseRole(*req.Role)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
			}
			fields["role"] = role.String()
		}
		if req.Status != nil {
			status, err := enums.ParseUserStatus(*req.Status)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
			}
			fields["status"] = status.String()
		}
	}

	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no updatable fields provided")
	}
	user, err := s.update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) update(ctx context.Context, id string, fields bson.M) (*models.User, error) {
	current, err := s.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.Update(ctx, current.ID, fields)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		if db.IsDuplicateKey(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return user, nil
}

// Delete removes the provider identity first and the local record second.
func (s *service) Delete(ctx context.Context, id string) error {
	user, err := s.resolve(ctx, id)
	if err != nil {
		return err
	}
	if user.FirebaseUID != "" {
		if err := s.identity.DeleteUser(ctx, user.FirebaseUID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete identity")
		}
	}
	if _, err := s.repo.Delete(ctx, user.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	return nil
}
