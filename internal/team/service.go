package team

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"github.com/studiosite/studiosite-backend/pkg/enums"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"github.com/studiosite/studiosite-backend/pkg/pagination"
	"github.com/studiosite/studiosite-backend/pkg/slug"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const defaultPageSize = 10

var memberSortFields = map[string]bool{"roleValue": true, "name": true, "joinedDate": true, "createdAt": true}

var memberStatuses = []enums.PublishStatus{enums.PublishStatusActive, enums.PublishStatusInactive}

type Service interface {
	ListMembers(ctx context.Context, input ListInput) (*ListResult, error)
	MembersByDepartment(ctx context.Context, department, status string) ([]MemberDTO, error)
	GetMember(ctx context.Context, id string) (*MemberDTO, error)
	CreateMember(ctx context.Context, createdBy string, input CreateMemberInput) (*MemberDTO, error)
	UpdateMember(ctx context.Context, id string, input UpdateMemberInput) (*MemberDTO, error)
	DeleteMember(ctx context.Context, id string) error

	ListDepartments(ctx context.Context) ([]DepartmentDTO, error)
	CreateDepartment(ctx context.Context, input CreateDepartmentInput) (*DepartmentDTO, error)
	DeleteDepartment(ctx context.Context, name string) error
}

type memberRepository interface {
	Create(ctx context.Context, m *models.TeamMember) error
	List(ctx context.Context, f memberFilter, p page) ([]models.TeamMember, int64, error)
	FindByKey(ctx context.Context, key string) (*models.TeamMember, error)
	Update(ctx context.Context, key string, fields bson.M) (*models.TeamMember, error)
	Delete(ctx context.Context, key string) error
	CountInDepartment(ctx context.Context, name string) (int64, error)
}

type departmentRepository interface {
	List(ctx context.Context) ([]models.Department, error)
	Create(ctx context.Context, d *models.Department) error
	DeleteByName(ctx context.Context, name string) (bool, error)
}

type ServiceParams struct {
	Members     memberRepository
	Departments departmentRepository
	Sanitizer   func(string) string
}

type service struct {
	members     memberRepository
	departments departmentRepository
	sanitize    func(string) string
	now         func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Members == nil {
		return nil, fmt.Errorf("team member repository required")
	}
	if params.Departments == nil {
		return nil, fmt.Errorf("department repository required")
	}
	sanitize := params.Sanitizer
	if sanitize == nil {
		sanitize = strings.TrimSpace
	}
	return &service{
		members:     params.Members,
		departments: params.Departments,
		sanitize:    sanitize,
		now:         time.Now,
	}, nil
}

func (s *service) ListMembers(ctx context.Context, input ListInput) (*ListResult, error) {
	status, err := parseStatusFilter(input.Status)
	if err != nil {
		return nil, err
	}
	sortBy := input.SortBy
	if sortBy == "" {
		sortBy = "roleValue"
	}
	if !memberSortFields[sortBy] {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "cannot sort by %q", sortBy)
	}
	direction := 1
	if strings.EqualFold(input.SortOrder, "desc") {
		direction = -1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = pagination.NormalizeLimit(limit)
	pageNum := input.Page
	if pageNum < 1 {
		pageNum = 1
	}

	f := memberFilter{
		Department: strings.TrimSpace(input.Department),
		Status:     status,
		Role:       strings.TrimSpace(input.Role),
	}
	for _, skill := range input.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			f.Skills = append(f.Skills, skill)
		}
	}
	rows, total, err := s.members.List(ctx, f, page{
		Sort:  bson.D{{Key: sortBy, Value: direction}, {Key: "_id", Value: 1}},
		Skip:  int64((pageNum - 1) * limit),
		Limit: int64(limit),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list team members")
	}

	items := make([]MemberDTO, 0, len(rows))
	for i := range rows {
		items = append(items, memberFromModel(&rows[i]))
	}
	return &ListResult{
		Items:       items,
		CurrentPage: pageNum,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
		TotalItems:  total,
		PerPage:     limit,
	}, nil
}

func (s *service) MembersByDepartment(ctx context.Context, department, status string) ([]MemberDTO, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "department is required")
	}
	st, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}
	rows, _, err := s.members.List(ctx, memberFilter{Department: department, DepartmentMatch: true, Status: st}, page{
		Sort: bson.D{{Key: "roleValue", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list team members by department")
	}
	out := make([]MemberDTO, 0, len(rows))
	for i := range rows {
		out = append(out, memberFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetMember(ctx context.Context, id string) (*MemberDTO, error) {
	m, err := s.members.FindByKey(ctx, id)
	if err != nil {
		return nil, memberError(err, "load team member")
	}
	dto := memberFromModel(m)
	return &dto, nil
}

func (s *service) CreateMember(ctx context.Context, createdBy string, input CreateMemberInput) (*MemberDTO, error) {
	name := s.sanitize(input.Name)
	id := slug.Make(input.ID)
	if id == "" {
		id = slug.Make(name)
	}
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	status := enums.PublishStatusActive
	if input.Status != "" {
		var err error
		if status, err = enums.ParsePublishStatus(input.Status, memberStatuses...); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
	}

	now := s.now().UTC()
	m := &models.TeamMember{
		ID:           id,
		Name:         name,
		Role:         s.sanitize(input.Role),
		RoleValue:    input.RoleValue,
		Department:   s.sanitize(input.Department),
		ProfileImage: strings.TrimSpace(input.ProfileImage),
		Bio:          s.sanitize(input.Bio),
		Location:     s.location(input.Location),
		JoinedDate:   strings.TrimSpace(input.JoinedDate),
		Skills:       s.cleanList(input.Skills),
		SocialLinks:  socialToModel(input.SocialLinks),
		Status:       status.String(),
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.members.Create(ctx, m); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("Team member with ID %q already exists", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create team member")
	}
	dto := memberFromModel(m)
	return &dto, nil
}

func (s *service) UpdateMember(ctx context.Context, id string, input UpdateMemberInput) (*MemberDTO, error) {
	fields := bson.M{}
	if input.Name != nil {
		fields["name"] = s.sanitize(*input.Name)
	}
	if input.Role != nil {
		fields["role"] = s.sanitize(*input.Role)
	}
	if input.RoleValue != nil {
		fields["roleValue"] = *input.RoleValue
	}
	if input.Department != nil {
		fields["department"] = s.sanitize(*input.Department)
	}
	if input.ProfileImage != nil {
		fields["profileImage"] = strings.TrimSpace(*input.ProfileImage)
	}
	if input.Bio != nil {
		fields["bio"] = s.sanitize(*input.Bio)
	}
	if input.Location != nil {
		fields["location"] = s.location(*input.Location)
	}
	if input.JoinedDate != nil {
		fields["joinedDate"] = strings.TrimSpace(*input.JoinedDate)
	}
	if input.Skills != nil {
		fields["skills"] = s.cleanList(input.Skills)
	}
	if input.SocialLinks != nil {
		fields["socialLinks"] = socialToModel(*input.SocialLinks)
	}
	if input.Status != nil {
		status, err := enums.ParsePublishStatus(*input.Status, memberStatuses...)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		fields["status"] = status.String()
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	fields["updatedAt"] = s.now().UTC()

	m, err := s.members.Update(ctx, id, fields)
	if err != nil {
		return nil, memberError(err, "update team member")
	}
	dto := memberFromModel(m)
	return &dto, nil
}

func (s *service) DeleteMember(ctx context.Context, id string) error {
	if err := s.members.Delete(ctx, id); err != nil {
		return memberError(err, "delete team member")
	}
	return nil
}

func (s *service) ListDepartments(ctx context.Context) ([]DepartmentDTO, error) {
	rows, err := s.departments.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list departments")
	}
	out := make([]DepartmentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, departmentFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateDepartment(ctx context.Context, input CreateDepartmentInput) (*DepartmentDTO, error) {
	name := s.sanitize(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Department name is required")
	}
	now := s.now().UTC()
	d := &models.Department{
		Name:        name,
		Description: s.sanitize(input.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.departments.Create(ctx, d); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "Department already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create department")
	}
	dto := departmentFromModel(d)
	return &dto, nil
}

// DeleteDepartment refuses while any member is still assigned to the department.
func (s *service) DeleteDepartment(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "Department name is required")
	}
	assigned, err := s.members.CountInDepartment(ctx, name)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count department members")
	}
	if assigned > 0 {
		return pkgerrors.Newf(pkgerrors.CodeConflict,
			"Cannot delete department. %d team member(s) are assigned to this department.", assigned)
	}
	deleted, err := s.departments.DeleteByName(ctx, name)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete department")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Department not found")
	}
	return nil
}

func (s *service) cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = s.sanitize(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (s *service) location(in Location) models.Location {
	return models.Location{
		City:    s.sanitize(in.City),
		State:   s.sanitize(in.State),
		Country: s.sanitize(in.Country),
	}
}

func socialToModel(in SocialLinks) models.SocialLinks {
	return models.SocialLinks{
		LinkedIn: strings.TrimSpace(in.LinkedIn),
		Twitter:  strings.TrimSpace(in.Twitter),
		Email:    strings.TrimSpace(in.Email),
		GitHub:   strings.TrimSpace(in.GitHub),
	}
}

func parseStatusFilter(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	status, err := enums.ParsePublishStatus(value, memberStatuses...)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
	}
	return status.String(), nil
}

func memberError(err error, action string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Team member not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
