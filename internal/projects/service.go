package projects

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"github.com/studiosite/studiosite-backend/pkg/slug"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var sortableFields = map[string]bool{"order": true, "name": true, "createdAt": true, "updatedAt": true}

type Service interface {
	ListCategories(ctx context.Context, input ListInput) ([]CategoryDTO, error)
	GetCategory(ctx context.Context, id string) (*CategoryDTO, error)
	CreateCategory(ctx context.Context, createdBy string, input CreateCategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id string, input UpdateCategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id string) error
	AddProject(ctx context.Context, categoryID string, input ProjectInput) (*ProjectDTO, error)
	UpdateProject(ctx context.Context, categoryID, projectID string, input ProjectInput) (*ProjectDTO, error)
	RemoveProject(ctx context.Context, categoryID, projectID string) error
}

type store interface {
	Insert(ctx context.Context, doc *models.ProjectCategory) error
	List(ctx context.Context, filter bson.M, sort bson.D) ([]models.ProjectCategory, error)
	FindByKey(ctx context.Context, key string) (*models.ProjectCategory, error)
	Update(ctx context.Context, key string, fields bson.M) (*models.ProjectCategory, error)
	Delete(ctx context.Context, key string) error
	PushItem(ctx context.Context, key, itemID string, item any) (*models.ProjectCategory, error)
	ReplaceItem(ctx context.Context, key, itemID string, item any) (*models.ProjectCategory, error)
	PullItem(ctx context.Context, key, itemID string) (*models.ProjectCategory, error)
}

type ServiceParams struct {
	Store     store
	Sanitizer func(string) string
}

type service struct {
	store    store
	sanitize func(string) string
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("project category store required")
	}
	sanitize := params.Sanitizer
	if sanitize == nil {
		sanitize = strings.TrimSpace
	}
	return &service{store: params.Store, sanitize: sanitize, now: time.Now}, nil
}

func (s *service) ListCategories(ctx context.Context, input ListInput) ([]CategoryDTO, error) {
	filter := bson.M{}
	if input.IsActive != nil {
		filter["isActive"] = *input.IsActive
	}
	sortBy := input.SortBy
	if sortBy == "" {
		sortBy = "order"
	}
	if !sortableFields[sortBy] {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "cannot sort by %q", sortBy)
	}
	direction := 1
	if strings.EqualFold(input.SortOrder, "desc") {
		direction = -1
	}

	rows, err := s.store.List(ctx, filter, bson.D{{Key: sortBy, Value: direction}})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list project categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, categoryFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetCategory(ctx context.Context, id string) (*CategoryDTO, error) {
	c, err := s.store.FindByKey(ctx, id)
	if err != nil {
		return nil, categoryError(err, "load project category")
	}
	dto := categoryFromModel(c)
	return &dto, nil
}

func (s *service) CreateCategory(ctx context.Context, createdBy string, input CreateCategoryInput) (*CategoryDTO, error) {
	name := s.sanitize(input.Name)
	id := slug.Make(input.ID)
	if id == "" {
		id = slug.Make(name)
	}
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required").
			WithDetails(map[string]string{"name": "is required"})
	}

	items := make([]models.Project, 0, len(input.Projects))
	seen := map[string]bool{}
	for _, in := range input.Projects {
		p, err := s.buildProject(in, "")
		if err != nil {
			return nil, err
		}
		if seen[p.ID] {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "Project with ID %q already exists in this category", p.ID)
		}
		seen[p.ID] = true
		items = append(items, p)
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	now := s.now().UTC()
	c := &models.ProjectCategory{
		ObjectID:    bson.NewObjectID(),
		ID:          id,
		Name:        name,
		Description: s.sanitize(input.Description),
		Order:       input.Order,
		IsActive:    isActive,
		Projects:    items,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, c); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("Project category with ID %q already exists", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create project category")
	}
	dto := categoryFromModel(c)
	return &dto, nil
}

func (s *service) UpdateCategory(ctx context.Context, id string, input UpdateCategoryInput) (*CategoryDTO, error) {
	fields := bson.M{}
	if input.Name != nil {
		fields["name"] = s.sanitize(*input.Name)
	}
	if input.Description != nil {
		fields["description"] = s.sanitize(*input.Description)
	}
	if input.Order != nil {
		fields["order"] = *input.Order
	}
	if input.IsActive != nil {
		fields["isActive"] = *input.IsActive
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "No changes were made to the project category")
	}
	c, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return nil, categoryError(err, "update project category")
	}
	dto := categoryFromModel(c)
	return &dto, nil
}

func (s *service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return categoryError(err, "delete project category")
	}
	return nil
}

func (s *service) AddProject(ctx context.Context, categoryID string, input ProjectInput) (*ProjectDTO, error) {
	p, err := s.buildProject(input, "")
	if err != nil {
		return nil, err
	}
	if _, err := s.store.PushItem(ctx, categoryID, p.ID, p); err != nil {
		if !db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add project")
		}
		if _, lookupErr := s.store.FindByKey(ctx, categoryID); lookupErr != nil {
			return nil, categoryError(lookupErr, "load project category")
		}
		return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "Project with ID %q already exists in this category", p.ID)
	}
	dto := projectFromModel(p)
	return &dto, nil
}

func (s *service) UpdateProject(ctx context.Context, categoryID, projectID string, input ProjectInput) (*ProjectDTO, error) {
	p, err := s.buildProject(input, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.ReplaceItem(ctx, categoryID, projectID, p); err != nil {
		return nil, s.projectError(ctx, categoryID, err, "update project")
	}
	dto := projectFromModel(p)
	return &dto, nil
}

func (s *service) RemoveProject(ctx context.Context, categoryID, projectID string) error {
	if _, err := s.store.PullItem(ctx, categoryID, projectID); err != nil {
		return s.projectError(ctx, categoryID, err, "remove project")
	}
	return nil
}

func (s *service) buildProject(in ProjectInput, fixedID string) (models.Project, error) {
	title := s.sanitize(in.Title)
	id := fixedID
	if id == "" {
		if id = slug.Make(in.ID); id == "" {
			id = slug.Make(title)
		}
	}
	if id == "" {
		return models.Project{}, pkgerrors.New(pkgerrors.CodeValidation, "project title is required")
	}
	tags := make([]string, 0, len(in.Tags))
	for _, tag := range in.Tags {
		if tag = s.sanitize(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return models.Project{
		ID:          id,
		Title:       title,
		Description: s.sanitize(in.Description),
		Tags:        tags,
		Thumbnail:   strings.TrimSpace(in.Thumbnail),
		PreviewURL:  strings.TrimSpace(in.PreviewURL),
		IsFeatured:  in.IsFeatured,
		Order:       in.Order,
	}, nil
}

func (s *service) projectError(ctx context.Context, categoryID string, err error, action string) error {
	if !db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
	if _, lookupErr := s.store.FindByKey(ctx, categoryID); lookupErr != nil {
		return categoryError(lookupErr, "load project category")
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "Project not found in this category")
}

func categoryError(err error, action string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Project category not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
