package projects

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// memoryStore keys categories by slug only; ObjectID lookups are covered by pkg/db.
type memoryStore struct {
	rows map[string]*models.ProjectCategory
}

func (m *memoryStore) Insert(_ context.Context, doc *models.ProjectCategory) error {
	if _, ok := m.rows[doc.ID]; ok {
		return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}
	cp := *doc
	m.rows[doc.ID] = &cp
	return nil
}

func (m *memoryStore) List(context.Context, bson.M, bson.D) ([]models.ProjectCategory, error) {
	out := []models.ProjectCategory{}
	for _, c := range m.rows {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memoryStore) FindByKey(_ context.Context, key string) (*models.ProjectCategory, error) {
	c, ok := m.rows[key]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return c, nil
}

func (m *memoryStore) Update(ctx context.Context, key string, fields bson.M) (*models.ProjectCategory, error) {
	c, err := m.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if v, ok := fields["description"].(string); ok {
		c.Description = v
	}
	return c, nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	if _, ok := m.rows[key]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.rows, key)
	return nil
}

func (m *memoryStore) PushItem(ctx context.Context, key, itemID string, item any) (*models.ProjectCategory, error) {
	c, err := m.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	for _, p := range c.Projects {
		if p.ID == itemID {
			return nil, mongo.ErrNoDocuments
		}
	}
	c.Projects = append(c.Projects, item.(models.Project))
	return c, nil
}

func (m *memoryStore) ReplaceItem(ctx context.Context, key, itemID string, item any) (*models.ProjectCategory, error) {
	c, err := m.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	for i := range c.Projects {
		if c.Projects[i].ID == itemID {
			c.Projects[i] = item.(models.Project)
			return c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memoryStore) PullItem(ctx context.Context, key, itemID string) (*models.ProjectCategory, error) {
	c, err := m.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	for i := range c.Projects {
		if c.Projects[i].ID == itemID {
			c.Projects = append(c.Projects[:i], c.Projects[i+1:]...)
			return c, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func TestProjectCategoryFlow(t *testing.T) {
	store := &memoryStore{rows: map[string]*models.ProjectCategory{}}
	svc, err := NewService(ServiceParams{Store: store})
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, "admin", CreateCategoryInput{
		Name: "Client Work",
		Projects: []ProjectInput{
			{Title: "Shop Front", Description: "E-commerce build", Thumbnail: "https://cdn/x.png", Tags: []string{"go", " "}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "client-work", created.ID)
	require.Len(t, created.Projects, 1)
	assert.Equal(t, "shop-front", created.Projects[0].ID)
	assert.Equal(t, []string{"go"}, created.Projects[0].Tags)

	_, err = svc.CreateCategory(ctx, "admin", CreateCategoryInput{Name: "client work"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	_, err = svc.AddProject(ctx, "client-work", ProjectInput{Title: "Shop Front", Description: "dup", Thumbnail: "t"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	added, err := svc.AddProject(ctx, "client-work", ProjectInput{ID: "Blog", Title: "Company Blog", Description: "d", Thumbnail: "t", IsFeatured: true})
	require.NoError(t, err)
	assert.Equal(t, "blog", added.ID)

	updated, err := svc.UpdateProject(ctx, "client-work", "blog", ProjectInput{Title: "Engineering Blog", Description: "d2", Thumbnail: "t"})
	require.NoError(t, err)
	assert.Equal(t, "blog", updated.ID)
	assert.False(t, updated.IsFeatured)

	err = svc.RemoveProject(ctx, "client-work", "missing")
	require.Error(t, err)
	assert.Equal(t, "Project not found in this category", pkgerrors.As(err).Message())

	_, err = svc.AddProject(ctx, "nope", ProjectInput{Title: "X", Description: "d", Thumbnail: "t"})
	assert.Equal(t, "Project category not found", pkgerrors.As(err).Message())

	require.NoError(t, svc.RemoveProject(ctx, "client-work", "blog"))
	got, err := svc.GetCategory(ctx, "client-work")
	require.NoError(t, err)
	assert.Len(t, got.Projects, 1)
}

func TestUpdateCategoryRequiresChanges(t *testing.T) {
	store := &memoryStore{rows: map[string]*models.ProjectCategory{}}
	svc, err := NewService(ServiceParams{Store: store})
	require.NoError(t, err)
	ctx := context.Background()
	_, err = svc.CreateCategory(ctx, "", CreateCategoryInput{Name: "Apps"})
	require.NoError(t, err)

	_, err = svc.UpdateCategory(ctx, "apps", UpdateCategoryInput{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	desc := "Mobile and desktop"
	updated, err := svc.UpdateCategory(ctx, "apps", UpdateCategoryInput{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)

	_, err = svc.UpdateCategory(ctx, "missing", UpdateCategoryInput{Description: &desc})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, svc.DeleteCategory(ctx, "apps"))
	assert.True(t, pkgerrors.IsCode(svc.DeleteCategory(ctx, "apps"), pkgerrors.CodeNotFound))

	_, err = svc.ListCategories(ctx, ListInput{SortBy: "$where"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
