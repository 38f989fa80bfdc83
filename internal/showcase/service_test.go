package showcase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiosite/studiosite-backend/internal/users"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type fakeRepo struct {
	rows       map[bson.ObjectID]*models.ShowcaseProduct
	slugs      map[string]bool
	lastStatus string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[bson.ObjectID]*models.ShowcaseProduct{}, slugs: map[string]bool{}}
}

func (f *fakeRepo) Create(_ context.Context, p *models.ShowcaseProduct) error {
	if f.slugs[p.Slug] {
		return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	}
	p.ID = bson.NewObjectID()
	cp := *p
	f.rows[p.ID] = &cp
	f.slugs[p.Slug] = true
	return nil
}

func (f *fakeRepo) List(_ context.Context, status string) ([]listedProduct, error) {
	f.lastStatus = status
	out := []listedProduct{}
	for _, p := range f.rows {
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, listedProduct{ShowcaseProduct: *p, Poster: &models.User{ID: p.PostedBy, FirebaseUID: p.PostedByUID, DisplayName: "Poster"}})
	}
	return out, nil
}

func (f *fakeRepo) Update(_ context.Context, id bson.ObjectID, fields bson.M) (*models.ShowcaseProduct, error) {
	p, ok := f.rows[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if v, ok := fields["title"].(string); ok {
		p.Title = v
	}
	if v, ok := fields["status"].(string); ok {
		p.Status = v
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) Delete(_ context.Context, id bson.ObjectID) (bool, error) {
	_, ok := f.rows[id]
	delete(f.rows, id)
	return ok, nil
}

type fakeUsers struct {
	user *users.UserDTO
}

func (f fakeUsers) Get(_ context.Context, id string) (*users.UserDTO, error) {
	if f.user != nil && (id == f.user.ID || id == f.user.UID) {
		return f.user, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func buildService(t *testing.T) (*service, *fakeRepo, *users.UserDTO) {
	t.Helper()
	poster := &users.UserDTO{ID: bson.NewObjectID().Hex(), UID: "fb-poster"}
	repo := newFakeRepo()
	svc, err := NewService(ServiceParams{Repo: repo, Users: fakeUsers{user: poster}})
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC) }
	return impl, repo, poster
}

func TestCreateAttributesPosterByEitherID(t *testing.T) {
	svc, _, poster := buildService(t)

	byUID, err := svc.Create(context.Background(), "fb-poster", CreateInput{Title: "Studio CMS"})
	require.NoError(t, err)
	assert.Equal(t, "studio-cms", byUID.Slug)
	assert.Equal(t, poster.ID, byUID.PostedByID)
	assert.Equal(t, "fb-poster", byUID.PostedByUID)
	assert.Equal(t, "active", byUID.Status)

	byHex, err := svc.Create(context.Background(), poster.ID, CreateInput{Title: "Other", Slug: "Other Slug"})
	require.NoError(t, err)
	assert.Equal(t, "other-slug", byHex.Slug)
}

func TestCreateRejectsUnknownUserAndDuplicateSlug(t *testing.T) {
	svc, _, _ := buildService(t)

	_, err := svc.Create(context.Background(), "ghost", CreateInput{Title: "X"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Create(context.Background(), "fb-poster", CreateInput{Title: "Dup"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "fb-poster", CreateInput{Title: "Dup"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestListJoinsPosterAndFilters(t *testing.T) {
	svc, repo, _ := buildService(t)
	_, err := svc.Create(context.Background(), "fb-poster", CreateInput{Title: "Live"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "fb-poster", CreateInput{Title: "Hidden", Status: "draft"})
	require.NoError(t, err)

	active, err := svc.List(context.Background(), ListInput{Status: "active"})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NotNil(t, active[0].PostedBy)
	assert.Equal(t, "Poster", active[0].PostedBy.DisplayName)
	assert.Equal(t, "active", repo.lastStatus)

	_, err = svc.List(context.Background(), ListInput{Status: "archived"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _, _ := buildService(t)
	created, err := svc.Create(context.Background(), "fb-poster", CreateInput{Title: "Before"})
	require.NoError(t, err)

	title := "After"
	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)

	_, err = svc.Update(context.Background(), "bad", UpdateInput{Title: &title})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.True(t, pkgerrors.IsCode(svc.Delete(context.Background(), created.ID), pkgerrors.CodeNotFound))
}
