package showcase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studiosite/studiosite-backend/internal/users"
	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"github.com/studiosite/studiosite-backend/pkg/enums"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"github.com/studiosite/studiosite-backend/pkg/slug"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service manages showcase products shown on the marketing site.
type Service interface {
	List(ctx context.Context, input ListInput) ([]ProductDTO, error)
	Create(ctx context.Context, userID string, input CreateInput) (*ProductDTO, error)
	Update(ctx context.Context, id string, input UpdateInput) (*ProductDTO, error)
	Delete(ctx context.Context, id string) error
}

type repository interface {
	Create(ctx context.Context, p *models.ShowcaseProduct) error
	List(ctx context.Context, status string) ([]listedProduct, error)
	Update(ctx context.Context, id bson.ObjectID, fields bson.M) (*models.ShowcaseProduct, error)
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
}

type userLookup interface {
	Get(ctx context.Context, id string) (*users.UserDTO, error)
}

type ServiceParams struct {
	Repo      repository
	Users     userLookup
	Sanitizer func(string) string
}

type service struct {
	repo     repository
	users    userLookup
	sanitize func(string) string
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("showcase repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users service required")
	}
	sanitize := params.Sanitizer
	if sanitize == nil {
		sanitize = strings.TrimSpace
	}
	return &service{repo: params.Repo, users: params.Users, sanitize: sanitize, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]ProductDTO, error) {
	status := strings.TrimSpace(input.Status)
	if status != "" {
		if _, err := enums.ParsePublishStatus(status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
	}
	rows, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list showcase products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, fromModel(&rows[i].ShowcaseProduct, rows[i].Poster))
	}
	return out, nil
}

// Create attributes the product to the user named by userID, which may be a
// database id or an external id.
func (s *service) Create(ctx context.Context, userID string, input CreateInput) (*ProductDTO, error) {
	poster, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	posterID, ok := db.ParseObjectID(poster.ID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stored user id is malformed")
	}

	title := s.sanitize(input.Title)
	productSlug := slug.Make(firstNonEmpty(input.Slug, title))
	if productSlug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug and title are required").
			WithDetails(map[string]string{"slug": "is required"})
	}
	status := enums.PublishStatusActive
	if input.Status != "" {
		status, err = enums.ParsePublishStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
	}

	now := s.now().UTC()
	p := &models.ShowcaseProduct{
		Slug:        productSlug,
		Title:       title,
		Tagline:     s.sanitize(input.Tagline),
		Description: s.sanitize(input.Description),
		CoverImage:  models.Image{URL: strings.TrimSpace(input.CoverImage.URL), Alt: s.sanitize(input.CoverImage.Alt)},
		Badge:       s.badge(input.Badge),
		LiveLink:    strings.TrimSpace(input.LiveLink),
		RepoLink:    strings.TrimSpace(input.RepoLink),
		Highlights:  s.highlights(input.Highlights),
		Features:    s.texts(input.Features),
		CTA:         models.LinkCTA{Text: s.sanitize(input.CTA.Text), URL: strings.TrimSpace(input.CTA.URL)},
		Theme:       models.Theme{GradientFrom: s.sanitize(input.Theme.GradientFrom), GradientTo: s.sanitize(input.Theme.GradientTo)},
		Status:      status.String(),
		Order:       input.Order,
		PostedBy:    posterID,
		PostedByUID: poster.UID,
		CreatedBy:   poster.UID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a product with this slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create showcase product")
	}
	dto := fromModel(p, nil)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (*ProductDTO, error) {
	oid, ok := db.ParseObjectID(id)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}

	fields := bson.M{"updatedAt": s.now().UTC()}
	if input.Slug != nil {
		v := slug.Make(*input.Slug)
		if v == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug cannot be empty")
		}
		fields["slug"] = v
	}
	if input.Title != nil {
		fields["title"] = s.sanitize(*input.Title)
	}
	if input.Tagline != nil {
		fields["tagline"] = s.sanitize(*input.Tagline)
	}
	if input.Description != nil {
		fields["description"] = s.sanitize(*input.Description)
	}
	if input.CoverImage != nil {
		fields["coverImage"] = models.Image{URL: strings.TrimSpace(input.CoverImage.URL), Alt: s.sanitize(input.CoverImage.Alt)}
	}
	if input.Badge != nil {
		fields["badge"] = s.badge(input.Badge)
	}
	if input.LiveLink != nil {
		fields["liveLink"] = strings.TrimSpace(*input.LiveLink)
	}
	if input.RepoLink != nil {
		fields["repoLink"] = strings.TrimSpace(*input.RepoLink)
	}
	if input.Highlights != nil {
		fields["highlights"] = s.highlights(*input.Highlights)
	}
	if input.Features != nil {
		fields["features"] = s.texts(*input.Features)
	}
	if input.CTA != nil {
		fields["cta"] = models.LinkCTA{Text: s.sanitize(input.CTA.Text), URL: strings.TrimSpace(input.CTA.URL)}
	}
	if input.Theme != nil {
		fields["theme"] = models.Theme{GradientFrom: s.sanitize(input.Theme.GradientFrom), GradientTo: s.sanitize(input.Theme.GradientTo)}
	}
	if input.Status != nil {
		status, err := enums.ParsePublishStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		fields["status"] = status.String()
	}
	if input.Order != nil {
		fields["order"] = *input.Order
	}

	p, err := s.repo.Update(ctx, oid, fields)
	if err != nil {
		switch {
		case db.IsNotFound(err):
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		case db.IsDuplicateKey(err):
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a product with this slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update showcase product")
	}
	dto := fromModel(p, nil)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	oid, ok := db.ParseObjectID(id)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	deleted, err := s.repo.Delete(ctx, oid)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete showcase product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) badge(in *Badge) *models.Badge {
	if in == nil {
		return nil
	}
	return &models.Badge{Label: s.sanitize(in.Label), Color: s.sanitize(in.Color)}
}

func (s *service) highlights(in []Highlight) []models.Highlight {
	out := make([]models.Highlight, 0, len(in))
	for _, h := range in {
		out = append(out, models.Highlight{Label: s.sanitize(h.Label), Value: s.sanitize(h.Value)})
	}
	return out
}

func (s *service) texts(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = s.sanitize(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
