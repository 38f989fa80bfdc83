package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"github.com/studiosite/studiosite-backend/pkg/enums"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"github.com/studiosite/studiosite-backend/pkg/pagination"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const defaultCurrency = "USD"

type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id string) (*ServiceDTO, error)
	Create(ctx context.Context, createdBy string, input CreateInput) (*ServiceDTO, error)
	Update(ctx context.Context, id string, input UpdateInput) (*ServiceDTO, error)
	Delete(ctx context.Context, id string) error
}

type repository interface {
	Create(ctx context.Context, s *models.Service) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Service, error)
	List(ctx context.Context, f listFilter) ([]models.Service, int64, error)
	Categories(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id bson.ObjectID, fields bson.M) (*models.Service, error)
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
}

type ServiceParams struct {
	Repo      repository
	Sanitizer func(string) string
}

type service struct {
	repo     repository
	sanitize func(string) string
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("services repository required")
	}
	sanitize := params.Sanitizer
	if sanitize == nil {
		sanitize = strings.TrimSpace
	}
	return &service{repo: params.Repo, sanitize: sanitize, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	f := listFilter{
		Category: strings.TrimSpace(input.Category),
		Limit:    pagination.NormalizeLimit(input.Limit),
	}
	if input.Status != "" {
		status, err := enums.ParsePublishStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		f.Status = status.String()
	}
	for _, tag := range input.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			f.Tags = append(f.Tags, tag)
		}
	}
	var err error
	if f.MinPrice, err = priceBound(input.MinPrice); err != nil {
		return nil, err
	}
	if f.MaxPrice, err = priceBound(input.MaxPrice); err != nil {
		return nil, err
	}
	if f.Cursor, err = pagination.ParseCursor(input.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list services")
	}
	next := ""
	if len(rows) > f.Limit {
		rows = rows[:f.Limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	items := make([]ServiceDTO, 0, len(rows))
	for i := range rows {
		dto, err := toDTO(&rows[i])
		if err != nil {
			return nil, err
		}
		items = append(items, *dto)
	}
	return &ListResult{Items: items, NextCursor: next, TotalCount: total}, nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list service categories")
	}
	sort.Strings(cats)
	return cats, nil
}

func (s *service) Get(ctx context.Context, id string) (*ServiceDTO, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		return nil, notFoundOr(err, "load service")
	}
	return toDTO(m)
}

func (s *service) Create(ctx context.Context, createdBy string, input CreateInput) (*ServiceDTO, error) {
	price, err := basePrice(input.Pricing.BasePrice)
	if err != nil {
		return nil, err
	}
	status := enums.PublishStatusActive
	if input.Status != "" {
		if status, err = enums.ParsePublishStatus(input.Status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
	}
	var reqs models.ServiceRequirements
	if input.Requirements != nil {
		reqs = models.ServiceRequirements(*input.Requirements)
	}

	now := s.now().UTC()
	m := &models.Service{
		Title:            s.sanitize(input.Title),
		ShortDescription: s.sanitize(input.ShortDescription),
		Category:         s.sanitize(input.Category),
		Tags:             s.cleanList(input.Tags),
		Images:           imagesToModel(input.Images),
		Links:            linksToModel(input.Links),
		Pricing:          models.ServicePricing{BasePrice: price, Currency: currency(input.Pricing.Currency)},
		DeliveryTimeDays: input.DeliveryTimeDays,
		Features:         s.cleanList(input.Features),
		Technologies:     s.cleanList(input.Technologies),
		Requirements:     reqs,
		Status:           status.String(),
		CreatedBy:        createdBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if m.Title == "" || m.Category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Required fields missing")
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create service")
	}
	return toDTO(m)
}

func (s *service) Update(ctx context.Context, id string, input UpdateInput) (*ServiceDTO, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	fields := bson.M{}
	if input.Title != nil {
		fields["title"] = s.sanitize(*input.Title)
	}
	if input.ShortDescription != nil {
		fields["shortDescription"] = s.sanitize(*input.ShortDescription)
	}
	if input.Category != nil {
		fields["category"] = s.sanitize(*input.Category)
	}
	if input.Tags != nil {
		fields["tags"] = s.cleanList(input.Tags)
	}
	if input.Images != nil {
		fields["images"] = imagesToModel(*input.Images)
	}
	if input.Links != nil {
		fields["links"] = linksToModel(*input.Links)
	}
	if input.Pricing != nil {
		price, err := basePrice(input.Pricing.BasePrice)
		if err != nil {
			return nil, err
		}
		fields["pricing"] = models.ServicePricing{BasePrice: price, Currency: currency(input.Pricing.Currency)}
	}
	if input.DeliveryTimeDays != nil {
		fields["deliveryTimeDays"] = *input.DeliveryTimeDays
	}
	if input.Features != nil {
		fields["features"] = s.cleanList(input.Features)
	}
	if input.Technologies != nil {
		fields["technologies"] = s.cleanList(input.Technologies)
	}
	if input.Requirements != nil {
		fields["requirements"] = models.ServiceRequirements(*input.Requirements)
	}
	if input.Status != nil {
		status, err := enums.ParsePublishStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		fields["status"] = status.String()
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Request body is required and must contain update data")
	}
	fields["updatedAt"] = s.now().UTC()

	m, err := s.repo.Update(ctx, oid, fields)
	if err != nil {
		return nil, notFoundOr(err, "update service")
	}
	return toDTO(m)
}

func (s *service) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	deleted, err := s.repo.Delete(ctx, oid)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete service")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Service not found")
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

func parseID(id string) (bson.ObjectID, error) {
	oid, ok := db.ParseObjectID(id)
	if !ok {
		return bson.NilObjectID, pkgerrors.New(pkgerrors.CodeValidation, "Invalid service ID")
	}
	return oid, nil
}

func notFoundOr(err error, action string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Service not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func basePrice(d decimal.Decimal) (bson.Decimal128, error) {
	if !d.IsPositive() {
		return bson.Decimal128{}, pkgerrors.New(pkgerrors.CodeValidation, "pricing.basePrice must be positive").
			WithDetails(map[string]string{"pricing.basePrice": "must be greater than 0"})
	}
	out, err := db.ToDecimal128(d)
	if err != nil {
		return bson.Decimal128{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid base price")
	}
	return out, nil
}

func priceBound(d *decimal.Decimal) (*bson.Decimal128, error) {
	if d == nil {
		return nil, nil
	}
	out, err := db.ToDecimal128(*d)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price filter")
	}
	return &out, nil
}

func currency(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return defaultCurrency
	}
	return value
}

func imagesToModel(in Images) models.ServiceImages {
	gallery := make([]string, 0, len(in.Gallery))
	for _, g := range in.Gallery {
		if g = strings.TrimSpace(g); g != "" {
			gallery = append(gallery, g)
		}
	}
	return models.ServiceImages{Thumbnail: strings.TrimSpace(in.Thumbnail), Gallery: gallery}
}

func linksToModel(in Links) models.ServiceLinks {
	return models.ServiceLinks{
		LiveDemo:    strings.TrimSpace(in.LiveDemo),
		YoutubeDemo: strings.TrimSpace(in.YoutubeDemo),
		GithubRepo:  strings.TrimSpace(in.GithubRepo),
	}
}

func toDTO(m *models.Service) (*ServiceDTO, error) {
	dto, err := fromModel(m)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode service")
	}
	return dto, nil
}
