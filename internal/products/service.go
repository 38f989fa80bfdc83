package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Service exposes catalog product operations.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error)
	GetProduct(ctx context.Context, id string) (*ProductDTO, error)
	CreateProduct(ctx context.Context, ownerID string, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id string) error
	// OwnerOf returns the stored createdBy of a product.
	OwnerOf(ctx context.Context, id string) (string, error)
}

type listFilter struct {
	Category string
	MinPrice *bson.Decimal128
	MaxPrice *bson.Decimal128
	Search   string
}

type repository interface {
	Create(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Product, error)
	List(ctx context.Context, f listFilter) ([]models.Product, error)
	Update(ctx context.Context, id bson.ObjectID, fields bson.M) (*models.Product, error)
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
		return nil, fmt.Errorf("product repository required")
	}
	sanitize := params.Sanitizer
	if sanitize == nil {
		sanitize = strings.TrimSpace
	}
	return &service{repo: params.Repo, sanitize: sanitize, now: time.Now}, nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error) {
	filter := listFilter{
		Category: strings.TrimSpace(input.Category),
		Search:   strings.TrimSpace(input.Search),
	}
	if input.MinPrice != nil {
		v, err := db.ToDecimal128(*input.MinPrice)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid minPrice")
		}
		filter.MinPrice = &v
	}
	if input.MaxPrice != nil {
		v, err := db.ToDecimal128(*input.MaxPrice)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid maxPrice")
		}
		filter.MaxPrice = &v
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dto, err := fromModel(&rows[i])
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode product")
		}
		out = append(out, *dto)
	}
	return out, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*ProductDTO, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(p)
}

func (s *service) CreateProduct(ctx context.Context, ownerID string, input CreateProductInput) (*ProductDTO, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero").
			WithDetails(map[string]string{"price": "must be greater than zero"})
	}
	price, err := db.ToDecimal128(input.Price)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}

	now := s.now().UTC()
	p := &models.Product{
		Name:        s.sanitize(input.Name),
		Description: s.sanitize(input.Description),
		Price:       price,
		Category:    s.sanitize(input.Category),
		Stock:       input.Stock,
		ImageURL:    strings.TrimSpace(input.ImageURL),
		CreatedBy:   ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return toDTO(p)
}

func (s *service) UpdateProduct(ctx context.Context, id string, input UpdateProductInput) (*ProductDTO, error) {
	oid, ok := db.ParseObjectID(id)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	fields := bson.M{"updatedAt": s.now().UTC()}
	if input.Name != nil {
		fields["name"] = s.sanitize(*input.Name)
	}
	if input.Description != nil {
		fields["description"] = s.sanitize(*input.Description)
	}
	if input.Category != nil {
		fields["category"] = s.sanitize(*input.Category)
	}
	if input.Stock != nil {
		fields["stock"] = *input.Stock
	}
	if input.ImageURL != nil {
		fields["imageUrl"] = strings.TrimSpace(*input.ImageURL)
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
		}
		price, err := db.ToDecimal128(*input.Price)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
		}
		fields["price"] = price
	}

	p, err := s.repo.Update(ctx, oid, fields)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return toDTO(p)
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	oid, ok := db.ParseObjectID(id)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	deleted, err := s.repo.Delete(ctx, oid)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) OwnerOf(ctx context.Context, id string) (string, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	return p.CreatedBy, nil
}

func (s *service) load(ctx context.Context, id string) (*models.Product, error) {
	oid, ok := db.ParseObjectID(id)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	p, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return p, nil
}

func toDTO(p *models.Product) (*ProductDTO, error) {
	dto, err := fromModel(p)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode product")
	}
	return dto, nil
}
