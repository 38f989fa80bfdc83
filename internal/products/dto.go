package product

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
)

// ProductDTO is the catalog product returned to clients.
type ProductDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CreateProductInput is the validated body of POST /api/products.
type CreateProductInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"required,max=5000"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required,max=100"`
	Stock       int             `json:"stock" validate:"gte=0"`
	ImageURL    string          `json:"imageUrl" validate:"omitempty,url"`
}

// UpdateProductInput holds optional edits; nil fields are left untouched.
type UpdateProductInput struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	ImageURL    *string          `json:"imageUrl" validate:"omitempty,url"`
}

// ListProductsInput filters the public catalog.
type ListProductsInput struct {
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Search   string
}

func fromModel(p *models.Product) (*ProductDTO, error) {
	price, err := db.FromDecimal128(p.Price)
	if err != nil {
		return nil, err
	}
	return &ProductDTO{
		ID:          p.ID.Hex(),
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Category:    p.Category,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}
