package pricing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Price holds per-currency amounts; nil means "contact us".
type Price struct {
	USD *decimal.Decimal `json:"USD"`
	BDT *decimal.Decimal `json:"BDT"`
}

type CTA struct {
	Text   string `json:"text" validate:"max=80"`
	Action string `json:"action" validate:"max=200"`
}

type PlanDTO struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Type         string   `json:"type"`
	Popular      bool     `json:"popular"`
	Price        Price    `json:"price"`
	BillingCycle string   `json:"billingCycle"`
	Features     []string `json:"features"`
	CTA          CTA      `json:"cta"`
	Order        int      `json:"order"`
}

type CategoryDTO struct {
	ObjectID  string    `json:"_id"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	IsActive  bool      `json:"isActive"`
	Plans     []PlanDTO `json:"plans"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PlanInput is a full plan definition; updates replace the stored plan.
type PlanInput struct {
	ID           string   `json:"id" validate:"omitempty,max=120"`
	Name         string   `json:"name" validate:"required,max=120"`
	Description  string   `json:"description" validate:"max=2000"`
	Type         string   `json:"type" validate:"required,oneof=fixed custom"`
	Popular      bool     `json:"popular"`
	Price        Price    `json:"price"`
	BillingCycle string   `json:"billingCycle" validate:"required,oneof=monthly yearly custom"`
	Features     []string `json:"features" validate:"max=50"`
	CTA          CTA      `json:"cta"`
	Order        int      `json:"order"`
}

type CreateCategoryInput struct {
	ID       string      `json:"id" validate:"omitempty,max=120"`
	Name     string      `json:"name" validate:"required,max=120"`
	Order    int         `json:"order"`
	IsActive *bool       `json:"isActive"`
	Plans    []PlanInput `json:"plans" validate:"max=50,dive"`
}

type UpdateCategoryInput struct {
	Name     *string `json:"name" validate:"omitempty,max=120"`
	Order    *int    `json:"order"`
	IsActive *bool   `json:"isActive"`
}

// ListInput mirrors the public query string: isActive, sortBy, sortOrder.
type ListInput struct {
	IsActive  *bool
	SortBy    string
	SortOrder string
}

func planFromModel(p models.PricingPlan) (PlanDTO, error) {
	usd, err := optionalDecimal(p.Price.USD)
	if err != nil {
		return PlanDTO{}, err
	}
	bdt, err := optionalDecimal(p.Price.BDT)
	if err != nil {
		return PlanDTO{}, err
	}
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return PlanDTO{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Type:         p.Type,
		Popular:      p.Popular,
		Price:        Price{USD: usd, BDT: bdt},
		BillingCycle: p.BillingCycle,
		Features:     features,
		CTA:          CTA{Text: p.CTA.Text, Action: p.CTA.Action},
		Order:        p.Order,
	}, nil
}

func categoryFromModel(c *models.PricingCategory) (*CategoryDTO, error) {
	dto := &CategoryDTO{
		ObjectID:  c.ObjectID.Hex(),
		ID:        c.ID,
		Name:      c.Name,
		Order:     c.Order,
		IsActive:  c.IsActive,
		Plans:     make([]PlanDTO, 0, len(c.Plans)),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for _, p := range c.Plans {
		plan, err := planFromModel(p)
		if err != nil {
			return nil, err
		}
		dto.Plans = append(dto.Plans, plan)
	}
	return dto, nil
}

func optionalDecimal(v *bson.Decimal128) (*decimal.Decimal, error) {
	if v == nil {
		return nil, nil
	}
	d, err := db.FromDecimal128(*v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
