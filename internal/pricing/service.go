package pricing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"github.com/studiosite/studiosite-backend/pkg/enums"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"github.com/studiosite/studiosite-backend/pkg/slug"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var sortableFields = map[string]bool{"order": true, "name": true, "createdAt": true, "updatedAt": true}

// Service manages pricing categories and their embedded plans.
type Service interface {
	ListCategories(ctx context.Context, input ListInput) ([]CategoryDTO, error)
	GetCategory(ctx context.Context, id string) (*CategoryDTO, error)
	CreateCategory(ctx context.Context, createdBy string, input CreateCategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id string, input UpdateCategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id string) error
	AddPlan(ctx context.Context, categoryID string, input PlanInput) (*PlanDTO, error)
	UpdatePlan(ctx context.Context, categoryID, planID string, input PlanInput) (*PlanDTO, error)
	RemovePlan(ctx context.Context, categoryID, planID string) error
}

type store interface {
	Insert(ctx context.Context, doc *models.PricingCategory) error
	List(ctx context.Context, filter bson.M, sort bson.D) ([]models.PricingCategory, error)
	FindByKey(ctx context.Context, key string) (*models.PricingCategory, error)
	Update(ctx context.Context, key string, fields bson.M) (*models.PricingCategory, error)
	Delete(ctx context.Context, key string) error
	PushItem(ctx context.Context, key, itemID string, item any) (*models.PricingCategory, error)
	ReplaceItem(ctx context.Context, key, itemID string, item any) (*models.PricingCategory, error)
	PullItem(ctx context.Context, key, itemID string) (*models.PricingCategory, error)
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
		return nil, fmt.Errorf("pricing store required")
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pricing categories")
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		dto, err := categoryFromModel(&rows[i])
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode pricing category")
		}
		out = append(out, *dto)
	}
	return out, nil
}

func (s *service) GetCategory(ctx context.Context, id string) (*CategoryDTO, error) {
	c, err := s.store.FindByKey(ctx, id)
	if err != nil {
		return nil, categoryError(err, "load pricing category")
	}
	return toCategoryDTO(c)
}

func (s *service) CreateCategory(ctx context.Context, createdBy string, input CreateCategoryInput) (*CategoryDTO, error) {
	name := s.sanitize(input.Name)
	id := slug.Make(firstNonEmpty(input.ID, name))
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required").
			WithDetails(map[string]string{"name": "is required"})
	}

	plans := make([]models.PricingPlan, 0, len(input.Plans))
	seen := map[string]bool{}
	for _, in := range input.Plans {
		plan, err := s.buildPlan(in, "")
		if err != nil {
			return nil, err
		}
		if seen[plan.ID] {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "Plan with ID %q already exists in this category", plan.ID)
		}
		seen[plan.ID] = true
		plans = append(plans, plan)
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	now := s.now().UTC()
	c := &models.PricingCategory{
		ObjectID:  bson.NewObjectID(),
		ID:        id,
		Name:      name,
		Order:     input.Order,
		IsActive:  isActive,
		Plans:     plans,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, c); err != nil {
		if db.IsDuplicateKey(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, fmt.Sprintf("Category with ID %q already exists", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create pricing category")
	}
	return toCategoryDTO(c)
}

func (s *service) UpdateCategory(ctx context.Context, id string, input UpdateCategoryInput) (*CategoryDTO, error) {
	fields := bson.M{}
	if input.Name != nil {
		fields["name"] = s.sanitize(*input.Name)
	}
	if input.Order != nil {
		fields["order"] = *input.Order
	}
	if input.IsActive != nil {
		fields["isActive"] = *input.IsActive
	}
	c, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return nil, categoryError(err, "update pricing category")
	}
	return toCategoryDTO(c)
}

func (s *service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return categoryError(err, "delete pricing category")
	}
	return nil
}

func (s *service) AddPlan(ctx context.Context, categoryID string, input PlanInput) (*PlanDTO, error) {
	plan, err := s.buildPlan(input, "")
	if err != nil {
		return nil, err
	}
	if _, err := s.store.PushItem(ctx, categoryID, plan.ID, plan); err != nil {
		if !db.IsNotFound(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add plan")
		}
		// No match means either the category is missing or the plan id is taken.
		if _, lookupErr := s.store.FindByKey(ctx, categoryID); lookupErr != nil {
			return nil, categoryError(lookupErr, "load pricing category")
		}
		return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "Plan with ID %q already exists in this category", plan.ID)
	}
	return toPlanDTO(plan)
}

func (s *service) UpdatePlan(ctx context.Context, categoryID, planID string, input PlanInput) (*PlanDTO, error) {
	plan, err := s.buildPlan(input, planID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.ReplaceItem(ctx, categoryID, planID, plan); err != nil {
		return nil, s.planError(ctx, categoryID, err, "update plan")
	}
	return toPlanDTO(plan)
}

func (s *service) RemovePlan(ctx context.Context, categoryID, planID string) error {
	if _, err := s.store.PullItem(ctx, categoryID, planID); err != nil {
		return s.planError(ctx, categoryID, err, "remove plan")
	}
	return nil
}

// buildPlan validates input and derives the plan id. A non-empty fixedID wins.
func (s *service) buildPlan(in PlanInput, fixedID string) (models.PricingPlan, error) {
	name := s.sanitize(in.Name)
	id := fixedID
	if id == "" {
		id = slug.Make(firstNonEmpty(in.ID, name))
	}
	if id == "" {
		return models.PricingPlan{}, pkgerrors.New(pkgerrors.CodeValidation, "plan name is required")
	}
	planType, err := enums.ParsePlanType(in.Type)
	if err != nil {
		return models.PricingPlan{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid plan type")
	}
	cycle, err := enums.ParseBillingCycle(in.BillingCycle)
	if err != nil {
		return models.PricingPlan{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid billing cycle")
	}
	usd, err := optionalDecimal128(in.Price.USD)
	if err != nil {
		return models.PricingPlan{}, err
	}
	bdt, err := optionalDecimal128(in.Price.BDT)
	if err != nil {
		return models.PricingPlan{}, err
	}
	if planType == enums.PlanTypeFixed && usd == nil && bdt == nil {
		return models.PricingPlan{}, pkgerrors.New(pkgerrors.CodeValidation, "fixed plans need a price").
			WithDetails(map[string]string{"price": "USD or BDT is required for fixed plans"})
	}

	features := make([]string, 0, len(in.Features))
	for _, f := range in.Features {
		if f = s.sanitize(f); f != "" {
			features = append(features, f)
		}
	}
	return models.PricingPlan{
		ID:           id,
		Name:         name,
		Description:  s.sanitize(in.Description),
		Type:         string(planType),
		Popular:      in.Popular,
		Price:        models.PlanPrice{USD: usd, BDT: bdt},
		BillingCycle: string(cycle),
		Features:     features,
		CTA:          models.ActionCTA{Text: s.sanitize(in.CTA.Text), Action: strings.TrimSpace(in.CTA.Action)},
		Order:        in.Order,
	}, nil
}

func (s *service) planError(ctx context.Context, categoryID string, err error, action string) error {
	if !db.IsNotFound(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
	if _, lookupErr := s.store.FindByKey(ctx, categoryID); lookupErr != nil {
		return categoryError(lookupErr, "load pricing category")
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "Plan not found in this category")
}

func categoryError(err error, action string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Pricing category not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func optionalDecimal128(v *decimal.Decimal) (*bson.Decimal128, error) {
	if v == nil {
		return nil, nil
	}
	if v.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	out, err := db.ToDecimal128(*v)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	return &out, nil
}

func toCategoryDTO(c *models.PricingCategory) (*CategoryDTO, error) {
	dto, err := categoryFromModel(c)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode pricing category")
	}
	return dto, nil
}

func toPlanDTO(p models.PricingPlan) (*PlanDTO, error) {
	dto, err := planFromModel(p)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode plan")
	}
	return &dto, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
