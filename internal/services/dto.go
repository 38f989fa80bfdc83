package services

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"github.com/studiosite/studiosite-backend/pkg/enums"
	"github.com/studiosite/studiosite-backend/pkg/pagination"
)

type Images struct {
	Thumbnail string   `json:"thumbnail" validate:"omitempty,max=2048"`
	Gallery   []string `json:"gallery" validate:"max=20,dive,max=2048"`
}

type Links struct {
	LiveDemo    string `json:"liveDemo,omitempty" validate:"omitempty,url"`
	YoutubeDemo string `json:"youtubeDemo,omitempty" validate:"omitempty,url"`
	GithubRepo  string `json:"githubRepo,omitempty" validate:"omitempty,url"`
}

type Pricing struct {
	BasePrice decimal.Decimal `json:"basePrice"`
	Currency  string          `json:"currency" validate:"omitempty,len=3"`
}

type Requirements struct {
	BusinessName      bool `json:"businessName"`
	BusinessType      bool `json:"businessType"`
	PagesCount        bool `json:"pagesCount"`
	ContentProvided   bool `json:"contentProvided"`
	ReferenceWebsites bool `json:"referenceWebsites"`
	DomainHosting     bool `json:"domainHosting"`
}

type ServiceDTO struct {
	ID               string              `json:"_id"`
	Title            string              `json:"title"`
	ShortDescription string              `json:"shortDescription"`
	Category         string              `json:"category"`
	Tags             []string            `json:"tags"`
	Images           Images              `json:"images"`
	Links            Links               `json:"links"`
	Pricing          Pricing             `json:"pricing"`
	DeliveryTimeDays int                 `json:"deliveryTimeDays"`
	Features         []string            `json:"features"`
	Technologies     []string            `json:"technologies"`
	Requirements     Requirements        `json:"requirements"`
	Status           enums.PublishStatus `json:"status"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

type CreateInput struct {
	Title            string        `json:"title" validate:"required,max=200"`
	ShortDescription string        `json:"shortDescription" validate:"required,max=1000"`
	Category         string        `json:"category" validate:"required,max=120"`
	Tags             []string      `json:"tags" validate:"max=30"`
	Images           Images        `json:"images"`
	Links            Links         `json:"links"`
	Pricing          Pricing       `json:"pricing"`
	DeliveryTimeDays int           `json:"deliveryTimeDays" validate:"required,gt=0"`
	Features         []string      `json:"features" validate:"max=50"`
	Technologies     []string      `json:"technologies" validate:"max=50"`
	Requirements     *Requirements `json:"requirements"`
	Status           string        `json:"status" validate:"omitempty,oneof=active inactive draft"`
}

// UpdateInput patches a service; nil fields are left unchanged.
type UpdateInput struct {
	Title            *string       `json:"title" validate:"omitempty,max=200"`
	ShortDescription *string       `json:"shortDescription" validate:"omitempty,max=1000"`
	Category         *string       `json:"category" validate:"omitempty,max=120"`
	Tags             []string      `json:"tags" validate:"omitempty,max=30"`
	Images           *Images       `json:"images"`
	Links            *Links        `json:"links"`
	Pricing          *Pricing      `json:"pricing"`
	DeliveryTimeDays *int          `json:"deliveryTimeDays" validate:"omitempty,gt=0"`
	Features         []string      `json:"features" validate:"omitempty,max=50"`
	Technologies     []string      `json:"technologies" validate:"omitempty,max=50"`
	Requirements     *Requirements `json:"requirements"`
	Status           *string       `json:"status" validate:"omitempty,oneof=active inactive draft"`
}

type ListInput struct {
	Category string
	Status   string
	Tags     []string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	pagination.Params
}

type ListResult struct {
	Items      []ServiceDTO `json:"items"`
	NextCursor string       `json:"nextCursor,omitempty"`
	TotalCount int64        `json:"totalCount"`
}

func fromModel(m *models.Service) (*ServiceDTO, error) {
	price, err := db.FromDecimal128(m.Pricing.BasePrice)
	if err != nil {
		return nil, err
	}
	return &ServiceDTO{
		ID:               m.ID.Hex(),
		Title:            m.Title,
		ShortDescription: m.ShortDescription,
		Category:         m.Category,
		Tags:             nonNil(m.Tags),
		Images:           Images{Thumbnail: m.Images.Thumbnail, Gallery: nonNil(m.Images.Gallery)},
		Links:            Links{LiveDemo: m.Links.LiveDemo, YoutubeDemo: m.Links.YoutubeDemo, GithubRepo: m.Links.GithubRepo},
		Pricing:          Pricing{BasePrice: price, Currency: m.Pricing.Currency},
		DeliveryTimeDays: m.DeliveryTimeDays,
		Features:         nonNil(m.Features),
		Technologies:     nonNil(m.Technologies),
		Requirements:     Requirements(m.Requirements),
		Status:           enums.PublishStatus(m.Status),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
