package showcase

import (
	"time"

	"github.com/studiosite/studiosite-backend/pkg/db/models"
)

type Image struct {
	URL string `json:"url" validate:"omitempty,url"`
	Alt string `json:"alt" validate:"max=200"`
}

type Badge struct {
	Label string `json:"label" validate:"max=60"`
	Color string `json:"color" validate:"max=40"`
}

type Highlight struct {
	Label string `json:"label" validate:"max=100"`
	Value string `json:"value" validate:"max=100"`
}

type LinkCTA struct {
	Text string `json:"text" validate:"max=80"`
	URL  string `json:"url" validate:"omitempty,url"`
}

type Theme struct {
	GradientFrom string `json:"gradientFrom" validate:"max=40"`
	GradientTo   string `json:"gradientTo" validate:"max=40"`
}

// Poster is the user summary joined onto listed showcase products.
type Poster struct {
	ID          string `json:"id"`
	UID         string `json:"uid,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
}

type ProductDTO struct {
	ID          string      `json:"id"`
	Slug        string      `json:"slug"`
	Title       string      `json:"title"`
	Tagline     string      `json:"tagline,omitempty"`
	Description string      `json:"description,omitempty"`
	CoverImage  Image       `json:"coverImage"`
	Badge       *Badge      `json:"badge,omitempty"`
	LiveLink    string      `json:"liveLink,omitempty"`
	RepoLink    string      `json:"repoLink,omitempty"`
	Highlights  []Highlight `json:"highlights"`
	Features    []string    `json:"features"`
	CTA         LinkCTA     `json:"cta"`
	Theme       Theme       `json:"theme"`
	Status      string      `json:"status"`
	Order       int         `json:"order"`
	PostedByID  string      `json:"postedById,omitempty"`
	PostedByUID string      `json:"postedByUid,omitempty"`
	PostedBy    *Poster     `json:"postedBy,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// CreateInput is the body of POST /api/products-module/{userId}.
type CreateInput struct {
	Slug        string      `json:"slug" validate:"omitempty,max=120"`
	Title       string      `json:"title" validate:"required,max=200"`
	Tagline     string      `json:"tagline" validate:"max=300"`
	Description string      `json:"description" validate:"max=5000"`
	CoverImage  Image       `json:"coverImage"`
	Badge       *Badge      `json:"badge"`
	LiveLink    string      `json:"liveLink" validate:"omitempty,url"`
	RepoLink    string      `json:"repoLink" validate:"omitempty,url"`
	Highlights  []Highlight `json:"highlights" validate:"max=20,dive"`
	Features    []string    `json:"features" validate:"max=50"`
	CTA         LinkCTA     `json:"cta"`
	Theme       Theme       `json:"theme"`
	Status      string      `json:"status" validate:"omitempty,oneof=active inactive draft"`
	Order       int         `json:"order"`
}

// UpdateInput holds optional edits. Ownership fields cannot be changed.
type UpdateInput struct {
	Slug        *string      `json:"slug" validate:"omitempty,max=120"`
	Title       *string      `json:"title" validate:"omitempty,max=200"`
	Tagline     *string      `json:"tagline" validate:"omitempty,max=300"`
	Description *string      `json:"description" validate:"omitempty,max=5000"`
	CoverImage  *Image       `json:"coverImage"`
	Badge       *Badge       `json:"badge"`
	LiveLink    *string      `json:"liveLink" validate:"omitempty,url"`
	RepoLink    *string      `json:"repoLink" validate:"omitempty,url"`
	Highlights  *[]Highlight `json:"highlights"`
	Features    *[]string    `json:"features"`
	CTA         *LinkCTA     `json:"cta"`
	Theme       *Theme       `json:"theme"`
	Status      *string      `json:"status" validate:"omitempty,oneof=active inactive draft"`
	Order       *int         `json:"order"`
}

// ListInput narrows the listing. Status is empty for all statuses.
type ListInput struct {
	Status string
}

// listedProduct is the aggregation row: a product plus the joined poster.
type listedProduct struct {
	models.ShowcaseProduct `bson:",inline"`
	Poster                 *models.User `bson:"poster,omitempty"`
}

func fromModel(p *models.ShowcaseProduct, poster *models.User) ProductDTO {
	dto := ProductDTO{
		ID:          p.ID.Hex(),
		Slug:        p.Slug,
		Title:       p.Title,
		Tagline:     p.Tagline,
		Description: p.Description,
		CoverImage:  Image{URL: p.CoverImage.URL, Alt: p.CoverImage.Alt},
		LiveLink:    p.LiveLink,
		RepoLink:    p.RepoLink,
		Highlights:  make([]Highlight, 0, len(p.Highlights)),
		Features:    p.Features,
		CTA:         LinkCTA{Text: p.CTA.Text, URL: p.CTA.URL},
		Theme:       Theme{GradientFrom: p.Theme.GradientFrom, GradientTo: p.Theme.GradientTo},
		Status:      p.Status,
		Order:       p.Order,
		PostedByUID: p.PostedByUID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if dto.Features == nil {
		dto.Features = []string{}
	}
	if !p.PostedBy.IsZero() {
		dto.PostedByID = p.PostedBy.Hex()
	}
	if p.Badge != nil {
		dto.Badge = &Badge{Label: p.Badge.Label, Color: p.Badge.Color}
	}
	for _, h := range p.Highlights {
		dto.Highlights = append(dto.Highlights, Highlight{Label: h.Label, Value: h.Value})
	}
	if poster != nil {
		dto.PostedBy = &Poster{
			ID:          poster.ID.Hex(),
			UID:         poster.FirebaseUID,
			DisplayName: poster.DisplayName,
			Email:       poster.Email,
			PhotoURL:    poster.PhotoURL,
		}
	}
	return dto
}
