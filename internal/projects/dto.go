package projects

import (
	"time"

	"github.com/studiosite/studiosite-backend/pkg/db/models"
)

type ProjectDTO struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Thumbnail   string   `json:"thumbnail"`
	PreviewURL  string   `json:"previewUrl,omitempty"`
	IsFeatured  bool     `json:"isFeatured"`
	Order       int      `json:"order"`
}

type CategoryDTO struct {
	ObjectID    string       `json:"_id"`
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Order       int          `json:"order"`
	IsActive    bool         `json:"isActive"`
	Projects    []ProjectDTO `json:"projects"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type ProjectInput struct {
	ID          string   `json:"id" validate:"omitempty,max=120"`
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=5000"`
	Tags        []string `json:"tags" validate:"max=30"`
	Thumbnail   string   `json:"thumbnail" validate:"required,max=2048"`
	PreviewURL  string   `json:"previewUrl" validate:"omitempty,url,max=2048"`
	IsFeatured  bool     `json:"isFeatured"`
	Order       int      `json:"order"`
}

type CreateCategoryInput struct {
	ID          string         `json:"id" validate:"omitempty,max=120"`
	Name        string         `json:"name" validate:"required,max=120"`
	Description string         `json:"description" validate:"max=2000"`
	Order       int            `json:"order"`
	IsActive    *bool          `json:"isActive"`
	Projects    []ProjectInput `json:"projects" validate:"max=100,dive"`
}

type UpdateCategoryInput struct {
	Name        *string `json:"name" validate:"omitempty,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Order       *int    `json:"order"`
	IsActive    *bool   `json:"isActive"`
}

type ListInput struct {
	IsActive  *bool
	SortBy    string
	SortOrder string
}

func projectFromModel(p models.Project) ProjectDTO {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProjectDTO{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Tags:        tags,
		Thumbnail:   p.Thumbnail,
		PreviewURL:  p.PreviewURL,
		IsFeatured:  p.IsFeatured,
		Order:       p.Order,
	}
}

func categoryFromModel(c *models.ProjectCategory) CategoryDTO {
	out := CategoryDTO{
		ObjectID:    c.ObjectID.Hex(),
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Order:       c.Order,
		IsActive:    c.IsActive,
		Projects:    make([]ProjectDTO, 0, len(c.Projects)),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	for _, p := range c.Projects {
		out.Projects = append(out.Projects, projectFromModel(p))
	}
	return out
}
