package team

import (
	"time"

	"github.com/studiosite/studiosite-backend/pkg/db/models"
)

type Location struct {
	City    string `json:"city" validate:"max=120"`
	State   string `json:"state" validate:"max=120"`
	Country string `json:"country" validate:"max=120"`
}

type SocialLinks struct {
	LinkedIn string `json:"linkedin,omitempty" validate:"omitempty,url"`
	Twitter  string `json:"twitter,omitempty" validate:"omitempty,url"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	GitHub   string `json:"github,omitempty" validate:"omitempty,url"`
}

type MemberDTO struct {
	ObjectID     string      `json:"_id"`
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Role         string      `json:"role"`
	RoleValue    int         `json:"roleValue"`
	Department   string      `json:"department"`
	ProfileImage string      `json:"profileImage"`
	Bio          string      `json:"bio"`
	Location     Location    `json:"location"`
	JoinedDate   string      `json:"joinedDate"`
	Skills       []string    `json:"skills"`
	SocialLinks  SocialLinks `json:"socialLinks"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

type CreateMemberInput struct {
	ID           string      `json:"id" validate:"omitempty,max=120"`
	Name         string      `json:"name" validate:"required,max=120"`
	Role         string      `json:"role" validate:"required,max=120"`
	RoleValue    int         `json:"roleValue" validate:"gte=0"`
	Department   string      `json:"department" validate:"required,max=120"`
	ProfileImage string      `json:"profileImage" validate:"max=2048"`
	Bio          string      `json:"bio" validate:"max=5000"`
	Location     Location    `json:"location"`
	JoinedDate   string      `json:"joinedDate" validate:"max=40"`
	Skills       []string    `json:"skills" validate:"max=50"`
	SocialLinks  SocialLinks `json:"socialLinks"`
	Status       string      `json:"status" validate:"omitempty,oneof=active inactive"`
}

type UpdateMemberInput struct {
	Name         *string      `json:"name" validate:"omitempty,max=120"`
	Role         *string      `json:"role" validate:"omitempty,max=120"`
	RoleValue    *int         `json:"roleValue" validate:"omitempty,gte=0"`
	Department   *string      `json:"department" validate:"omitempty,max=120"`
	ProfileImage *string      `json:"profileImage" validate:"omitempty,max=2048"`
	Bio          *string      `json:"bio" validate:"omitempty,max=5000"`
	Location     *Location    `json:"location"`
	JoinedDate   *string      `json:"joinedDate" validate:"omitempty,max=40"`
	Skills       []string     `json:"skills" validate:"omitempty,max=50"`
	SocialLinks  *SocialLinks `json:"socialLinks"`
	Status       *string      `json:"status" validate:"omitempty,oneof=active inactive"`
}

// ListInput carries the public directory filters. Page is 1-based.
type ListInput struct {
	Department string
	Status     string
	Role       string
	Skills     []string
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

type ListResult struct {
	Items       []MemberDTO `json:"items"`
	CurrentPage int         `json:"currentPage"`
	TotalPages  int         `json:"totalPages"`
	TotalItems  int64       `json:"totalItems"`
	PerPage     int         `json:"itemsPerPage"`
}

type DepartmentDTO struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateDepartmentInput struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

func memberFromModel(m *models.TeamMember) MemberDTO {
	skills := m.Skills
	if skills == nil {
		skills = []string{}
	}
	return MemberDTO{
		ObjectID:     m.ObjectID.Hex(),
		ID:           m.ID,
		Name:         m.Name,
		Role:         m.Role,
		RoleValue:    m.RoleValue,
		Department:   m.Department,
		ProfileImage: m.ProfileImage,
		Bio:          m.Bio,
		Location:     Location(m.Location),
		JoinedDate:   m.JoinedDate,
		Skills:       skills,
		SocialLinks:  SocialLinks(m.SocialLinks),
		Status:       m.Status,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func departmentFromModel(d *models.Department) DepartmentDTO {
	return DepartmentDTO{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
