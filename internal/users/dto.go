package users

import (
	"time"

	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"github.com/studiosite/studiosite-backend/pkg/enums"
	"github.com/studiosite/studiosite-backend/pkg/pagination"
)

// UserDTO is the transport shape for a user record.
type UserDTO struct {
	ID            string           `json:"id"`
	UID           string           `json:"uid,omitempty"`
	Email         string           `json:"email"`
	DisplayName   string           `json:"displayName"`
	PhoneNumber   string           `json:"phoneNumber,omitempty"`
	Address       string           `json:"address,omitempty"`
	PhotoURL      string           `json:"photoURL,omitempty"`
	Provider      string           `json:"provider,omitempty"`
	Role          enums.Role       `json:"role"`
	Status        enums.UserStatus `json:"status"`
	TermsAccepted bool             `json:"termsAccepted"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

type StatusDTO struct {
	ID     string           `json:"id"`
	UID    string           `json:"uid,omitempty"`
	Email  string           `json:"email,omitempty"`
	Status enums.UserStatus `json:"status"`
}

type RoleDTO struct {
	ID    string     `json:"id"`
	UID   string     `json:"uid,omitempty"`
	Email string     `json:"email,omitempty"`
	Role  enums.Role `json:"role"`
}

// ListResult is a page of users plus the opaque cursor for the next page.
type ListResult[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// Projection is the identity-provider data mirrored into the local record.
type Projection struct {
	FirebaseUID   string
	Email         string
	DisplayName   string
	PhoneNumber   string
	Address       string
	PhotoURL      string
	Provider      string
	Role          enums.Role
	AssignRole    bool // write Role on existing records too, not only on insert
	TermsAccepted *bool
}

// ListFilter narrows a user listing.
type ListFilter struct {
	Status enums.UserStatus
	Role   enums.Role
	Limit  int
	Cursor *pagination.Cursor
}

// UpdateProfileRequest carries optional profile edits. Role and Status are
// honoured only for admin callers.
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=120"`
	Name        *string `json:"name" validate:"omitempty,max=120"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=32"`
	Phone       *string `json:"phone" validate:"omitempty,max=32"`
	Address     *string `json:"address" validate:"omitempty,max=500"`
	PhotoURL    *string `json:"photoURL" validate:"omitempty,url"`
	Image       *string `json:"image" validate:"omitempty,url"`
	Provider    *string `json:"provider" validate:"omitempty,max=64"`
	Role        *string `json:"role" validate:"omitempty,oneof=user admin moderator"`
	Status      *string `json:"status" validate:"omitempty,oneof=active inactive suspended pending"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:            u.ID.Hex(),
		UID:           u.FirebaseUID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		PhoneNumber:   u.PhoneNumber,
		Address:       u.Address,
		PhotoURL:      u.PhotoURL,
		Provider:      u.Provider,
		Role:          enums.RoleOrDefault(u.Role),
		Status:        enums.UserStatusOrDefault(u.Status),
		TermsAccepted: u.TermsAccepted,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func statusFromModel(u *models.User) StatusDTO {
	return StatusDTO{ID: u.ID.Hex(), UID: u.FirebaseUID, Email: u.Email, Status: enums.UserStatusOrDefault(u.Status)}
}

func roleFromModel(u *models.User) RoleDTO {
	return RoleDTO{ID: u.ID.Hex(), UID: u.FirebaseUID, Email: u.Email, Role: enums.RoleOrDefault(u.Role)}
}
