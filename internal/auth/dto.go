package auth

import "time"

// RegisterRequest is the body of POST /api/register-cookie. Aliased fields
// mirror what existing frontends send.
type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=6"`
	Name          string `json:"name" validate:"omitempty,max=120"`
	DisplayName   string `json:"displayName" validate:"omitempty,max=120"`
	Phone         string `json:"phone" validate:"omitempty,max=32"`
	PhoneNumber   string `json:"phoneNumber" validate:"omitempty,max=32"`
	Image         string `json:"image" validate:"omitempty,url"`
	PhotoURL      string `json:"photoURL" validate:"omitempty,url"`
	Address       string `json:"address" validate:"omitempty,max=500"`
	TermsAccepted bool   `json:"termsAccepted"`
}

func (r RegisterRequest) displayName() string {
	return firstNonEmpty(r.DisplayName, r.Name)
}

func (r RegisterRequest) phoneNumber() string {
	return firstNonEmpty(r.PhoneNumber, r.Phone)
}

func (r RegisterRequest) photoURL() string {
	return firstNonEmpty(r.PhotoURL, r.Image)
}

// LoginRequest captures the credentials sent to POST /api/login-cookie.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProviderTokenRequest carries a provider-issued ID token (Google sign-in).
type ProviderTokenRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// CreateUserRequest is the admin provisioning body for POST /api/create-user.
type CreateUserRequest struct {
	UID          string         `json:"uid" validate:"omitempty,max=128"`
	Email        string         `json:"email" validate:"omitempty,email"`
	Password     string         `json:"password" validate:"omitempty,min=6"`
	DisplayName  string         `json:"displayName" validate:"omitempty,max=120"`
	PhoneNumber  string         `json:"phoneNumber" validate:"omitempty,max=32"`
	PhotoURL     string         `json:"photoURL" validate:"omitempty,url"`
	Disabled     bool           `json:"disabled"`
	CustomClaims map[string]any `json:"customClaims"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// AccountResult is returned by the cookie-issuing flows. SessionToken is set
// on the response cookie by the controller and never serialized.
type AccountResult struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName,omitempty"`
	PhotoURL     string `json:"photoURL,omitempty"`
	Role         string `json:"role,omitempty"`
	IsNewUser    *bool  `json:"isNewUser,omitempty"`
	SessionToken string `json:"-"`
}

// Profile is the caller view returned by /api/me and /api/profile.
type Profile struct {
	UID         string     `json:"uid"`
	Email       string     `json:"email,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
	PhotoURL    string     `json:"photoURL,omitempty"`
	Role        string     `json:"role,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
}

type CreatedUser struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
