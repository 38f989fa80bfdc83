package auth

import (
	"context"
	"errors"
	"strings"
)

// Source names the channel that produced an Identity.
type Source string

const (
	SourceBearer  Source = "bearer-verified"
	SourceSession Source = "session-cookie"
	SourceBoth    Source = "both"
)

var (
	ErrInvalidToken = errors.New("invalid identity token")
	ErrTokenRevoked = errors.New("identity token revoked")
	ErrTokenExpired = errors.New("identity token expired")
)

// Identity is the authenticated principal attached to a request.
type Identity struct {
	SubjectID string
	Claims    map[string]any
	Source    Source
}

// Email returns the email claim when the provider supplied one.
func (i *Identity) Email() string {
	if i == nil {
		return ""
	}
	return claimString(i.Claims, "email")
}

// AdminClaim reports whether the provider asserted admin on this identity.
func (i *Identity) AdminClaim() bool {
	if i == nil || i.Claims == nil {
		return false
	}
	if v, ok := i.Claims["admin"].(bool); ok && v {
		return true
	}
	return strings.EqualFold(claimString(i.Claims, "role"), "admin")
}

// VerifiedToken is the result of a successful provider-side token verification.
type VerifiedToken struct {
	SubjectID string
	Claims    map[string]any
}

func (v *VerifiedToken) Email() string {
	if v == nil {
		return ""
	}
	return claimString(v.Claims, "email")
}

func (v *VerifiedToken) Name() string {
	if v == nil {
		return ""
	}
	return claimString(v.Claims, "name")
}

func (v *VerifiedToken) Picture() string {
	if v == nil {
		return ""
	}
	return claimString(v.Claims, "picture")
}

// SignInProvider returns the firebase.sign_in_provider claim, e.g. "google.com" or "password".
func (v *VerifiedToken) SignInProvider() string {
	if v == nil || v.Claims == nil {
		return ""
	}
	if fb, ok := v.Claims["firebase"].(map[string]any); ok {
		if p, ok := fb["sign_in_provider"].(string); ok {
			return p
		}
	}
	return ""
}

// IdentityVerifier validates externally issued bearer tokens, checking revocation.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, token string) (*VerifiedToken, error)
}

func claimString(claims map[string]any, key string) string {
	if claims == nil {
		return ""
	}
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
