package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

type toolkitSignIn struct {
	svc *identitytoolkit.Service
}

func newToolkitSignIn(ctx context.Context, apiKey string) (*toolkitSignIn, error) {
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("initialising identity toolkit: %w", err)
	}
	return &toolkitSignIn{svc: svc}, nil
}

func (t *toolkitSignIn) SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error) {
	req := &identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}
	resp, err := t.svc.Relyingparty.VerifyPassword(req).Context(ctx).Do()
	if err != nil {
		return nil, classifySignInError(err)
	}
	return &SignInResult{IDToken: resp.IdToken, UID: resp.LocalId, Email: resp.Email}, nil
}

// classifySignInError maps Identity Toolkit error messages onto sentinel errors.
func classifySignInError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("password sign-in: %w", err)
	}
	msg := strings.ToUpper(strings.TrimSpace(apiErr.Message))
	switch {
	case strings.HasPrefix(msg, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(msg, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(msg, "INVALID_PASSWORD"),
		strings.HasPrefix(msg, "INVALID_EMAIL"):
		return ErrInvalidCredentials
	case strings.HasPrefix(msg, "USER_DISABLED"):
		return ErrUserDisabled
	case strings.HasPrefix(msg, "TOO_MANY_ATTEMPTS_TRY_LATER"):
		return ErrTooManyAttempts
	default:
		return fmt.Errorf("password sign-in: %w", err)
	}
}
