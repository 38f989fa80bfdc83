package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/studiosite/studiosite-backend/internal/notifications"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"github.com/studiosite/studiosite-backend/pkg/firebase"
	"github.com/studiosite/studiosite-backend/pkg/logger"
	"github.com/studiosite/studiosite-backend/pkg/security"
)

const (
	// ForgotPasswordMessage is returned for every forgot-password request.
	ForgotPasswordMessage = "If an account exists with this email, a password reset link has been sent."
	ResetPasswordMessage  = "Password has been reset successfully"

	invalidResetTokenMessage = "Invalid or expired reset token"
	defaultResetTokenTTL     = time.Hour
)

// PasswordResetService issues and redeems single-use reset tokens.
type PasswordResetService interface {
	// Forgot never reports whether the account exists; internal failures are logged.
	Forgot(ctx context.Context, req ForgotPasswordRequest)
	Reset(ctx context.Context, req ResetPasswordRequest) error
}

type resetTokenStore interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	Consume(ctx context.Context, email, tokenHash string, now time.Time) (bool, error)
	Release(ctx context.Context, tokenHash string, claimedAt time.Time) error
}

type resetAccounts interface {
	GetUserByEmail(ctx context.Context, email string) (*firebase.UserRecord, error)
	UpdatePassword(ctx context.Context, uid, password string) error
}

type PasswordResetParams struct {
	Tokens      resetTokenStore
	Accounts    resetAccounts
	Users       userProjections
	Mailer      notifications.Mailer
	Logger      *logger.Logger
	FrontendURL string
	TokenTTL    time.Duration
}

type passwordResetService struct {
	tokens      resetTokenStore
	accounts    resetAccounts
	users       userProjections
	mailer      notifications.Mailer
	logg        *logger.Logger
	frontendURL string
	ttl         time.Duration
	now         func() time.Time
}

func NewPasswordResetService(params PasswordResetParams) (PasswordResetService, error) {
	if params.Tokens == nil {
		return nil, fmt.Errorf("reset token store is required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("identity provider is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users service is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	ttl := params.TokenTTL
	if ttl <= 0 {
		ttl = defaultResetTokenTTL
	}
	return &passwordResetService{
		tokens:      params.Tokens,
		accounts:    params.Accounts,
		users:       params.Users,
		mailer:      params.Mailer,
		logg:        params.Logger,
		frontendURL: strings.TrimRight(params.FrontendURL, "/"),
		ttl:         ttl,
		now:         time.Now,
	}, nil
}

func (s *passwordResetService) Forgot(ctx context.Context, req ForgotPasswordRequest) {
	email := normalizeEmail(req.Email)
	logCtx := s.logg.WithField(ctx, "reset_email", email)

	account, err := s.accounts.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, firebase.ErrUserNotFound) {
			s.logg.Info(logCtx, "password reset requested for unknown email")
		} else {
			s.logg.Error(logCtx, "password reset account lookup failed", err)
		}
		return
	}

	raw, err := security.GenerateToken(security.ResetTokenBytes)
	if err != nil {
		s.logg.Error(logCtx, "generate reset token failed", err)
		return
	}
	now := s.now().UTC()
	record := &models.PasswordResetToken{
		Email:     email,
		TokenHash: security.HashToken(raw),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		s.logg.Error(logCtx, "persist reset token failed", err)
		return
	}

	mail := notifications.MailRequest{
		Kind:        notifications.MailPasswordReset,
		To:          email,
		DisplayName: s.displayName(ctx, account),
		ResetURL:    s.resetLink(raw, email),
		ExpiresAt:   record.ExpiresAt,
	}
	if err := s.mailer.Send(ctx, mail); err != nil {
		s.logg.Error(logCtx, "dispatch reset mail failed", err)
		return
	}
	s.logg.Info(logCtx, "password reset mail requested")
}

func (s *passwordResetService) Reset(ctx context.Context, req ResetPasswordRequest) error {
	email := normalizeEmail(req.Email)
	token := strings.TrimSpace(req.Token)
	if email == "" || token == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, invalidResetTokenMessage)
	}

	// stored dates keep millisecond precision; the release filter matches on the claim time
	claimedAt := s.now().UTC().Truncate(time.Millisecond)
	tokenHash := security.HashToken(token)
	consumed, err := s.tokens.Consume(ctx, email, tokenHash, claimedAt)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume reset token")
	}
	if !consumed {
		return pkgerrors.New(pkgerrors.CodeValidation, invalidResetTokenMessage)
	}

	account, err := s.accounts.GetUserByEmail(ctx, email)
	if err != nil {
		s.release(ctx, tokenHash, claimedAt)
		return mapProviderError(err, "load account")
	}
	if err := s.accounts.UpdatePassword(ctx, account.UID, req.NewPassword); err != nil {
		s.release(ctx, tokenHash, claimedAt)
		return mapProviderError(err, "update password")
	}

	logCtx := s.logg.WithField(ctx, "firebase_uid", account.UID)
	confirm := notifications.MailRequest{
		Kind:        notifications.MailPasswordResetConfirm,
		To:          email,
		DisplayName: s.displayName(ctx, account),
	}
	if err := s.mailer.Send(ctx, confirm); err != nil {
		s.logg.Error(logCtx, "dispatch reset confirmation failed", err)
	}
	s.logg.Info(logCtx, "password reset completed")
	return nil
}

// release returns the token to the unused state after a failed password change.
func (s *passwordResetService) release(ctx context.Context, tokenHash string, claimedAt time.Time) {
	if err := s.tokens.Release(context.WithoutCancel(ctx), tokenHash, claimedAt); err != nil {
		s.logg.Error(ctx, "release reset token failed", err)
	}
}

func (s *passwordResetService) displayName(ctx context.Context, account *firebase.UserRecord) string {
	if stored, err := s.users.FindByFirebaseUID(ctx, account.UID); err == nil && stored != nil && stored.DisplayName != "" {
		return stored.DisplayName
	}
	return account.DisplayName
}

func (s *passwordResetService) resetLink(token, email string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	return s.frontendURL + "/reset-password?" + q.Encode()
}
