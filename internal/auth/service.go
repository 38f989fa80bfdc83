package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/studiosite/studiosite-backend/internal/users"
	pkgauth "github.com/studiosite/studiosite-backend/pkg/auth"
	"github.com/studiosite/studiosite-backend/pkg/db"
	"github.com/studiosite/studiosite-backend/pkg/enums"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"github.com/studiosite/studiosite-backend/pkg/firebase"
	"github.com/studiosite/studiosite-backend/pkg/logger"
)

// Service implements the account flows behind the auth routes.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AccountResult, error)
	Login(ctx context.Context, req LoginRequest) (*AccountResult, error)
	GoogleLogin(ctx context.Context, req ProviderTokenRequest) (*AccountResult, error)
	GoogleRegister(ctx context.Context, req ProviderTokenRequest) (*AccountResult, error)
	Profile(ctx context.Context, id *pkgauth.Identity) (*Profile, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*CreatedUser, error)
}

type identityProvider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*pkgauth.VerifiedToken, error)
	CreateUser(ctx context.Context, in firebase.NewUser) (*firebase.UserRecord, error)
	GetUser(ctx context.Context, uid string) (*firebase.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*firebase.UserRecord, error)
	UpdatePassword(ctx context.Context, uid, password string) error
	SetCustomClaims(ctx context.Context, uid string, claims map[string]any) error
	SignInWithPassword(ctx context.Context, email, password string) (*firebase.SignInResult, error)
}

type userProjections interface {
	EnsureProjection(ctx context.Context, p users.Projection) (*users.UserDTO, bool, error)
	FindByFirebaseUID(ctx context.Context, uid string) (*users.UserDTO, error)
}

type sessionIssuer interface {
	Issue(subjectID string) (string, error)
}

type ServiceParams struct {
	Provider identityProvider
	Users    userProjections
	Sessions sessionIssuer
	Logger   *logger.Logger
}

type service struct {
	provider identityProvider
	users    userProjections
	sessions sessionIssuer
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Provider == nil {
		return nil, fmt.Errorf("identity provider is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users service is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session issuer is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		provider: params.Provider,
		users:    params.Users,
		sessions: params.Sessions,
		logg:     params.Logger,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AccountResult, error) {
	email := normalizeEmail(req.Email)
	displayName := strings.TrimSpace(req.displayName())
	if displayName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required").
			WithDetails(map[string]string{"name": "is required"})
	}

	rec, err := s.provider.CreateUser(ctx, firebase.NewUser{
		Email:       email,
		Password:    req.Password,
		DisplayName: displayName,
		PhoneNumber: req.phoneNumber(),
		PhotoURL:    req.photoURL(),
	})
	if err != nil {
		return nil, mapProviderError(err, "create account")
	}

	terms := req.TermsAccepted
	s.ensureProjection(ctx, users.Projection{
		FirebaseUID:   rec.UID,
		Email:         email,
		DisplayName:   displayName,
		PhoneNumber:   req.phoneNumber(),
		Address:       req.Address,
		PhotoURL:      req.photoURL(),
		Provider:      "password",
		Role:          enums.RoleUser,
		TermsAccepted: &terms,
	})

	token, err := s.issue(rec.UID)
	if err != nil {
		return nil, err
	}
	return &AccountResult{
		UID:          rec.UID,
		Email:        email,
		DisplayName:  displayName,
		Role:         enums.RoleUser.String(),
		SessionToken: token,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AccountResult, error) {
	signIn, err := s.provider.SignInWithPassword(ctx, normalizeEmail(req.Email), req.Password)
	if err != nil {
		return nil, mapProviderError(err, "sign in")
	}

	verified, err := s.provider.VerifyIDToken(ctx, signIn.IDToken)
	if err != nil {
		return nil, mapVerifyError(err)
	}

	s.ensureProjection(ctx, projectionFromToken(verified))

	token, err := s.issue(verified.SubjectID)
	if err != nil {
		return nil, err
	}
	return &AccountResult{
		UID:          verified.SubjectID,
		Email:        firstNonEmpty(verified.Email(), signIn.Email),
		SessionToken: token,
	}, nil
}

func (s *service) GoogleLogin(ctx context.Context, req ProviderTokenRequest) (*AccountResult, error) {
	verified, rec, err := s.verifyProviderToken(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}

	s.ensureProjection(ctx, projectionFromRecord(verified, rec))

	token, err := s.issue(verified.SubjectID)
	if err != nil {
		return nil, err
	}
	return &AccountResult{
		UID:          verified.SubjectID,
		Email:        firstNonEmpty(rec.Email, verified.Email()),
		DisplayName:  firstNonEmpty(rec.DisplayName, verified.Name()),
		PhotoURL:     firstNonEmpty(rec.PhotoURL, verified.Picture()),
		SessionToken: token,
	}, nil
}

// GoogleRegister behaves like GoogleLogin but reports whether a local record was created.
func (s *service) GoogleRegister(ctx context.Context, req ProviderTokenRequest) (*AccountResult, error) {
	verified, rec, err := s.verifyProviderToken(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}

	_, created := s.ensureProjection(ctx, projectionFromRecord(verified, rec))

	token, err := s.issue(verified.SubjectID)
	if err != nil {
		return nil, err
	}
	return &AccountResult{
		UID:          verified.SubjectID,
		Email:        firstNonEmpty(rec.Email, verified.Email()),
		DisplayName:  firstNonEmpty(rec.DisplayName, verified.Name()),
		PhotoURL:     firstNonEmpty(rec.PhotoURL, verified.Picture()),
		Role:         enums.RoleUser.String(),
		IsNewUser:    &created,
		SessionToken: token,
	}, nil
}

// Profile prefers the stored record and falls back to identity claims.
func (s *service) Profile(ctx context.Context, id *pkgauth.Identity) (*Profile, error) {
	if id == nil || id.SubjectID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	stored, err := s.users.FindByFirebaseUID(ctx, id.SubjectID)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		createdAt := stored.CreatedAt
		return &Profile{
			UID:         id.SubjectID,
			Email:       stored.Email,
			DisplayName: stored.DisplayName,
			PhoneNumber: stored.PhoneNumber,
			PhotoURL:    stored.PhotoURL,
			Role:        stored.Role.String(),
			CreatedAt:   &createdAt,
		}, nil
	}

	claims := &pkgauth.VerifiedToken{SubjectID: id.SubjectID, Claims: id.Claims}
	return &Profile{
		UID:         id.SubjectID,
		Email:       claims.Email(),
		DisplayName: claims.Name(),
		PhotoURL:    claims.Picture(),
	}, nil
}

func (s *service) CreateUser(ctx context.Context, req CreateUserRequest) (*CreatedUser, error) {
	email := normalizeEmail(req.Email)
	uid := strings.TrimSpace(req.UID)
	if email == "" && req.PhoneNumber == "" && uid == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email, phoneNumber or uid is required")
	}
	// user lookups treat 24-hex ids as record ids
	if _, ok := db.ParseObjectID(uid); ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "uid must not be a 24-character hex string")
	}

	rec, err := s.provider.CreateUser(ctx, firebase.NewUser{
		UID:         uid,
		Email:       email,
		Password:    req.Password,
		DisplayName: strings.TrimSpace(req.DisplayName),
		PhoneNumber: req.PhoneNumber,
		PhotoURL:    req.PhotoURL,
		Disabled:    req.Disabled,
	})
	if err != nil {
		return nil, mapProviderError(err, "create account")
	}

	role := enums.RoleUser
	if len(req.CustomClaims) > 0 {
		if err := s.provider.SetCustomClaims(ctx, rec.UID, req.CustomClaims); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set custom claims")
		}
		claimed := pkgauth.Identity{Claims: req.CustomClaims}
		if claimed.AdminClaim() {
			role = enums.RoleAdmin
		}
	}

	s.ensureProjection(ctx, users.Projection{
		FirebaseUID: rec.UID,
		Email:       firstNonEmpty(rec.Email, email),
		DisplayName: firstNonEmpty(rec.DisplayName, req.DisplayName),
		PhoneNumber: firstNonEmpty(rec.PhoneNumber, req.PhoneNumber),
		PhotoURL:    firstNonEmpty(rec.PhotoURL, req.PhotoURL),
		Provider:    "admin",
		Role:        role,
		AssignRole:  role == enums.RoleAdmin,
	})

	return &CreatedUser{UID: rec.UID, Email: firstNonEmpty(rec.Email, email)}, nil
}

func (s *service) verifyProviderToken(ctx context.Context, idToken string) (*pkgauth.VerifiedToken, *firebase.UserRecord, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "idToken is required")
	}
	verified, err := s.provider.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, nil, mapVerifyError(err)
	}
	rec, err := s.provider.GetUser(ctx, verified.SubjectID)
	if err != nil {
		return nil, nil, mapProviderError(err, "load account")
	}
	return verified, rec, nil
}

// ensureProjection upserts the local record. Failures are logged and swallowed
// so that a storage outage never blocks a verified sign-in.
func (s *service) ensureProjection(ctx context.Context, p users.Projection) (*users.UserDTO, bool) {
	dto, created, err := s.users.EnsureProjection(ctx, p)
	if err != nil {
		logCtx := s.logg.WithField(ctx, "firebase_uid", p.FirebaseUID)
		s.logg.Error(logCtx, "ensure local user projection failed", err)
		return nil, false
	}
	return dto, created
}

func (s *service) issue(subjectID string) (string, error) {
	token, err := s.sessions.Issue(subjectID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue session")
	}
	return token, nil
}

func projectionFromToken(v *pkgauth.VerifiedToken) users.Projection {
	return users.Projection{
		FirebaseUID: v.SubjectID,
		Email:       v.Email(),
		DisplayName: v.Name(),
		PhotoURL:    v.Picture(),
		Provider:    v.SignInProvider(),
	}
}

func projectionFromRecord(v *pkgauth.VerifiedToken, rec *firebase.UserRecord) users.Projection {
	p := projectionFromToken(v)
	if rec == nil {
		return p
	}
	p.Email = firstNonEmpty(rec.Email, p.Email)
	p.DisplayName = firstNonEmpty(rec.DisplayName, p.DisplayName)
	p.PhoneNumber = rec.PhoneNumber
	p.PhotoURL = firstNonEmpty(rec.PhotoURL, p.PhotoURL)
	if p.Provider == "" {
		p.Provider = rec.ProviderID
	}
	return p
}

func mapVerifyError(err error) error {
	switch {
	case errors.Is(err, pkgauth.ErrTokenRevoked):
		return pkgerrors.Wrap(pkgerrors.CodeTokenRevoked, err, "Token revoked. Please reauthenticate.")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInvalidToken, err, "invalid or expired token")
	}
}

func mapProviderError(err error, action string) error {
	switch {
	case errors.Is(err, firebase.ErrEmailExists):
		return pkgerrors.Wrap(pkgerrors.CodeEmailExists, err, "email already registered")
	case errors.Is(err, firebase.ErrInvalidCredentials):
		return pkgerrors.Wrap(pkgerrors.CodeInvalidCredentials, err, "invalid email or password")
	case errors.Is(err, firebase.ErrUserDisabled):
		return pkgerrors.Wrap(pkgerrors.CodeAccountDisabled, err, "account disabled")
	case errors.Is(err, firebase.ErrTooManyAttempts):
		return pkgerrors.Wrap(pkgerrors.CodeRateLimit, err, "too many attempts, try again later")
	case errors.Is(err, firebase.ErrUserNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
	case errors.Is(err, firebase.ErrSignInUnavailable):
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "password sign-in is not configured")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
