package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	fb "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/studiosite/studiosite-backend/pkg/auth"
	"github.com/studiosite/studiosite-backend/pkg/config"
	"github.com/studiosite/studiosite-backend/pkg/logger"
	"google.golang.org/api/option"
)

const defaultVerifyTimeout = 5 * time.Second

var (
	ErrEmailExists        = errors.New("firebase: email already exists")
	ErrUserNotFound       = errors.New("firebase: user not found")
	ErrInvalidCredentials = errors.New("firebase: invalid credentials")
	ErrUserDisabled       = errors.New("firebase: user disabled")
	ErrTooManyAttempts    = errors.New("firebase: too many attempts")
	ErrSignInUnavailable  = errors.New("firebase: password sign-in not configured")
)

// UserRecord is the subset of a provider account the application reads.
type UserRecord struct {
	UID          string
	Email        string
	DisplayName  string
	PhoneNumber  string
	PhotoURL     string
	ProviderID   string
	Disabled     bool
	CustomClaims map[string]any
}

// NewUser describes an account to create at the provider.
type NewUser struct {
	UID         string
	Email       string
	Password    string
	DisplayName string
	PhoneNumber string
	PhotoURL    string
	Disabled    bool
}

// SignInResult is returned by a successful password sign-in.
type SignInResult struct {
	IDToken string
	UID     string
	Email   string
}

type authClient interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error)
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
	GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error)
	GetUserByEmail(ctx context.Context, email string) (*fbauth.UserRecord, error)
	UpdateUser(ctx context.Context, uid string, user *fbauth.UserToUpdate) (*fbauth.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
}

type passwordSignIn interface {
	SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error)
}

// Client adapts the Firebase Admin SDK and the Identity Toolkit REST API.
type Client struct {
	auth          authClient
	signIn        passwordSignIn
	verifyTimeout time.Duration
}

// New initialises the Firebase app from configuration.
func New(ctx context.Context, cfg config.FirebaseConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("firebase project id is required")
	}

	opts := []option.ClientOption{}
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := fb.NewApp(ctx, &fb.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialising firebase app: %w", err)
	}
	authCli, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialising firebase auth: %w", err)
	}

	var signIn passwordSignIn
	if key := strings.TrimSpace(cfg.WebAPIKey); key != "" {
		signIn, err = newToolkitSignIn(ctx, key)
		if err != nil {
			return nil, err
		}
	} else if logg != nil {
		logg.Warn(ctx, "firebase web api key not set; password login disabled")
	}

	if logg != nil {
		logg.Info(ctx, "firebase client initialized")
	}

	return newClient(authCli, signIn, cfg.VerifyTimeout), nil
}

func newClient(a authClient, s passwordSignIn, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultVerifyTimeout
	}
	return &Client{auth: a, signIn: s, verifyTimeout: timeout}
}

// VerifyIDToken checks signature, expiry and revocation of a provider ID token.
// Every failure, including a timeout, maps to one of the auth token errors.
func (c *Client) VerifyIDToken(ctx context.Context, idToken string) (*auth.VerifiedToken, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, auth.ErrInvalidToken
	}

	ctx, cancel := context.WithTimeout(ctx, c.verifyTimeout)
	defer cancel()

	type result struct {
		tok *fbauth.Token
		err error
	}
	done := make(chan result, 1)
	go func() {
		tok, err := c.auth.VerifyIDTokenAndCheckRevoked(ctx, idToken)
		done <- result{tok: tok, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", auth.ErrInvalidToken, ctx.Err())
	}

	if res.err != nil {
		return nil, classifyVerifyError(res.err)
	}
	if res.tok == nil || res.tok.UID == "" {
		return nil, auth.ErrInvalidToken
	}
	return toVerifiedToken(res.tok), nil
}

func classifyVerifyError(err error) error {
	switch {
	case fbauth.IsIDTokenRevoked(err):
		return fmt.Errorf("%w: %w", auth.ErrTokenRevoked, err)
	case fbauth.IsIDTokenExpired(err):
		return fmt.Errorf("%w: %w", auth.ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %w", auth.ErrInvalidToken, err)
	}
}

func toVerifiedToken(tok *fbauth.Token) *auth.VerifiedToken {
	claims := make(map[string]any, len(tok.Claims)+1)
	for k, v := range tok.Claims {
		claims[k] = v
	}
	if _, ok := claims["firebase"]; !ok && tok.Firebase.SignInProvider != "" {
		claims["firebase"] = map[string]any{"sign_in_provider": tok.Firebase.SignInProvider}
	}
	return &auth.VerifiedToken{SubjectID: tok.UID, Claims: claims}
}

// CreateUser registers a new account at the provider.
func (c *Client) CreateUser(ctx context.Context, in NewUser) (*UserRecord, error) {
	params := (&fbauth.UserToCreate{}).Disabled(in.Disabled)
	if in.UID != "" {
		params = params.UID(in.UID)
	}
	if in.Email != "" {
		params = params.Email(in.Email)
	}
	if in.Password != "" {
		params = params.Password(in.Password)
	}
	if in.DisplayName != "" {
		params = params.DisplayName(in.DisplayName)
	}
	if in.PhoneNumber != "" {
		params = params.PhoneNumber(in.PhoneNumber)
	}
	if in.PhotoURL != "" {
		params = params.PhotoURL(in.PhotoURL)
	}

	rec, err := c.auth.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) || fbauth.IsUIDAlreadyExists(err) || fbauth.IsPhoneNumberAlreadyExists(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("creating firebase user: %w", err)
	}
	return toUserRecord(rec), nil
}

func (c *Client) GetUser(ctx context.Context, uid string) (*UserRecord, error) {
	rec, err := c.auth.GetUser(ctx, uid)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting firebase user: %w", err)
	}
	return toUserRecord(rec), nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	rec, err := c.auth.GetUserByEmail(ctx, email)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting firebase user by email: %w", err)
	}
	return toUserRecord(rec), nil
}

// UpdatePassword replaces the password of an existing account.
func (c *Client) UpdatePassword(ctx context.Context, uid, password string) error {
	_, err := c.auth.UpdateUser(ctx, uid, (&fbauth.UserToUpdate{}).Password(password))
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("updating firebase password: %w", err)
	}
	return nil
}

// DeleteUser removes the account at the provider. A missing account is not an error.
func (c *Client) DeleteUser(ctx context.Context, uid string) error {
	if err := c.auth.DeleteUser(ctx, uid); err != nil {
		if fbauth.IsUserNotFound(err) {
			return nil
		}
		return fmt.Errorf("deleting firebase user: %w", err)
	}
	return nil
}

func (c *Client) SetCustomClaims(ctx context.Context, uid string, claims map[string]any) error {
	if err := c.auth.SetCustomUserClaims(ctx, uid, claims); err != nil {
		return fmt.Errorf("setting custom claims: %w", err)
	}
	return nil
}

// SignInWithPassword exchanges email/password for a provider ID token.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error) {
	if c.signIn == nil {
		return nil, ErrSignInUnavailable
	}
	return c.signIn.SignInWithPassword(ctx, email, password)
}

func toUserRecord(rec *fbauth.UserRecord) *UserRecord {
	if rec == nil || rec.UserInfo == nil {
		return nil
	}
	return &UserRecord{
		UID:          rec.UID,
		Email:        rec.Email,
		DisplayName:  rec.DisplayName,
		PhoneNumber:  rec.PhoneNumber,
		PhotoURL:     rec.PhotoURL,
		ProviderID:   rec.ProviderID,
		Disabled:     rec.Disabled,
		CustomClaims: rec.CustomClaims,
	}
}
