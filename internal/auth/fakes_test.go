package auth

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/studiosite/studiosite-backend/internal/notifications"
	"github.com/studiosite/studiosite-backend/internal/users"
	pkgauth "github.com/studiosite/studiosite-backend/pkg/auth"
	"github.com/studiosite/studiosite-backend/pkg/db/models"
	"github.com/studiosite/studiosite-backend/pkg/enums"
	"github.com/studiosite/studiosite-backend/pkg/firebase"
	"github.com/studiosite/studiosite-backend/pkg/logger"
)

type fakeProvider struct {
	mu        sync.Mutex
	accounts  map[string]*firebase.UserRecord
	passwords map[string]string
	tokens    map[string]*pkgauth.VerifiedToken
	verifyErr error
	signInErr error
	claims    map[string]map[string]any
	updates   int
	// updateFailures makes the next N UpdatePassword calls fail with updateErr.
	updateFailures int
	updateErr      error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		accounts:  map[string]*firebase.UserRecord{},
		passwords: map[string]string{},
		tokens:    map[string]*pkgauth.VerifiedToken{},
		claims:    map[string]map[string]any{},
	}
}

func (f *fakeProvider) addAccount(uid, email, password string) *firebase.UserRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec := &firebase.UserRecord{UID: uid, Email: email, DisplayName: "Account " + uid, ProviderID: "firebase"}
	f.accounts[uid] = rec
	f.passwords[uid] = password
	f.tokens["id-token-"+uid] = &pkgauth.VerifiedToken{
		SubjectID: uid,
		Claims:    map[string]any{"email": email, "name": rec.DisplayName, "firebase": map[string]any{"sign_in_provider": "google.com"}},
	}
	return rec
}

func (f *fakeProvider) VerifyIDToken(_ context.Context, token string) (*pkgauth.VerifiedToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	if v, ok := f.tokens[token]; ok {
		return v, nil
	}
	return nil, pkgauth.ErrInvalidToken
}

func (f *fakeProvider) CreateUser(_ context.Context, in firebase.NewUser) (*firebase.UserRecord, error) {
	f.mu.Lock()
	for _, rec := range f.accounts {
		if in.Email != "" && rec.Email == in.Email {
			f.mu.Unlock()
			return nil, firebase.ErrEmailExists
		}
	}
	uid := in.UID
	if uid == "" {
		uid = fmt.Sprintf("uid-%d", len(f.accounts)+1)
	}
	f.mu.Unlock()
	rec := f.addAccount(uid, in.Email, in.Password)
	rec.DisplayName = in.DisplayName
	return rec, nil
}

func (f *fakeProvider) GetUser(_ context.Context, uid string) (*firebase.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.accounts[uid]; ok {
		return rec, nil
	}
	return nil, firebase.ErrUserNotFound
}

func (f *fakeProvider) GetUserByEmail(_ context.Context, email string) (*firebase.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.accounts {
		if rec.Email == email {
			return rec, nil
		}
	}
	return nil, firebase.ErrUserNotFound
}

func (f *fakeProvider) UpdatePassword(_ context.Context, uid, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[uid]; !ok {
		return firebase.ErrUserNotFound
	}
	if f.updateFailures > 0 {
		f.updateFailures--
		return f.updateErr
	}
	f.passwords[uid] = password
	f.updates++
	return nil
}

func (f *fakeProvider) SetCustomClaims(_ context.Context, uid string, claims map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claims[uid] = claims
	return nil
}

func (f *fakeProvider) SignInWithPassword(_ context.Context, email, password string) (*firebase.SignInResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	for uid, rec := range f.accounts {
		if rec.Email == email && f.passwords[uid] == password {
			return &firebase.SignInResult{IDToken: "id-token-" + uid, UID: uid, Email: email}, nil
		}
	}
	return nil, firebase.ErrInvalidCredentials
}

type fakeUsers struct {
	mu        sync.Mutex
	byUID     map[string]*users.UserDTO
	ensureErr error
	ensured   []users.Projection
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byUID: map[string]*users.UserDTO{}}
}

func (f *fakeUsers) EnsureProjection(_ context.Context, p users.Projection) (*users.UserDTO, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensured = append(f.ensured, p)
	if f.ensureErr != nil {
		return nil, false, f.ensureErr
	}
	if existing, ok := f.byUID[p.FirebaseUID]; ok {
		if p.AssignRole && p.Role.IsValid() {
			existing.Role = p.Role
		}
		return existing, false, nil
	}
	role := p.Role
	if role == "" {
		role = enums.RoleUser
	}
	dto := &users.UserDTO{
		ID:          "65a0000000000000000000" + fmt.Sprintf("%02d", len(f.byUID)),
		UID:         p.FirebaseUID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Role:        role,
		Status:      enums.UserStatusActive,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.byUID[p.FirebaseUID] = dto
	return dto, true, nil
}

func (f *fakeUsers) FindByFirebaseUID(_ context.Context, uid string) (*users.UserDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byUID[uid], nil
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(subjectID string) (string, error) { return "session-for-" + subjectID, nil }

type memoryTokens struct {
	mu        sync.Mutex
	rows      []*models.PasswordResetToken
	createErr error
}

func (m *memoryTokens) Create(_ context.Context, token *models.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *token
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memoryTokens) Consume(_ context.Context, email, tokenHash string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.Email == email && row.TokenHash == tokenHash && !row.Used && row.ExpiresAt.After(now) {
			row.Used = true
			usedAt := now
			row.UsedAt = &usedAt
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryTokens) Release(_ context.Context, tokenHash string, claimedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.TokenHash == tokenHash && row.Used && row.UsedAt != nil && row.UsedAt.Equal(claimedAt) {
			row.Used = false
			row.UsedAt = nil
		}
	}
	return nil
}

type captureMailer struct {
	mu   sync.Mutex
	sent []notifications.MailRequest
	err  error
}

func (c *captureMailer) Send(_ context.Context, req notifications.MailRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, req)
	return nil
}

func testLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return logger.New(logger.Options{ServiceName: "auth-test", Output: &buf}), &buf
}

func usersProjection(uid, email, name string) users.Projection {
	return users.Projection{FirebaseUID: uid, Email: email, DisplayName: name}
}
