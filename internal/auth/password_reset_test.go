package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiosite/studiosite-backend/internal/notifications"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
)

type resetFixture struct {
	svc      *passwordResetService
	provider *fakeProvider
	tokens   *memoryTokens
	mailer   *captureMailer
}

func newResetFixture(t *testing.T) resetFixture {
	t.Helper()
	provider := newFakeProvider()
	provider.addAccount("uid-r", "reset@example.com", "old-password")
	tokens := &memoryTokens{}
	mailer := &captureMailer{}
	logg, _ := testLogger(t)

	svc, err := NewPasswordResetService(PasswordResetParams{
		Tokens:      tokens,
		Accounts:    provider,
		Users:       newFakeUsers(),
		Mailer:      mailer,
		Logger:      logg,
		FrontendURL: "https://studio.example/",
	})
	require.NoError(t, err)
	return resetFixture{svc: svc.(*passwordResetService), provider: provider, tokens: tokens, mailer: mailer}
}

// issueToken runs Forgot and extracts the raw token from the mailed link.
func (f resetFixture) issueToken(t *testing.T) string {
	t.Helper()
	f.svc.Forgot(context.Background(), ForgotPasswordRequest{Email: "reset@example.com"})
	require.NotEmpty(t, f.mailer.sent)
	link, err := url.Parse(f.mailer.sent[len(f.mailer.sent)-1].ResetURL)
	require.NoError(t, err)
	return link.Query().Get("token")
}

func TestForgotStoresOnlyHashAndMailsLink(t *testing.T) {
	f := newResetFixture(t)
	raw := f.issueToken(t)

	require.Len(t, f.tokens.rows, 1)
	row := f.tokens.rows[0]
	assert.Len(t, raw, 64)
	assert.NotEqual(t, raw, row.TokenHash)
	assert.WithinDuration(t, time.Now().Add(time.Hour), row.ExpiresAt, time.Minute)

	mail := f.mailer.sent[0]
	assert.Equal(t, notifications.MailPasswordReset, mail.Kind)
	assert.True(t, strings.HasPrefix(mail.ResetURL, "https://studio.example/reset-password?"))
	assert.Contains(t, mail.ResetURL, "email=reset%40example.com")
}

func TestForgotUnknownEmailSendsNothing(t *testing.T) {
	f := newResetFixture(t)
	f.svc.Forgot(context.Background(), ForgotPasswordRequest{Email: "nobody@example.com"})
	assert.Empty(t, f.tokens.rows)
	assert.Empty(t, f.mailer.sent)
}

func TestForgotSwallowsStorageAndMailFailures(t *testing.T) {
	f := newResetFixture(t)
	f.tokens.createErr = errors.New("write failed")
	f.svc.Forgot(context.Background(), ForgotPasswordRequest{Email: "reset@example.com"})
	assert.Empty(t, f.mailer.sent)

	f.tokens.createErr = nil
	f.mailer.err = errors.New("publish failed")
	f.svc.Forgot(context.Background(), ForgotPasswordRequest{Email: "reset@example.com"})
	assert.Len(t, f.tokens.rows, 1)
}

func TestResetTokenIsSingleUse(t *testing.T) {
	f := newResetFixture(t)
	raw := f.issueToken(t)

	req := ResetPasswordRequest{Email: "reset@example.com", Token: raw, NewPassword: "new-password"}
	require.NoError(t, f.svc.Reset(context.Background(), req))
	assert.Equal(t, "new-password", f.provider.passwords["uid-r"])
	assert.Equal(t, notifications.MailPasswordResetConfirm, f.mailer.sent[len(f.mailer.sent)-1].Kind)

	err := f.svc.Reset(context.Background(), ResetPasswordRequest{Email: "reset@example.com", Token: raw, NewPassword: "another-one"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, invalidResetTokenMessage, pkgerrors.As(err).Message())
	assert.Equal(t, "new-password", f.provider.passwords["uid-r"])
}

func TestResetRejectsExpiredAndMismatchedTokens(t *testing.T) {
	f := newResetFixture(t)
	raw := f.issueToken(t)

	err := f.svc.Reset(context.Background(), ResetPasswordRequest{Email: "other@example.com", Token: raw, NewPassword: "new-password"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	f.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	err = f.svc.Reset(context.Background(), ResetPasswordRequest{Email: "reset@example.com", Token: raw, NewPassword: "new-password"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, 0, f.provider.updates)
}

func TestResetRetriesAfterProviderFailure(t *testing.T) {
	f := newResetFixture(t)
	raw := f.issueToken(t)
	f.provider.updateFailures = 1
	f.provider.updateErr = errors.New("identity toolkit 503")

	req := ResetPasswordRequest{Email: "reset@example.com", Token: raw, NewPassword: "new-password"}
	err := f.svc.Reset(context.Background(), req)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	assert.Equal(t, "old-password", f.provider.passwords["uid-r"])
	require.Len(t, f.tokens.rows, 1)
	assert.False(t, f.tokens.rows[0].Used)
	assert.Nil(t, f.tokens.rows[0].UsedAt)

	require.NoError(t, f.svc.Reset(context.Background(), req))
	assert.Equal(t, "new-password", f.provider.passwords["uid-r"])

	err = f.svc.Reset(context.Background(), req)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestResetConfirmationFailureStillSucceeds(t *testing.T) {
	f := newResetFixture(t)
	raw := f.issueToken(t)
	f.mailer.err = errors.New("publish failed")

	err := f.svc.Reset(context.Background(), ResetPasswordRequest{Email: "reset@example.com", Token: raw, NewPassword: "new-password"})
	assert.NoError(t, err)
}

func TestConcurrentResetsWithOneTokenSucceedOnce(t *testing.T) {
	f := newResetFixture(t)
	raw := f.issueToken(t)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		invalid   int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := f.svc.Reset(context.Background(), ResetPasswordRequest{Email: "reset@example.com", Token: raw, NewPassword: "racing-password"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				invalid++
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, invalid)
	assert.Equal(t, 1, f.provider.updates)
}
