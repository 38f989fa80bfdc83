package firebase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/studiosite/studiosite-backend/pkg/auth"
	"google.golang.org/api/googleapi"
)

type stubAuthClient struct {
	token     *fbauth.Token
	verifyErr error
	block     bool

	created   *fbauth.UserToCreate
	createErr error
	record    *fbauth.UserRecord
}

func (s *stubAuthClient) VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*fbauth.Token, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.token, s.verifyErr
}

func (s *stubAuthClient) CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error) {
	s.created = user
	if s.createErr != nil {
		return nil, s.createErr
	}
	return s.record, nil
}

func (s *stubAuthClient) GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error) {
	return s.record, nil
}

func (s *stubAuthClient) GetUserByEmail(ctx context.Context, email string) (*fbauth.UserRecord, error) {
	return s.record, nil
}

func (s *stubAuthClient) UpdateUser(ctx context.Context, uid string, user *fbauth.UserToUpdate) (*fbauth.UserRecord, error) {
	return s.record, nil
}

func (s *stubAuthClient) DeleteUser(ctx context.Context, uid string) error {
	return nil
}

func (s *stubAuthClient) SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error {
	return nil
}

func TestVerifyIDTokenSuccess(t *testing.T) {
	stub := &stubAuthClient{token: &fbauth.Token{
		UID:      "uid-1",
		Claims:   map[string]interface{}{"email": "a@example.com", "admin": true},
		Firebase: fbauth.FirebaseInfo{SignInProvider: "password"},
	}}
	client := newClient(stub, nil, time.Second)

	got, err := client.VerifyIDToken(context.Background(), "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SubjectID != "uid-1" || got.Email() != "a@example.com" {
		t.Fatalf("unexpected verified token %+v", got)
	}
	if got.SignInProvider() != "password" {
		t.Fatalf("expected sign in provider to be carried, got %q", got.SignInProvider())
	}
}

func TestVerifyIDTokenFailuresAreInvalidToken(t *testing.T) {
	client := newClient(&stubAuthClient{verifyErr: errors.New("bad signature")}, nil, time.Second)
	if _, err := client.VerifyIDToken(context.Background(), "token"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := client.VerifyIDToken(context.Background(), "  "); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestVerifyIDTokenTimeoutIsVerificationFailure(t *testing.T) {
	client := newClient(&stubAuthClient{block: true}, nil, 20*time.Millisecond)

	_, err := client.VerifyIDToken(context.Background(), "token")
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded in chain, got %v", err)
	}
}

func TestCreateUserSkipsEmptyOptionalFields(t *testing.T) {
	stub := &stubAuthClient{record: &fbauth.UserRecord{UserInfo: &fbauth.UserInfo{UID: "uid-2", Email: "b@example.com"}}}
	client := newClient(stub, nil, time.Second)

	rec, err := client.CreateUser(context.Background(), NewUser{Email: "b@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.UID != "uid-2" {
		t.Fatalf("unexpected uid %q", rec.UID)
	}
	if stub.created == nil {
		t.Fatal("expected CreateUser to be called")
	}
}

func TestSignInUnavailableWithoutAPIKey(t *testing.T) {
	client := newClient(&stubAuthClient{}, nil, time.Second)
	if _, err := client.SignInWithPassword(context.Background(), "a@example.com", "pw"); !errors.Is(err, ErrSignInUnavailable) {
		t.Fatalf("expected ErrSignInUnavailable, got %v", err)
	}
}

func TestClassifySignInError(t *testing.T) {
	cases := []struct {
		msg  string
		want error
	}{
		{msg: "INVALID_LOGIN_CREDENTIALS", want: ErrInvalidCredentials},
		{msg: "EMAIL_NOT_FOUND", want: ErrInvalidCredentials},
		{msg: "INVALID_PASSWORD", want: ErrInvalidCredentials},
		{msg: "USER_DISABLED", want: ErrUserDisabled},
		{msg: "TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account has been temporarily disabled", want: ErrTooManyAttempts},
	}
	for _, tc := range cases {
		err := classifySignInError(&googleapi.Error{Code: http.StatusBadRequest, Message: tc.msg})
		if !errors.Is(err, tc.want) {
			t.Fatalf("message %q: expected %v, got %v", tc.msg, tc.want, err)
		}
	}

	other := classifySignInError(errors.New("network down"))
	for _, sentinel := range []error{ErrInvalidCredentials, ErrUserDisabled, ErrTooManyAttempts} {
		if errors.Is(other, sentinel) {
			t.Fatalf("unexpected classification %v", other)
		}
	}
}
