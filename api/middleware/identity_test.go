package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/studiosite/studiosite-backend/pkg/auth"
	"github.com/studiosite/studiosite-backend/pkg/auth/session"
	"github.com/studiosite/studiosite-backend/pkg/metrics"
)

type stubVerifier struct {
	tokens map[string]string
	errs   map[string]error
}

func (s stubVerifier) VerifyIDToken(_ context.Context, token string) (*auth.VerifiedToken, error) {
	if err, ok := s.errs[token]; ok {
		return nil, err
	}
	if uid, ok := s.tokens[token]; ok {
		return &auth.VerifiedToken{SubjectID: uid, Claims: map[string]any{"email": uid + "@example.com"}}, nil
	}
	return nil, auth.ErrInvalidToken
}

func newTestIssuer(t *testing.T) *session.Issuer {
	t.Helper()
	issuer, err := session.NewIssuer("test-secret", "studiosite")
	if err != nil {
		t.Fatalf("issuer: %v", err)
	}
	return issuer
}

func captureIdentity(out **auth.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*out = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestResolveIdentityInvalidBearerNeverFallsBackToCookie(t *testing.T) {
	issuer := newTestIssuer(t)
	cookie, err := issuer.Issue("uid-cookie")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen *auth.Identity
	handler := ResolveIdentity(IdentityParams{Verifier: stubVerifier{}, Sessions: issuer})(captureIdentity(&seen))

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if seen != nil {
		t.Fatal("handler must not run after an invalid bearer token")
	}
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "INVALID_TOKEN" {
		t.Fatalf("expected INVALID_TOKEN, got %q", body.Code)
	}
}

func TestResolveIdentityRevokedBearer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewAuthMetrics(reg)
	verifier := stubVerifier{errs: map[string]error{"revoked": auth.ErrTokenRevoked}}
	handler := ResolveIdentity(IdentityParams{Verifier: verifier, Metrics: m})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer revoked")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "TOKEN_REVOKED" || body.Message != "Token revoked. Please reauthenticate." {
		t.Fatalf("unexpected body %+v", body)
	}
	if n, err := testutil.GatherAndCount(reg, "studiosite_identity_resolutions_total"); err != nil || n != 1 {
		t.Fatalf("expected one resolution series, got %d (%v)", n, err)
	}
}

func TestResolveIdentityCookieOnly(t *testing.T) {
	issuer := newTestIssuer(t)
	cookie, err := issuer.Issue("uid-42")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen *auth.Identity
	handler := ResolveIdentity(IdentityParams{Verifier: stubVerifier{}, Sessions: issuer})(captureIdentity(&seen))
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || seen == nil {
		t.Fatalf("expected session identity, got code %d identity %v", rec.Code, seen)
	}
	if seen.SubjectID != "uid-42" || seen.Source != auth.SourceSession {
		t.Fatalf("unexpected identity %+v", seen)
	}
}

func TestResolveIdentityBadOrExpiredCookieIsAnonymous(t *testing.T) {
	issuer := newTestIssuer(t)
	past := time.Now().Add(-8 * 24 * time.Hour)
	expired, err := newTestIssuer(t).WithClock(func() time.Time { return past }).Issue("uid-old")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for name, value := range map[string]string{"garbage": "not-a-jwt", "expired": expired} {
		t.Run(name, func(t *testing.T) {
			var seen *auth.Identity
			called := false
			handler := ResolveIdentity(IdentityParams{Sessions: issuer})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				seen = IdentityFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			req.AddCookie(&http.Cookie{Name: session.CookieName, Value: value})
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if !called || seen != nil {
				t.Fatalf("expected anonymous pass-through, called=%v identity=%v", called, seen)
			}
		})
	}
}

func TestResolveIdentityBearerWinsOverCookie(t *testing.T) {
	issuer := newTestIssuer(t)
	cookie, err := issuer.Issue("uid-cookie")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var seen *auth.Identity
	verifier := stubVerifier{tokens: map[string]string{"good": "uid-bearer"}}
	handler := ResolveIdentity(IdentityParams{Verifier: verifier, Sessions: issuer})(captureIdentity(&seen))
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "bearer good")
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen == nil || seen.SubjectID != "uid-bearer" || seen.Source != auth.SourceBoth {
		t.Fatalf("unexpected merged identity %+v", seen)
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header  string
		token   string
		present bool
	}{
		{"", "", false},
		{"Basic abc", "", false},
		{"Bearer abc", "abc", true},
		{"BEARER   abc ", "abc", true},
		{"Bearer", "", true},
		{"Bearerabc", "", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		token, present := bearerToken(req)
		if token != tc.token || present != tc.present {
			t.Fatalf("bearerToken(%q) = %q,%v want %q,%v", tc.header, token, present, tc.token, tc.present)
		}
	}
}
