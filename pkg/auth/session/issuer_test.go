package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer, err := NewIssuer("secret", "studiosite")
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	issuer.WithClock(fixedClock(start))

	token, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for _, offset := range []time.Duration{0, time.Hour, 6 * 24 * time.Hour, TTL - time.Second} {
		issuer.WithClock(fixedClock(start.Add(offset)))
		claims, err := issuer.Verify(token)
		if err != nil {
			t.Fatalf("verify at +%v: %v", offset, err)
		}
		if claims.Subject != "user-123" {
			t.Fatalf("expected subject user-123, got %q", claims.Subject)
		}
	}

	issuer.WithClock(fixedClock(start.Add(TTL + time.Second)))
	if _, err := issuer.Verify(token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired after 7 days, got %v", err)
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	a, _ := NewIssuer("secret-a", "studiosite")
	b, _ := NewIssuer("secret-b", "studiosite")

	token, err := a.Issue("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := b.Verify(token); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	issuer, _ := NewIssuer("secret", "studiosite")
	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := issuer.Verify(raw); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("expected ErrInvalidSignature for %q, got %v", raw, err)
		}
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("  ", "studiosite"); err == nil {
		t.Fatal("expected empty secret to be rejected")
	}
}

func TestCookieAttributes(t *testing.T) {
	w := httptest.NewRecorder()
	SetCookie(w, "tok", true)

	header := w.Header().Get("Set-Cookie")
	for _, want := range []string{"session=tok", "HttpOnly", "Secure", "SameSite=Lax", "Max-Age=604800", "Path=/"} {
		if !strings.Contains(header, want) {
			t.Fatalf("expected %q in cookie header %q", want, header)
		}
	}

	w = httptest.NewRecorder()
	SetCookie(w, "tok", false)
	if strings.Contains(w.Header().Get("Set-Cookie"), "Secure") {
		t.Fatalf("cookie should not be secure outside production")
	}

	w = httptest.NewRecorder()
	ClearCookie(w, false)
	if !strings.Contains(w.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Fatalf("expected clearing cookie to expire immediately, got %q", w.Header().Get("Set-Cookie"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if FromRequest(req) != "" {
		t.Fatal("expected empty value without cookie")
	}
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "abc"})
	if FromRequest(req) != "abc" {
		t.Fatal("expected cookie value to be read")
	}
}
