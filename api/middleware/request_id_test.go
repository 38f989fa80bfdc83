package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestIDPropagatesValidHeader(t *testing.T) {
	var seen string
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "edge-1234.abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "edge-1234.abc" || rec.Header().Get(requestIDHeader) != "edge-1234.abc" {
		t.Fatalf("expected propagated id, got ctx=%q header=%q", seen, rec.Header().Get(requestIDHeader))
	}
}

func TestRequestIDReplacesUnsafeHeader(t *testing.T) {
	for _, raw := range []string{"", "has space", "line\nbreak", strings.Repeat("a", maxRequestIDLength+1)} {
		var seen string
		handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestIDFromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if raw != "" {
			req.Header[requestIDHeader] = []string{raw}
		}
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if _, err := uuid.Parse(seen); err != nil {
			t.Fatalf("input %q: expected generated uuid, got %q", raw, seen)
		}
	}
}

func TestRecovererWritesInternalError(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Fatalf("panic value leaked to client: %s", rec.Body.String())
	}
}

func TestRecovererReraisesAbort(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	defer func() {
		if v := recover(); v != http.ErrAbortHandler {
			t.Fatalf("expected ErrAbortHandler to propagate, got %v", v)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
