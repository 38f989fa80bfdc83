package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/studiosite/studiosite-backend/internal/authz"
	"github.com/studiosite/studiosite-backend/pkg/auth"
	"github.com/studiosite/studiosite-backend/pkg/enums"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
)

type fakeRoles struct {
	principals map[string]*authz.Principal
	err        error
	calls      int
}

func (f *fakeRoles) Lookup(_ context.Context, id string) (*authz.Principal, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.principals[id], nil
}

const (
	ownerDBID  = "65f1c2a9e4b0a1b2c3d4e5f6"
	ownerUID   = "firebase-owner"
	adminDBID  = "65f1c2a9e4b0a1b2c3d4e5f7"
	adminUID   = "firebase-admin"
	strangerID = "firebase-stranger"
)

func newFakeRoles() *fakeRoles {
	owner := &authz.Principal{DatabaseID: ownerDBID, ExternalUID: ownerUID, Role: enums.RoleUser}
	admin := &authz.Principal{DatabaseID: adminDBID, ExternalUID: adminUID, Role: enums.RoleAdmin}
	stranger := &authz.Principal{DatabaseID: "65f1c2a9e4b0a1b2c3d4e5f8", ExternalUID: strangerID, Role: enums.RoleUser}
	return &fakeRoles{principals: map[string]*authz.Principal{
		ownerDBID:  owner,
		ownerUID:   owner,
		adminDBID:  admin,
		adminUID:   admin,
		strangerID: stranger,
	}}
}

func newTestGuards(t *testing.T, roles principalLookup, secret string) *Guards {
	t.Helper()
	policy, err := authz.NewPolicy("")
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	return NewGuards(GuardParams{Roles: roles, Policy: policy, AdminSecret: secret})
}

func serveGuarded(guard func(http.Handler) http.Handler, id *auth.Identity, mutate func(*http.Request)) (*httptest.ResponseRecorder, bool) {
	var callerIsAdmin bool
	handler := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callerIsAdmin = CallerIsAdmin(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodDelete, "/api/products/p1", nil)
	if id != nil {
		req = req.WithContext(WithIdentity(req.Context(), id))
	}
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, callerIsAdmin
}

func TestRequireAnyIdentity(t *testing.T) {
	g := newTestGuards(t, newFakeRoles(), "")

	rec, _ := serveGuarded(g.RequireAnyIdentity, nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous, got %d", rec.Code)
	}

	rec, _ = serveGuarded(g.RequireAnyIdentity, &auth.Identity{SubjectID: ownerUID, Source: auth.SourceSession}, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestRequireOwnerOrAdmin(t *testing.T) {
	ownerFn := func(*http.Request) (string, error) { return ownerDBID, nil }

	cases := []struct {
		name      string
		subject   string
		wantCode  int
		wantAdmin bool
	}{
		{name: "owner by external id", subject: ownerUID, wantCode: http.StatusNoContent},
		{name: "owner by database id", subject: ownerDBID, wantCode: http.StatusNoContent},
		{name: "stored admin by external id", subject: adminUID, wantCode: http.StatusNoContent, wantAdmin: true},
		{name: "stored admin by database id", subject: adminDBID, wantCode: http.StatusNoContent, wantAdmin: true},
		{name: "other user", subject: strangerID, wantCode: http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGuards(t, newFakeRoles(), "")
			rec, isAdmin := serveGuarded(g.RequireOwnerOrAdmin(ownerFn), &auth.Identity{SubjectID: tc.subject, Source: auth.SourceBearer}, nil)
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d body=%s", tc.wantCode, rec.Code, rec.Body.String())
			}
			if isAdmin != tc.wantAdmin {
				t.Fatalf("expected callerIsAdmin=%v, got %v", tc.wantAdmin, isAdmin)
			}
		})
	}
}

func TestRequireOwnerOrAdminStaleClaimIsIgnored(t *testing.T) {
	g := newTestGuards(t, newFakeRoles(), "")
	ownerFn := func(*http.Request) (string, error) { return ownerDBID, nil }
	id := &auth.Identity{SubjectID: strangerID, Claims: map[string]any{"admin": true}, Source: auth.SourceBearer}

	rec, _ := serveGuarded(g.RequireOwnerOrAdmin(ownerFn), id, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected stored user role to win over admin claim, got %d", rec.Code)
	}
}

func TestRequireOwnerOrAdminPropagatesOwnerError(t *testing.T) {
	g := newTestGuards(t, newFakeRoles(), "")
	ownerFn := func(*http.Request) (string, error) {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}

	rec, _ := serveGuarded(g.RequireOwnerOrAdmin(ownerFn), &auth.Identity{SubjectID: strangerID}, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		g := newTestGuards(t, newFakeRoles(), "")
		rec, _ := serveGuarded(g.RequireAdmin, nil, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("non admin", func(t *testing.T) {
		g := newTestGuards(t, newFakeRoles(), "")
		rec, _ := serveGuarded(g.RequireAdmin, &auth.Identity{SubjectID: ownerUID}, nil)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("stored admin", func(t *testing.T) {
		g := newTestGuards(t, newFakeRoles(), "")
		rec, isAdmin := serveGuarded(g.RequireAdmin, &auth.Identity{SubjectID: adminDBID}, nil)
		if rec.Code != http.StatusNoContent || !isAdmin {
			t.Fatalf("expected admin pass, got %d admin=%v", rec.Code, isAdmin)
		}
	})

	t.Run("claim without record", func(t *testing.T) {
		g := newTestGuards(t, newFakeRoles(), "")
		id := &auth.Identity{SubjectID: "firebase-new", Claims: map[string]any{"role": "admin"}}
		rec, _ := serveGuarded(g.RequireAdmin, id, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected claim fallback to pass, got %d", rec.Code)
		}
	})

	t.Run("shared secret", func(t *testing.T) {
		roles := newFakeRoles()
		g := newTestGuards(t, roles, "s3cret")
		rec, isAdmin := serveGuarded(g.RequireAdmin, nil, func(r *http.Request) {
			r.Header.Set(adminSecretHeader, "s3cret")
		})
		if rec.Code != http.StatusNoContent || !isAdmin {
			t.Fatalf("expected secret pass, got %d", rec.Code)
		}
		if roles.calls != 0 {
			t.Fatalf("secret path must not consult the store, got %d lookups", roles.calls)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		g := newTestGuards(t, newFakeRoles(), "s3cret")
		rec, _ := serveGuarded(g.RequireAdmin, nil, func(r *http.Request) {
			r.Header.Set(adminSecretHeader, "nope")
		})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("store unavailable", func(t *testing.T) {
		g := newTestGuards(t, &fakeRoles{err: errors.New("mongo down")}, "")
		rec, _ := serveGuarded(g.RequireAdmin, &auth.Identity{SubjectID: adminUID}, nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})
}
