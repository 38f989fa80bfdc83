package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/studiosite/studiosite-backend/api/responses"
	"github.com/studiosite/studiosite-backend/internal/authz"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"github.com/studiosite/studiosite-backend/pkg/logger"
	"github.com/studiosite/studiosite-backend/pkg/metrics"
	"github.com/studiosite/studiosite-backend/pkg/security"
)

const adminSecretHeader = "x-admin-secret"

type principalLookup interface {
	Lookup(ctx context.Context, id string) (*authz.Principal, error)
}

// OwnerFunc derives the owning user id of the resource a request targets.
type OwnerFunc func(r *http.Request) (string, error)

type GuardParams struct {
	Roles       principalLookup
	Policy      authz.Policy
	AdminSecret string
	Metrics     *metrics.AuthMetrics
	Logger      *logger.Logger
}

// Guards builds the per-route authorization middlewares.
type Guards struct {
	roles       principalLookup
	policy      authz.Policy
	adminSecret string
	metrics     *metrics.AuthMetrics
	logg        *logger.Logger
}

func NewGuards(params GuardParams) *Guards {
	return &Guards{
		roles:       params.Roles,
		policy:      params.Policy,
		adminSecret: strings.TrimSpace(params.AdminSecret),
		metrics:     params.Metrics,
		logg:        params.Logger,
	}
}

// OptionalIdentity never rejects; handlers read IdentityFromContext themselves.
func (g *Guards) OptionalIdentity(next http.Handler) http.Handler {
	return next
}

func (g *Guards) RequireAnyIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()) == nil {
			g.deny(w, r, "any_identity", pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin admits a matching shared admin secret, otherwise an identity the
// policy considers admin.
func (g *Guards) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.adminSecret != "" {
			if provided := r.Header.Get(adminSecretHeader); provided != "" && security.ConstantTimeEqual(provided, g.adminSecret) {
				next.ServeHTTP(w, r.WithContext(withCallerIsAdmin(r.Context())))
				return
			}
		}

		id := IdentityFromContext(r.Context())
		if id == nil {
			g.deny(w, r, "admin", pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}
		stored, err := g.lookup(r.Context(), id.SubjectID)
		if err != nil {
			g.deny(w, r, "admin", err)
			return
		}
		if !g.policy.IsAdmin(id, stored) {
			g.deny(w, r, "admin", pkgerrors.New(pkgerrors.CodeForbidden, "Admin access required"))
			return
		}
		next.ServeHTTP(w, r.WithContext(withCallerIsAdmin(r.Context())))
	})
}

// RequireOwnerOrAdmin always consults the stored record, even when a claim
// asserts admin, then admits admins or the owner returned by ownerFn.
func (g *Guards) RequireOwnerOrAdmin(ownerFn OwnerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id == nil {
				g.deny(w, r, "owner_or_admin", pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			stored, err := g.lookup(r.Context(), id.SubjectID)
			if err != nil {
				g.deny(w, r, "owner_or_admin", err)
				return
			}
			if g.policy.IsAdmin(id, stored) {
				next.ServeHTTP(w, r.WithContext(withCallerIsAdmin(r.Context())))
				return
			}

			ownerID, err := ownerFn(r)
			if err != nil {
				g.deny(w, r, "owner_or_admin", err)
				return
			}
			if !g.policy.IsOwner(id, stored, ownerID) {
				g.deny(w, r, "owner_or_admin", pkgerrors.New(pkgerrors.CodeForbidden, "Access denied"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Guards) lookup(ctx context.Context, subjectID string) (*authz.Principal, error) {
	if g.roles == nil {
		return nil, nil
	}
	stored, err := g.roles.Lookup(ctx, subjectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve caller role")
	}
	return stored, nil
}

func (g *Guards) deny(w http.ResponseWriter, r *http.Request, guard string, err error) {
	status := pkgerrors.MetadataFor(pkgerrors.CodeInternal).HTTPStatus
	if typed := pkgerrors.As(err); typed != nil {
		status = pkgerrors.MetadataFor(typed.Code()).HTTPStatus
	}
	g.metrics.IncDenial(guard, strconv.Itoa(status))
	responses.WriteError(r.Context(), g.logg, w, err)
}
