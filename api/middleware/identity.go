package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/studiosite/studiosite-backend/api/responses"
	"github.com/studiosite/studiosite-backend/pkg/auth"
	"github.com/studiosite/studiosite-backend/pkg/auth/session"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"github.com/studiosite/studiosite-backend/pkg/logger"
	"github.com/studiosite/studiosite-backend/pkg/metrics"
)

const (
	channelBearer  = "bearer"
	channelSession = "session"
)

type sessionVerifier interface {
	Verify(token string) (*session.Claims, error)
}

// IdentityParams wires ResolveIdentity.
type IdentityParams struct {
	Verifier auth.IdentityVerifier
	Sessions sessionVerifier
	Metrics  *metrics.AuthMetrics
	Logger   *logger.Logger
}

// ResolveIdentity attaches the bearer and session identities when present and
// valid. A present but invalid bearer token ends the request with 401 and never
// falls back to the cookie; a bad cookie is ignored.
func ResolveIdentity(params IdentityParams) func(http.Handler) http.Handler {
	logg := params.Logger
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token, present := bearerToken(r); present {
				if params.Verifier == nil {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInvalidToken, "invalid or expired token"))
					return
				}
				verified, err := params.Verifier.VerifyIDToken(ctx, token)
				if err != nil {
					if errors.Is(err, auth.ErrTokenRevoked) {
						params.Metrics.IncResolution(channelBearer, metrics.OutcomeRevoked)
						responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeTokenRevoked, err, "Token revoked. Please reauthenticate."))
						return
					}
					params.Metrics.IncResolution(channelBearer, metrics.OutcomeInvalid)
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInvalidToken, err, "invalid or expired token"))
					return
				}
				params.Metrics.IncResolution(channelBearer, metrics.OutcomeVerified)
				ctx = withBearerIdentity(ctx, &auth.Identity{
					SubjectID: verified.SubjectID,
					Claims:    verified.Claims,
					Source:    auth.SourceBearer,
				})
			}

			if raw := session.FromRequest(r); raw != "" && params.Sessions != nil {
				claims, err := params.Sessions.Verify(raw)
				if err != nil {
					params.Metrics.IncResolution(channelSession, metrics.OutcomeInvalid)
					if logg != nil {
						logg.Debug(logg.WithField(ctx, "reason", err.Error()), "session.ignored")
					}
				} else {
					params.Metrics.IncResolution(channelSession, metrics.OutcomeVerified)
					ctx = withSessionIdentity(ctx, &auth.Identity{
						SubjectID: claims.Subject,
						Source:    auth.SourceSession,
					})
				}
			}

			if id := IdentityFromContext(ctx); id != nil && logg != nil {
				ctx = logg.WithCaller(ctx, id.SubjectID, string(id.Source))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token after "Bearer ". present is true whenever the
// header uses the Bearer scheme, even with an empty token.
func bearerToken(r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) < len("bearer") || !strings.EqualFold(raw[:len("bearer")], "bearer") {
		return "", false
	}
	rest := raw[len("bearer"):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(rest), true
}
