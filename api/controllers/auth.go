package controllers

import (
	"net/http"

	"github.com/studiosite/studiosite-backend/api/middleware"
	"github.com/studiosite/studiosite-backend/api/responses"
	"github.com/studiosite/studiosite-backend/api/validators"
	"github.com/studiosite/studiosite-backend/internal/auth"
	"github.com/studiosite/studiosite-backend/pkg/auth/session"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"github.com/studiosite/studiosite-backend/pkg/logger"
)

// AuthRegister creates the provider account, mirrors it locally and starts a
// cookie session.
func AuthRegister(svc auth.Service, secureCookie bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth service")
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session.SetCookie(w, result.SessionToken, secureCookie)
		responses.WriteMessage(w, http.StatusCreated, "User registered successfully", result)
	}
}

func AuthLogin(svc auth.Service, secureCookie bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth service")
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session.SetCookie(w, result.SessionToken, secureCookie)
		responses.WriteMessage(w, http.StatusOK, "Login successful", result)
	}
}

func AuthGoogleLogin(svc auth.Service, secureCookie bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth service")
			return
		}

		var body auth.ProviderTokenRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GoogleLogin(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session.SetCookie(w, result.SessionToken, secureCookie)
		responses.WriteMessage(w, http.StatusOK, "Google login successful", result)
	}
}

// AuthGoogleRegister answers 201 when a local record was created and 200 for a
// returning account.
func AuthGoogleRegister(svc auth.Service, secureCookie bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth service")
			return
		}

		var body auth.ProviderTokenRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GoogleRegister(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session.SetCookie(w, result.SessionToken, secureCookie)
		if result.IsNewUser != nil && *result.IsNewUser {
			responses.WriteMessage(w, http.StatusCreated, "Google registration successful", result)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Welcome back", result)
	}
}

// AuthLogout always succeeds.
func AuthLogout(secureCookie bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session.ClearCookie(w, secureCookie)
		responses.WriteMessage(w, http.StatusOK, "Logged out successfully", nil)
	}
}

// AuthProfile only honours the bearer channel; a session cookie alone is not enough.
func AuthProfile(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth service")
			return
		}

		id := middleware.BearerIdentity(r.Context())
		if id == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "bearer token required"))
			return
		}

		profile, err := svc.Profile(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func AuthMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth service")
			return
		}

		id := middleware.IdentityFromContext(r.Context())
		if id == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		profile, err := svc.Profile(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func AdminCreateUser(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth service")
			return
		}

		var body auth.CreateUserRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateUser(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "User created successfully", created)
	}
}
