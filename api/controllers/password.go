package controllers

import (
	"net/http"

	"github.com/studiosite/studiosite-backend/api/responses"
	"github.com/studiosite/studiosite-backend/api/validators"
	"github.com/studiosite/studiosite-backend/internal/auth"
	"github.com/studiosite/studiosite-backend/pkg/logger"
)

// ForgotPassword answers with the same body whether or not the email is known.
// Only a malformed request is rejected.
func ForgotPassword(svc auth.PasswordResetService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "password reset service")
			return
		}

		var body auth.ForgotPasswordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		svc.Forgot(r.Context(), body)
		responses.WriteMessage(w, http.StatusOK, auth.ForgotPasswordMessage, nil)
	}
}

func ResetPassword(svc auth.PasswordResetService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "password reset service")
			return
		}

		var body auth.ResetPasswordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Reset(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, auth.ResetPasswordMessage, nil)
	}
}
