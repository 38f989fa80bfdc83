package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/studiosite/studiosite-backend/api/middleware"
	"github.com/studiosite/studiosite-backend/api/responses"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"github.com/studiosite/studiosite-backend/pkg/logger"
)

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" unavailable"))
}

// pathParam returns the trimmed chi URL param or writes a validation error.
func pathParam(w http.ResponseWriter, r *http.Request, logg *logger.Logger, key string) (string, bool) {
	value := strings.TrimSpace(chi.URLParam(r, key))
	if value == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, key+" is required"))
		return "", false
	}
	return value, true
}

// callerID is the subject id of whichever identity resolved, or "".
func callerID(r *http.Request) string {
	if id := middleware.IdentityFromContext(r.Context()); id != nil {
		return id.SubjectID
	}
	return ""
}
