package controllers

import (
	"net/http"
	"strings"

	"github.com/studiosite/studiosite-backend/api/middleware"
	"github.com/studiosite/studiosite-backend/api/responses"
	"github.com/studiosite/studiosite-backend/api/validators"
	"github.com/studiosite/studiosite-backend/internal/showcase"
	"github.com/studiosite/studiosite-backend/pkg/enums"
	"github.com/studiosite/studiosite-backend/pkg/logger"
)

// ShowcaseList lets signed-in callers filter by status; anonymous callers only
// ever see active products.
func ShowcaseList(svc showcase.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "showcase service")
			return
		}

		status := string(enums.PublishStatusActive)
		if middleware.IdentityFromContext(r.Context()) != nil {
			status = strings.TrimSpace(r.URL.Query().Get("status"))
		}

		items, err := svc.List(r.Context(), showcase.ListInput{Status: status})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, items, len(items))
	}
}

// ShowcaseCreate posts on behalf of the {userId} path owner.
func ShowcaseCreate(svc showcase.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "showcase service")
			return
		}
		userID, ok := pathParam(w, r, logg, "userId")
		if !ok {
			return
		}
		var body showcase.CreateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Product created successfully", created)
	}
}

func ShowcaseUpdate(svc showcase.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "showcase service")
			return
		}
		id, ok := pathParam(w, r, logg, "id")
		if !ok {
			return
		}
		var body showcase.UpdateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Product updated successfully", updated)
	}
}

func ShowcaseDelete(svc showcase.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "showcase service")
			return
		}
		id, ok := pathParam(w, r, logg, "id")
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Product deleted successfully", nil)
	}
}
