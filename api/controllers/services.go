package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/studiosite/studiosite-backend/api/responses"
	"github.com/studiosite/studiosite-backend/api/validators"
	"github.com/studiosite/studiosite-backend/internal/services"
	"github.com/studiosite/studiosite-backend/pkg/logger"
	"github.com/studiosite/studiosite-backend/pkg/pagination"
)

func servicesListInput(r *http.Request) (services.ListInput, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return services.ListInput{}, err
	}
	minPrice, err := validators.ParseQueryDecimal(r, "minPrice")
	if err != nil {
		return services.ListInput{}, err
	}
	maxPrice, err := validators.ParseQueryDecimal(r, "maxPrice")
	if err != nil {
		return services.ListInput{}, err
	}
	q := r.URL.Query()
	return services.ListInput{
		Category: strings.TrimSpace(q.Get("category")),
		Status:   strings.TrimSpace(q.Get("status")),
		Tags:     validators.QueryList(r, "tags"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Params:   pagination.Params{Limit: limit, Cursor: strings.TrimSpace(q.Get("cursor"))},
	}, nil
}

func ServicesList(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "services service")
			return
		}
		input, err := servicesListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, page, len(page.Items))
	}
}

// ServicesByCategory is ServicesList with the category taken from the path.
func ServicesByCategory(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "services service")
			return
		}
		input, err := servicesListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Category = strings.TrimSpace(chi.URLParam(r, "category"))
		page, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, page, len(page.Items))
	}
}

func ServicesCategories(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "services service")
			return
		}
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, categories, len(categories))
	}
}

func ServicesGet(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "services service")
			return
		}
		id, ok := pathParam(w, r, logg, "id")
		if !ok {
			return
		}
		item, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ServicesCreate(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "services service")
			return
		}
		var body services.CreateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), callerID(r), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Service created successfully", created)
	}
}

func ServicesUpdate(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "services service")
			return
		}
		id, ok := pathParam(w, r, logg, "id")
		if !ok {
			return
		}
		var body services.UpdateInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Service updated successfully", updated)
	}
}

func ServicesDelete(svc services.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "services service")
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
		responses.WriteMessage(w, http.StatusOK, "Service deleted successfully", nil)
	}
}
