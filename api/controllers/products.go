package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/studiosite/studiosite-backend/api/middleware"
	"github.com/studiosite/studiosite-backend/api/responses"
	"github.com/studiosite/studiosite-backend/api/validators"
	product "github.com/studiosite/studiosite-backend/internal/products"
	pkgerrors "github.com/studiosite/studiosite-backend/pkg/errors"
	"github.com/studiosite/studiosite-backend/pkg/logger"
)

// ProductOwner reads the stored createdBy of /api/products/{id}.
func ProductOwner(svc product.Service) middleware.OwnerFunc {
	return func(r *http.Request) (string, error) {
		if svc == nil {
			return "", pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable")
		}
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "id is required")
		}
		return svc.OwnerOf(r.Context(), id)
	}
}

func ProductsList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product service")
			return
		}

		minPrice, err := validators.ParseQueryDecimal(r, "minPrice")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		maxPrice, err := validators.ParseQueryDecimal(r, "maxPrice")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListProducts(r.Context(), product.ListProductsInput{
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
			MinPrice: minPrice,
			MaxPrice: maxPrice,
			Search:   strings.TrimSpace(r.URL.Query().Get("search")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, items, len(items))
	}
}

func ProductsGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product service")
			return
		}
		id, ok := pathParam(w, r, logg, "id")
		if !ok {
			return
		}
		p, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, p)
	}
}

// ProductsCreate records the caller as createdBy.
func ProductsCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product service")
			return
		}
		owner := callerID(r)
		if owner == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		var body product.CreateProductInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateProduct(r.Context(), owner, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func ProductsUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product service")
			return
		}
		id, ok := pathParam(w, r, logg, "id")
		if !ok {
			return
		}
		var body product.UpdateProductInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.UpdateProduct(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ProductsDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "product service")
			return
		}
		id, ok := pathParam(w, r, logg, "id")
		if !ok {
			return
		}
		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Product deleted successfully", nil)
	}
}
