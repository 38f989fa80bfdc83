package controllers

import (
	"net/http"
	"strings"

	"github.com/studiosite/studiosite-backend/api/responses"
	"github.com/studiosite/studiosite-backend/api/validators"
	"github.com/studiosite/studiosite-backend/internal/pricing"
	"github.com/studiosite/studiosite-backend/pkg/logger"
)

func PricingList(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pricing service")
			return
		}
		q := r.URL.Query()
		categories, err := svc.ListCategories(r.Context(), pricing.ListInput{
			IsActive:  validators.ParseQueryBool(r, "isActive"),
			SortBy:    strings.TrimSpace(q.Get("sortBy")),
			SortOrder: strings.TrimSpace(q.Get("sortOrder")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, categories, len(categories))
	}
}

func PricingGetCategory(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pricing service")
			return
		}
		id, ok := pathParam(w, r, logg, "id")
		if !ok {
			return
		}
		category, err := svc.GetCategory(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

func PricingCreateCategory(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pricing service")
			return
		}
		var body pricing.CreateCategoryInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateCategory(r.Context(), callerID(r), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Pricing category created successfully", created)
	}
}

func PricingUpdateCategory(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pricing service")
			return
		}
		id, ok := pathParam(w, r, logg, "id")
		if !ok {
			return
		}
		var body pricing.UpdateCategoryInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.UpdateCategory(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Pricing category updated successfully", updated)
	}
}

func PricingDeleteCategory(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pricing service")
			return
		}
		id, ok := pathParam(w, r, logg, "id")
		if !ok {
			return
		}
		if err := svc.DeleteCategory(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Pricing category deleted successfully", nil)
	}
}

func PricingAddPlan(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pricing service")
			return
		}
		categoryID, ok := pathParam(w, r, logg, "categoryId")
		if !ok {
			return
		}
		var body pricing.PlanInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plan, err := svc.AddPlan(r.Context(), categoryID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Plan added successfully", plan)
	}
}

// PricingUpdatePlan serves PUT and PATCH; both replace the stored plan.
func PricingUpdatePlan(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pricing service")
			return
		}
		categoryID, ok := pathParam(w, r, logg, "categoryId")
		if !ok {
			return
		}
		planID, ok := pathParam(w, r, logg, "planId")
		if !ok {
			return
		}
		var body pricing.PlanInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		plan, err := svc.UpdatePlan(r.Context(), categoryID, planID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Plan updated successfully", plan)
	}
}

func PricingRemovePlan(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "pricing service")
			return
		}
		categoryID, ok := pathParam(w, r, logg, "categoryId")
		if !ok {
			return
		}
		planID, ok := pathParam(w, r, logg, "planId")
		if !ok {
			return
		}
		if err := svc.RemovePlan(r.Context(), categoryID, planID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Plan deleted successfully", nil)
	}
}
