package controllers

import (
	"net/http"
	"strings"

	"github.com/studiosite/studiosite-backend/api/responses"
	"github.com/studiosite/studiosite-backend/api/validators"
	"github.com/studiosite/studiosite-backend/internal/projects"
	"github.com/studiosite/studiosite-backend/pkg/logger"
)

func ProjectsList(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "projects service")
			return
		}
		q := r.URL.Query()
		categories, err := svc.ListCategories(r.Context(), projects.ListInput{
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

func ProjectsGetCategory(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "projects service")
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

func ProjectsCreateCategory(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "projects service")
			return
		}
		var body projects.CreateCategoryInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateCategory(r.Context(), callerID(r), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Project category created successfully", created)
	}
}

func ProjectsUpdateCategory(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "projects service")
			return
		}
		id, ok := pathParam(w, r, logg, "id")
		if !ok {
			return
		}
		var body projects.UpdateCategoryInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.UpdateCategory(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Project category updated successfully", updated)
	}
}

func ProjectsDeleteCategory(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "projects service")
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
		responses.WriteMessage(w, http.StatusOK, "Project category deleted successfully", nil)
	}
}

func ProjectsAddProject(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "projects service")
			return
		}
		categoryID, ok := pathParam(w, r, logg, "categoryId")
		if !ok {
			return
		}
		var body projects.ProjectInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		project, err := svc.AddProject(r.Context(), categoryID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Project added successfully", project)
	}
}

func ProjectsUpdateProject(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "projects service")
			return
		}
		categoryID, ok := pathParam(w, r, logg, "categoryId")
		if !ok {
			return
		}
		projectID, ok := pathParam(w, r, logg, "projectId")
		if !ok {
			return
		}
		var body projects.ProjectInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		project, err := svc.UpdateProject(r.Context(), categoryID, projectID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Project updated successfully", project)
	}
}

func ProjectsRemoveProject(svc projects.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "projects service")
			return
		}
		categoryID, ok := pathParam(w, r, logg, "categoryId")
		if !ok {
			return
		}
		projectID, ok := pathParam(w, r, logg, "projectId")
		if !ok {
			return
		}
		if err := svc.RemoveProject(r.Context(), categoryID, projectID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Project deleted successfully", nil)
	}
}
