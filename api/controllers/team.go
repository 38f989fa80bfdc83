package controllers

import (
	"net/http"
	"strings"

	"github.com/studiosite/studiosite-backend/api/responses"
	"github.com/studiosite/studiosite-backend/api/validators"
	"github.com/studiosite/studiosite-backend/internal/team"
	"github.com/studiosite/studiosite-backend/pkg/logger"
)

func TeamList(svc team.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "team service")
			return
		}
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 100000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		q := r.URL.Query()
		result, err := svc.ListMembers(r.Context(), team.ListInput{
			Department: strings.TrimSpace(q.Get("department")),
			Status:     strings.TrimSpace(q.Get("status")),
			Role:       strings.TrimSpace(q.Get("role")),
			Skills:     validators.QueryList(r, "skills"),
			SortBy:     strings.TrimSpace(q.Get("sortBy")),
			SortOrder:  strings.TrimSpace(q.Get("sortOrder")),
			Page:       page,
			Limit:      limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, result, len(result.Items))
	}
}

func TeamByDepartment(svc team.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "team service")
			return
		}
		department, ok := pathParam(w, r, logg, "department")
		if !ok {
			return
		}
		members, err := svc.MembersByDepartment(r.Context(), department, strings.TrimSpace(r.URL.Query().Get("status")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, members, len(members))
	}
}

func TeamGet(svc team.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "team service")
			return
		}
		id, ok := pathParam(w, r, logg, "id")
		if !ok {
			return
		}
		member, err := svc.GetMember(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, member)
	}
}

func TeamCreate(svc team.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "team service")
			return
		}
		var body team.CreateMemberInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateMember(r.Context(), callerID(r), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Team member created successfully", created)
	}
}

func TeamUpdate(svc team.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "team service")
			return
		}
		id, ok := pathParam(w, r, logg, "id")
		if !ok {
			return
		}
		var body team.UpdateMemberInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.UpdateMember(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Team member updated successfully", updated)
	}
}

func TeamDelete(svc team.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "team service")
			return
		}
		id, ok := pathParam(w, r, logg, "id")
		if !ok {
			return
		}
		if err := svc.DeleteMember(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Team member deleted successfully", nil)
	}
}

func TeamDepartments(svc team.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "team service")
			return
		}
		departments, err := svc.ListDepartments(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, departments, len(departments))
	}
}

func TeamCreateDepartment(svc team.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "team service")
			return
		}
		var body team.CreateDepartmentInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateDepartment(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusCreated, "Department created successfully", created)
	}
}

// TeamDeleteDepartment refuses while members are still assigned.
func TeamDeleteDepartment(svc team.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "team service")
			return
		}
		name, ok := pathParam(w, r, logg, "name")
		if !ok {
			return
		}
		if err := svc.DeleteDepartment(r.Context(), name); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "Department deleted successfully", nil)
	}
}
